package security

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid relative path",
			path:    "data/leads.db",
			wantErr: false,
		},
		{
			name:    "valid absolute path",
			path:    "/var/lib/leadbridge/leads.db",
			wantErr: false,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "path cannot be empty",
		},
		{
			name:    "path with directory traversal",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path contains directory traversal",
		},
		{
			name:    "path with embedded traversal",
			path:    "data/../../../etc/passwd",
			wantErr: true,
			errMsg:  "path contains directory traversal",
		},
		{
			name:    "path with dot in filename",
			path:    "data/leads.sqlite.db",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilePathStrict(t *testing.T) {
	assert.NoError(t, ValidateFilePathStrict("data/leads.db"))

	err := ValidateFilePathStrict("/etc/passwd")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "absolute paths not allowed")

	assert.Error(t, ValidateFilePathStrict("../escape"))
}

func TestValidateFilePathWithBase(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{
			name:    "path inside base",
			path:    "leads.db",
			wantErr: false,
		},
		{
			name:    "nested path inside base",
			path:    filepath.Join("data", "leads.db"),
			wantErr: false,
		},
		{
			name:    "traversal out of base",
			path:    "../outside.db",
			wantErr: true,
		},
		{
			name:    "absolute path",
			path:    "/etc/passwd",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePathWithBase(tt.path, tmpDir)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
