package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"leadbridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEncryptionSecret = "this-is-a-very-long-test-secret-key-for-testing"

func TestEncryptorDisabledPassthrough(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", "")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	out, err := enc.EncryptIfEnabled("+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", out)

	back, err := enc.DecryptIfEnabled(out)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", back)
}

func TestEncryptorRoundTrip(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("+15551234567")
	require.NoError(t, err)
	assert.NotEqual(t, "+15551234567", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", plaintext)
}

func TestEncryptorEmptyValue(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	out, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEncryptorNonceUniqueness(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	first, err := enc.Encrypt("same value")
	require.NoError(t, err)
	second, err := enc.Encrypt("same value")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each encryption uses a fresh nonce")
}

func TestEncryptorRequiresSecret(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", "")

	enc, err := NewEncryptor()
	assert.Error(t, err)
	assert.Nil(t, enc)
}

func TestEncryptorRejectsShortSecret(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", "too-short")

	enc, err := NewEncryptor()
	assert.Error(t, err)
	assert.Nil(t, enc)
}

func TestEncryptorRejectsCorruptCiphertext(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", testEncryptionSecret)

	enc, err := NewEncryptor()
	require.NoError(t, err)

	_, err = enc.Decrypt("not-base64!!!")
	assert.Error(t, err)

	_, err = enc.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestLeadPIIEncryptedAtRest(t *testing.T) {
	t.Setenv("LEADBRIDGE_ENABLE_ENCRYPTION", "true")
	t.Setenv("LEADBRIDGE_ENCRYPTION_SECRET", testEncryptionSecret)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	lead := &models.Lead{
		Name:     "Ana",
		Number:   "+15551234567",
		Email:    "ana@example.com",
		Status:   models.LeadStatusNew,
		LastSync: time.Now(),
	}
	require.NoError(t, db.SaveLead(ctx, lead))

	// Raw column values must not contain the plaintext
	var rawPhone, rawEmail string
	err = db.db.QueryRowContext(ctx, "SELECT phone_number, email FROM leads WHERE id = ?", lead.ID).
		Scan(&rawPhone, &rawEmail)
	require.NoError(t, err)
	assert.NotEqual(t, "+15551234567", rawPhone)
	assert.NotEqual(t, "ana@example.com", rawEmail)

	// The read path decrypts transparently
	got, err := db.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", got.Number)
	assert.Equal(t, "ana@example.com", got.Email)
}
