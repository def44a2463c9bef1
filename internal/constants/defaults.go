package constants

// Default server configuration values
const (
	DefaultServerPort           = 8084
	DefaultServerReadTimeoutSec = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec = 60
	DefaultGracefulShutdownSec  = 30
)

// Reconciliation job configuration
const (
	// SyncMinIntervalMinutes is the rate-limit window for the ManyChat
	// reconciliation job. A sync requested inside the window is a no-op.
	SyncMinIntervalMinutes = 5

	DefaultSyncIntervalMinutes = 30
	DefaultContactPageSize     = 100
)

// Outbound message retry policy
const (
	MessageSendMaxAttempts    = 3
	MessageSendTimeoutSec     = 10
	MessageSendInitialDelayMs = 1000
)

// Database retry configuration
const (
	DefaultDatabaseRetryAttempts = 3
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
)

// Validation bounds
const (
	MinPhoneNumberLength = 7
	MaxPhoneNumberLength = 20
	MaxLeadNameLength    = 200
	MaxNoteTextLength    = 5000
	MaxTagLength         = 50
	MaxMessageLength     = 4096
)

// Field encryption parameters
const (
	EncryptionSalt       = "leadbridge-field-encryption-v1"
	EncryptionLookupSalt = "leadbridge-lookup-v1"
)
