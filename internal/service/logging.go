package service

// Shared log field names, used across services and middleware so log
// aggregation sees consistent keys.
const (
	LogFieldLeadID     = "lead_id"
	LogFieldStatus     = "status"
	LogFieldManyChatID = "manychat_id"
	LogFieldCount      = "count"
	LogFieldRequestID  = "request_id"
	LogFieldTraceID    = "trace_id"
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"
	LogFieldDurationMs = "duration_ms"
)
