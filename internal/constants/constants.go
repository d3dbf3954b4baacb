package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "task_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRole    = "user_role"
	ContextKeyRequest = "request_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation
const (
	MinPasswordLength = 8
)

// Priority classification
const (
	DefaultClassifierTimeout = 5 * time.Second
)
