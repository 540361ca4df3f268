package constants

// Session and context keys
const (
	SessionCookieName   = "pm_session"
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Work item field limits
const (
	MaxWorkItemTitleLength       = 200
	MaxWorkItemDescriptionLength = 2000
	MinStoryPoints               = 1
	MaxStoryPoints               = 100
	MinEstimatedHours            = 1
	MaxEstimatedHours            = 1000
)

// Project field limits
const (
	MaxProjectNameLength        = 100
	MaxProjectDescriptionLength = 1000
)

// AI generation
const (
	MaxAIGeneratedWorkItems = 20
)
