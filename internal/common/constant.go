package common

// Header names attached to outbound API requests.
const (
	AuthorizationHeaderName  = "Authorization"
	IdempotencyKeyHeaderName = "Idempotency-Key"
	RequestIDHeaderName      = "X-Request-ID"
)
