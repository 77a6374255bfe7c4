package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidAmount        ErrorCode = 102

	// Local store errors (200-299)
	ErrCodeStorageFull  ErrorCode = 200
	ErrCodeQueryFailed  ErrorCode = 201
	ErrCodeLocalUnknown ErrorCode = 202

	// Domain errors (300-399)
	ErrCodeInsufficientFunds ErrorCode = 300

	// Remote market data errors (400-499)
	ErrCodeRequestTimeout  ErrorCode = 400
	ErrCodeTooManyRequests ErrorCode = 401
	ErrCodeNoConnection    ErrorCode = 402
	ErrCodeServerError     ErrorCode = 403
	ErrCodeUnparseable     ErrorCode = 404
	ErrCodeRemoteUnknown   ErrorCode = 405
	ErrCodeCoinNotFound    ErrorCode = 406
)

// IsRemote reports whether the code belongs to the remote market data category.
func (c ErrorCode) IsRemote() bool {
	return c >= 400 && c < 500
}

// IsLocal reports whether the code belongs to the local store or domain categories.
func (c ErrorCode) IsLocal() bool {
	return c >= 200 && c < 400
}
