package ticket

type ErrorCode string

const (
	ErrorCodeValidation  ErrorCode = "validation_error"
	ErrorCodeNotFound    ErrorCode = "not_found"
	ErrorCodeBlocked     ErrorCode = "blocked"
	ErrorCodeConflict    ErrorCode = "conflict"
	ErrorCodeUnavailable ErrorCode = "unavailable"
	ErrorCodeInternal    ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the service error code, defaulting to internal_error for
// foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if svcErr, ok := err.(*Error); ok {
		return svcErr.Code
	}
	return ErrorCodeInternal
}
