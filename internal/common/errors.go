package common

// AppError is a failure that already knows how it should be reported:
// a stable code for till clients, the HTTP status the handler layer
// should emit, and the wrapped cause for the logs. Services return
// sentinel errors; stores wrap driver failures in an AppError when the
// mapping to a client-facing code is unambiguous.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// NewAppError wraps err with a client-facing code, message and status.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
