package spider

import "fmt"

// HTTPError is the taxonomy described in the error handling design: a
// status code paired with a message safe to expose to the client, and an
// optional wrapped cause kept for logging only.
type HTTPError struct {
	Status  int
	Message string
	Cause   error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Cause }

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// Wrap attaches a HTTPError to an underlying cause. Error() includes the
// cause, for logging; the client-visible Message does not.
func Wrap(status int, message string, cause error) *HTTPError {
	return &HTTPError{Status: status, Message: message, Cause: cause}
}

func BadRequest(msg string) *HTTPError          { return newHTTPError(StatusBadRequest, msg) }
func PayloadTooLarge(msg string) *HTTPError     { return newHTTPError(StatusPayloadTooLarge, msg) }
func HeadersTooLarge(msg string) *HTTPError     { return newHTTPError(StatusHeadersTooLarge, msg) }
func UnsupportedMediaType(msg string) *HTTPError {
	return newHTTPError(StatusUnsupportedMediaType, msg)
}
func NotFound(msg string) *HTTPError         { return newHTTPError(StatusNotFound, msg) }
func MethodNotAllowed(msg string) *HTTPError { return newHTTPError(StatusMethodNotAllowed, msg) }
func Unauthorized(msg string) *HTTPError     { return newHTTPError(StatusUnauthorized, msg) }
func Forbidden(msg string) *HTTPError        { return newHTTPError(StatusForbidden, msg) }
func RateLimited(msg string) *HTTPError      { return newHTTPError(StatusTooManyRequests, msg) }
func Internal(msg string) *HTTPError         { return newHTTPError(StatusInternalServerError, msg) }
func NotImplemented(msg string) *HTTPError   { return newHTTPError(StatusNotImplemented, msg) }

// AsHTTPError unwraps err looking for a *HTTPError; falls back to a
// generic 500 Internal when err carries no taxonomy information.
func AsHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var he *HTTPError
	if asHTTPError(err, &he) {
		return he
	}
	return Wrap(StatusInternalServerError, "internal server error", err)
}

func asHTTPError(err error, target **HTTPError) bool {
	for err != nil {
		if he, ok := err.(*HTTPError); ok {
			*target = he
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
