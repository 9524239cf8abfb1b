package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is a failure that knows its HTTP status. Its Error() text is what the
// client sees in the envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message, nil) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message, nil) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message, nil) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message, nil) }

// Internal wraps an unexpected failure. The underlying message is kept so it
// reaches the caller's error envelope.
func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// StatusOf returns the HTTP status carried by err, or 500 for plain errors.
func StatusOf(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given HTTP status.
func Is(err error, code int) bool {
	return err != nil && StatusOf(err) == code
}

// Respond writes the failure envelope for err and aborts the chain.
func Respond(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusOf(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// ErrorMiddleware renders the last error attached with c.Error when the
// handler did not write a response itself.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		Respond(c, c.Errors.Last().Err)
	}
}
