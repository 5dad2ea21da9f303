package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal Server Error"

// errorBody is the shape of every error response. Stack is filled only in
// development: the wrapped error chain, plus the goroutine trace for panics.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorHandler renders the last error attached with c.Error once the chain
// has run, unless a handler already wrote a response.
func errorHandler(logger *slog.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := statusFor(err)

		body := errorBody{Status: "error", Message: err.Error()}
		if status == http.StatusInternalServerError {
			body.Message = internalErrorMessage
			logger.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		}
		if development {
			body.Stack = errorChain(err)
		}
		c.JSON(status, body)
	}
}

// fail attaches err for errorHandler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func recovery(logger *slog.Logger, development bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
		body := errorBody{Status: "error", Message: internalErrorMessage}
		if development {
			cause := fmt.Sprintf("panic: %v", recovered)
			if err, ok := recovered.(error); ok {
				cause = errorChain(err)
			}
			body.Stack = cause + "\n\n" + string(debug.Stack())
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// errorChain lists err and everything it wraps, outermost first, one
// "type: message" line per layer. Joined errors are indented under their
// parent.
func errorChain(err error) string {
	var b strings.Builder
	var walk func(e error, depth int)
	walk = func(e error, depth int) {
		if e == nil {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s%T: %s", strings.Repeat("  ", depth), e, e.Error())
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			walk(u.Unwrap(), depth)
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner, depth+1)
			}
		}
	}
	walk(err, 0)
	return b.String()
}
