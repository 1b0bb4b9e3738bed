// Package httpkit holds the gin middleware and response helpers shared by
// every HTTP module.
package httpkit

import (
	"errors"
	"net/http"

	"trashtrack_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details, RequestID: requestID(c)})
}

func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// HandleError writes err and reports whether there was one. An *apperr.Error
// picks the status and message; anything else becomes an opaque 500 and is
// attached to the gin context for the request logger.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		Error(c, domainErr.HTTPStatus(), domainErr.Message, domainErr.Details)
		return true
	}

	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal server error", nil)
	return true
}

func requestID(c *gin.Context) string {
	return c.Writer.Header().Get(HeaderRequestID)
}
