// Package response writes judge backend style answers: JSON or plain text on success,
// plain text messages with a matching HTTP status on failure.
package response

import (
	"net/http"

	"ojclient/pkg/errors"
	"ojclient/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JSON sends data as a JSON body with status 200
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Text sends a plain text body with status 200
func Text(c *gin.Context, message string) {
	c.String(http.StatusOK, message)
}

// Bytes sends raw bytes with the given content type
func Bytes(c *gin.Context, contentType string, data []byte) {
	c.Data(http.StatusOK, contentType, data)
}

// Error sends the error message as plain text.
// The HTTP status is derived from the error code.
func Error(c *gin.Context, err error) {
	customErr := errors.GetError(err)

	logger.Debug(c.Request.Context(), "request error",
		zap.Int("code", int(customErr.Code)),
		zap.String("message", customErr.Error()),
		zap.Any("details", customErr.Details),
	)

	c.String(customErr.Code.HTTPStatus(), customErr.Error())
}

// ErrorWithCode sends an error response with specific error code
func ErrorWithCode(c *gin.Context, code errors.ErrorCode, message string) {
	if message == "" {
		message = code.Message()
	}
	Error(c, errors.New(code).WithMessage(message))
}

// BadRequest sends a 400 bad request error
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, errors.InvalidParams, message)
}

// Unauthorized sends a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, errors.Unauthorized, message)
}

// NotFound sends a 404 not found error
func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, errors.NotFound, message)
}

// AbortWithError aborts the request and sends error response
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
