package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler renders the last error attached with c.Error when the handler
// did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, body := ErrorBody(c.Errors.Last().Err)
		if status >= http.StatusInternalServerError {
			logging.Error().
				Err(c.Errors.Last().Err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("request failed")
		}
		c.JSON(status, body)
	}
}

// ErrorBody maps an error to its HTTP status and JSON body.
func ErrorBody(err error) (int, interface{}) {
	var (
		verr     *service.ValidationError
		notFound *service.NotFoundError
		conflict *service.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		fields := make(map[string][]string, len(verr.Errors))
		for _, fe := range verr.Errors {
			fields[fe.Field] = append(fields[fe.Field], fe.Message)
		}
		return http.StatusBadRequest, gin.H{"errors": fields}
	case errors.As(err, &notFound):
		return http.StatusNotFound, gin.H{"errors": notFound.Error()}
	case errors.As(err, &conflict):
		return http.StatusConflict, gin.H{"errors": conflict.Error(), "code": "conflict"}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, gin.H{"errors": err.Error()}
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, gin.H{"errors": err.Error(), "code": "conflict"}
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, gin.H{"errors": err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}
