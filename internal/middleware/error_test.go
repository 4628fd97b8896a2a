package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
)

func TestErrorBody(t *testing.T) {
	verr := &service.ValidationError{}
	verr.Add("tags", "at least one tag is required")
	verr.Add("ingredients", "duplicate ingredient")
	verr.Add("ingredients", "amount must be at least 1")

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", verr, http.StatusBadRequest,
			`{"errors":{"ingredients":["duplicate ingredient","amount must be at least 1"],"tags":["at least one tag is required"]}}`},
		{"not found", &service.NotFoundError{Entity: "recipe"}, http.StatusNotFound, `{"errors":"recipe not found"}`},
		{"conflict", &service.ConflictError{Entity: "favorite", Message: "recipe already in favorites"},
			http.StatusConflict, `{"errors":"recipe already in favorites","code":"conflict"}`},
		{"wrapped conflict sentinel", fmt.Errorf("subscribe: %w", service.ErrConflict),
			http.StatusConflict, `{"errors":"subscribe: conflict","code":"conflict"}`},
		{"credentials", service.ErrInvalidCredentials, http.StatusBadRequest, `{"errors":"invalid credentials"}`},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ErrorBody(tt.err)
			assert.Equal(t, tt.status, status)

			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.body, string(encoded))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(&service.NotFoundError{Entity: "recipe", IDs: []uuid.UUID{uuid.Nil}})
	})
	router.GET("/written", func(c *gin.Context) {
		_ = c.Error(errors.New("ignored"))
		c.String(http.StatusAccepted, "accepted")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "recipe not found")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
