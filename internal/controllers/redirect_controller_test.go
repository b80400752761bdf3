package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"qr-trackr-be/internal/apperrors"
)

type stubResolver struct {
	destinations map[string]string
}

func (s *stubResolver) Resolve(_ context.Context, code string) (string, error) {
	if dest, ok := s.destinations[code]; ok {
		return dest, nil
	}
	return "", apperrors.ErrNotFound
}

func newRedirectRouter(resolver *stubResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:code", NewRedirectController(resolver).Redirect)
	return router
}

func TestRedirect(t *testing.T) {
	router := newRedirectRouter(&stubResolver{destinations: map[string]string{
		"abc12345": "https://example.com/page",
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/abc12345", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/page", w.Header().Get("Location"))
}

func TestRedirectUnknownCode(t *testing.T) {
	router := newRedirectRouter(&stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "deleted", "not-found must stay generic")
}
