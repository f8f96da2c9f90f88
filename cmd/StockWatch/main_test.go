package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleReady(t *testing.T) {
	server := NewServer(nil, nil, nil, nil, func() map[string]string {
		return map[string]string{"status": "up", "message": "It's healthy"}
	})

	rec := httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)
}

func TestHandleReadyDatabaseDown(t *testing.T) {
	server := NewServer(nil, nil, nil, nil, func() map[string]string {
		return map[string]string{"status": "down", "error": "db down: connection refused"}
	})

	rec := httptest.NewRecorder()
	server.handleReady(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"down"`)
}
