package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", &NotFoundError{Entity: "account", Key: "1"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", &NotFoundError{Entity: "user", Key: "42"}), http.StatusNotFound},
		{"conflict", &ConflictError{Entity: "config", Key: "home", Reason: "exists"}, http.StatusConflict},
		{"validation", &ValidationError{Field: "name", Message: "empty"}, http.StatusBadRequest},
		{"permission", &PermissionError{Subject: "token", RequiredAccess: "api"}, http.StatusForbidden},
		{"remote status", &RemoteAPIError{Operation: "block", Status: 500}, http.StatusBadGateway},
		{"transport", &TransportError{Operation: "block", URL: "http://x", Cause: fmt.Errorf("refused")}, http.StatusBadGateway},
		{"persistence", &PersistenceError{Operation: "save", Cause: fmt.Errorf("disk")}, http.StatusInternalServerError},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := &TransportError{Operation: "get", URL: "http://vpn", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRemote(err))
	assert.False(t, IsNotFound(err))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(fmt.Errorf("save: %w", &ConflictError{Entity: "account", Key: "1:2", Reason: "exists remotely"})))
	assert.False(t, IsConflict(&NotFoundError{Entity: "account", Key: "1"}))
}
