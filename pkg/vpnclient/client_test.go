package vpnclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpn-bus-api/internal/correlation"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
)

func newTestClient() *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(5*time.Second, false, logger)
}

func TestExecute_SendsHeaders(t *testing.T) {
	var got http.Header
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"success","message":"ok","data":"acc-1"}`))
	}))
	defer srv.Close()

	server := models.VPNProxy{URL: srv.URL, Token: "tok-1"}
	ctx := correlation.WithID(context.Background(), "req-42")

	resp, err := newTestClient().Execute(ctx, server, http.MethodPost, "/api/account/100", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/account/100", gotPath)
	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.Equal(t, "req-42", got.Get("requestID"))
	assert.Equal(t, srv.URL, got.Get("Origin"))
	assert.Equal(t, srv.URL+"/login", got.Get("Referer"))
	assert.Contains(t, got.Get("User-Agent"), "Firefox/131.0")
	assert.Equal(t, "application/json", got.Get("Content-Type"))

	envelope, err := DecodeEnvelope[string]("create", resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", envelope.Data)
}

func TestExecute_PlaceholderRequestID(t *testing.T) {
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("requestID")
	}))
	defer srv.Close()

	_, err := newTestClient().Execute(context.Background(), models.VPNProxy{URL: srv.URL}, http.MethodGet, "/api/account/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "no requestId", requestID)
}

func TestExecute_SendsJSONBody(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	_, err := newTestClient().Execute(context.Background(), models.VPNProxy{URL: srv.URL}, http.MethodPut, "/x", map[string]string{"name": "home"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"home"}`, string(body))
}

func TestExecute_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	resp, err := newTestClient().Execute(context.Background(), models.VPNProxy{URL: srv.URL}, http.MethodPost, "/api/account/block/1", nil)
	assert.Nil(t, resp)

	var apiErr *apperrors.RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Equal(t, "POST /api/account/block/1", apiErr.Operation)
}

func TestExecute_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Execute(context.Background(), models.VPNProxy{URL: url}, http.MethodGet, "/api/account/1", nil)

	var transportErr *apperrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, url+"/api/account/1", transportErr.URL)
	assert.True(t, apperrors.IsRemote(err))
}

func TestExecute_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient().Execute(context.Background(), models.VPNProxy{URL: srv.URL}, http.MethodGet, "/", nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	_, err := DecodeEnvelope[string]("list", nil)
	var apiErr *apperrors.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "list", apiErr.Operation)

	_, err = DecodeEnvelope[string]("list", []byte("not json"))
	require.ErrorAs(t, err, &apiErr)
}

func TestDecodeEnvelope_List(t *testing.T) {
	body := []byte(`{"status":"success","message":"","data":[{"id":"c1","name":"home"},{"id":"c2","name":"work"}]}`)

	envelope, err := DecodeEnvelope[[]models.RemoteConfig]("list", body)
	require.NoError(t, err)
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, models.RemoteConfig{ID: "c2", Name: "work"}, envelope.Data[1])
}
