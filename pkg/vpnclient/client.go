package vpnclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/constants"
	"vpn-bus-api/internal/correlation"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/metrics"
	"vpn-bus-api/internal/models"
)

// Client executes authenticated requests against remote VPN servers
type Client struct {
	httpClient *resty.Client
	logger     *logrus.Logger
}

// Response is a successful remote response with its body fully read
type Response struct {
	StatusCode int
	Body       []byte
}

// NewClient creates a new remote VPN server client
func NewClient(timeout time.Duration, insecureSkipVerify bool, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: insecureSkipVerify})

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Execute sends a single request to server.URL+path. A non-2xx status is
// returned as *errors.RemoteAPIError, a failure to get any response as
// *errors.TransportError.
func (c *Client) Execute(ctx context.Context, server models.VPNProxy, method, path string, body any) (*Response, error) {
	requestID := correlation.ID(ctx)
	url := server.URL + path
	operation := method + " " + path
	log := correlation.Entry(ctx, c.logger)

	req := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeaders(map[string]string{
			"User-Agent":              constants.RemoteUserAgent,
			"Accept":                  constants.RemoteAccept,
			"Accept-Language":         constants.RemoteAcceptLanguage,
			"Content-Type":            constants.RemoteContentType,
			"Origin":                  server.URL,
			"Connection":              "keep-alive",
			"Referer":                 server.URL + "/login",
			constants.RequestIDHeader: requestID,
		}).
		SetAuthToken(server.Token)

	if body != nil {
		req.SetBody(body)
	}

	log.Debugf("Sending %s request to %s", method, url)

	start := time.Now()
	resp, err := req.Execute(method, url)
	metrics.RemoteRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}

	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(method, metrics.OutcomeTransport).Inc()
		log.Errorf("Request %s to %s failed: %v", method, url, err)
		return nil, &apperrors.TransportError{Operation: operation, URL: url, Cause: err}
	}

	data, err := io.ReadAll(io.LimitReader(resp.RawBody(), constants.MaxResponseSize))
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(method, metrics.OutcomeTransport).Inc()
		log.Errorf("Failed to read response of %s %s: %v", method, url, err)
		return nil, &apperrors.TransportError{Operation: operation, URL: url, Cause: err}
	}

	log.Debugf("Response from %s: status %d", url, resp.StatusCode())

	if !resp.IsSuccess() {
		metrics.RemoteRequestsTotal.WithLabelValues(method, metrics.OutcomeRemote).Inc()
		log.Errorf("Request %s %s failed - Status: %d, Response: %s", method, url, resp.StatusCode(), excerpt(data))
		return nil, &apperrors.RemoteAPIError{
			Operation: operation,
			Status:    resp.StatusCode(),
			Message:   excerpt(data),
		}
	}

	metrics.RemoteRequestsTotal.WithLabelValues(method, metrics.OutcomeSuccess).Inc()

	return &Response{StatusCode: resp.StatusCode(), Body: data}, nil
}

// DecodeEnvelope parses a remote envelope carrying data of type T
func DecodeEnvelope[T any](operation string, body []byte) (*models.Envelope[T], error) {
	if len(body) == 0 {
		return nil, &apperrors.RemoteAPIError{Operation: operation, Message: "empty response body"}
	}

	var envelope models.Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &apperrors.RemoteAPIError{
			Operation: operation,
			Message:   fmt.Sprintf("failed to parse response: %v", err),
		}
	}

	return &envelope, nil
}

func excerpt(body []byte) string {
	const limit = 256
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "... (" + strconv.Itoa(len(body)) + " bytes)"
}
