package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/constants"
	"vpn-bus-api/internal/correlation"
	"vpn-bus-api/internal/metrics"
	"vpn-bus-api/internal/models"
)

// correlationMiddleware takes the caller's request id or assigns a new one
func (s *Server) correlationMiddleware(c *gin.Context) {
	requestID := c.GetHeader(constants.RequestIDHeader)
	if requestID == "" {
		requestID = correlation.NewID()
	}

	c.Request = c.Request.WithContext(correlation.WithID(c.Request.Context(), requestID))
	c.Header(constants.RequestIDHeader, requestID)
	c.Next()
}

// authMiddleware rejects callers without the static API token
func (s *Server) authMiddleware(c *gin.Context) {
	if s.deps.Auth == nil || !s.deps.Auth.Authorize(c.GetHeader("Authorization")) {
		correlation.Entry(c.Request.Context(), s.logger).Warnf("Authorization failed for %s %s", c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, models.Failure("access denied"))
		return
	}
	c.Next()
}

func (s *Server) loggingMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	correlation.Entry(c.Request.Context(), s.logger).WithFields(logrus.Fields{
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"status":   c.Writer.Status(),
		"duration": time.Since(start).String(),
	}).Info("Handled request")
}

func (s *Server) metricsMiddleware(c *gin.Context) {
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
}
