package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/correlation"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
)

// respond writes a success envelope
func respond[T any](c *gin.Context, status int, message string, data T) {
	c.JSON(status, models.Success(message, data))
}

// respondError writes an error envelope with the status matching err
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	log := correlation.Entry(c.Request.Context(), logger)
	if status >= http.StatusInternalServerError {
		log.Errorf("Request failed: %v", err)
	} else {
		log.Warnf("Request rejected: %v", err)
	}
	c.JSON(status, models.Failure(err.Error()))
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, &apperrors.ValidationError{Field: name, Message: "must be a number"}
	}
	return id, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(c.Request.Context()); err != nil {
			s.logger.Errorf("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
