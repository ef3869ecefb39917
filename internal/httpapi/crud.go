package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/services"
)

// registerCRUD registers list, get, create, update and delete routes for
// one entity service on the group
func registerCRUD[T any](group *gin.RouterGroup, entity string, svc services.CrudService[T, int64], logger *logrus.Logger) {
	group.GET("", func(c *gin.Context) {
		items, err := svc.FindAll(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, fmt.Sprintf("%s list fetched", entity), items)
	})

	group.GET("/:id", func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			respondError(c, logger, err)
			return
		}
		item, err := svc.FindByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, fmt.Sprintf("%s fetched", entity), item)
	})

	group.POST("", func(c *gin.Context) {
		var body T
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, logger, &apperrors.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		item, err := svc.Save(c.Request.Context(), &body)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, fmt.Sprintf("%s saved", entity), item)
	})

	group.PUT("/:id", func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			respondError(c, logger, err)
			return
		}
		var body T
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, logger, &apperrors.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		item, err := svc.Update(c.Request.Context(), id, &body)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, fmt.Sprintf("%s updated", entity), item)
	})

	group.DELETE("/:id", func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if err := svc.DeleteByID(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, fmt.Sprintf("%s deleted", entity), true)
	})
}
