package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vpn-bus-api/internal/errors"
)

type saveConfigRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListConfigs(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	configs, err := s.deps.Configs.FindAll(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Configs fetched", configs)
}

func (s *Server) handleFindConfig(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	config, err := s.deps.Configs.FindByName(c.Request.Context(), accountID, c.Param("name"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Config fetched", config)
}

func (s *Server) handleConfigExists(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	exists, err := s.deps.Configs.Exists(c.Request.Context(), accountID, c.Param("name"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Config checked", exists)
}

func (s *Server) handleConfigFile(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	file, err := s.deps.Configs.GetConfigFile(c.Request.Context(), accountID, c.Param("name"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Config file fetched", file)
}

func (s *Server) handleSaveConfig(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	var body saveConfigRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, s.logger, &apperrors.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	config, err := s.deps.Configs.Save(c.Request.Context(), accountID, body.Name)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Config created", config)
}

func (s *Server) handleRenameConfig(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	newName := c.Query("newName")
	if newName == "" {
		respondError(c, s.logger, &apperrors.ValidationError{Field: "newName", Message: "is required"})
		return
	}

	config, err := s.deps.Configs.Update(c.Request.Context(), accountID, newName, c.Param("name"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Config renamed", config)
}

func (s *Server) handleDeleteConfig(c *gin.Context) {
	accountID, err := pathID(c, "aId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	if err := s.deps.Configs.DeleteByName(c.Request.Context(), accountID, c.Param("name")); err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Config deleted", true)
}
