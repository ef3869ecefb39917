package httpapi

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
)

func (s *Server) handleFindUserByChatID(c *gin.Context) {
	user, err := s.deps.Users.FindByChatID(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "User fetched", user)
}

func (s *Server) handleFindAccount(c *gin.Context) {
	serverID, err := pathID(c, "sId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	account, err := s.deps.Accounts.FindByName(c.Request.Context(), c.Param("name"), serverID)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Account fetched", account)
}

func (s *Server) handleSaveAccount(c *gin.Context) {
	serverID, err := pathID(c, "sId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	var body models.Account
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, s.logger, &apperrors.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	body.ServerID = serverID

	account, err := s.deps.Accounts.Save(c.Request.Context(), &body)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Account created", account)
}

func (s *Server) handleUpdateAccount(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	var body models.Account
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, s.logger, &apperrors.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	account, err := s.deps.Accounts.Update(c.Request.Context(), id, &body)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Account updated", account)
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	if err := s.deps.Accounts.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, s.logger, err)
		return
	}
	respond(c, http.StatusOK, "Account deleted", true)
}

var actionsBySegment = map[string]models.Action{
	"block":   models.ActionBlock,
	"unblock": models.ActionUnblock,
	"restart": models.ActionRestart,
}

// handleAccountAction serves the block, unblock and restart routes
func (s *Server) handleAccountAction(c *gin.Context) {
	serverID, err := pathID(c, "sId")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	// route is .../account/<action>/:id
	kind := actionsBySegment[path.Base(path.Dir(c.FullPath()))]

	ok, err := s.deps.Accounts.Action(c.Request.Context(), serverID, accountID, kind)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, models.Failure("action "+string(kind)+" failed on the server"))
		return
	}
	respond(c, http.StatusOK, "Action "+string(kind)+" completed", true)
}
