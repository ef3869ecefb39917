package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/commands"
	"vpn-bus-api/internal/helpers"
	"vpn-bus-api/internal/permissions"
)

// AdminHandler handles admin commands. Admins get every member command
// plus the server overview.
type AdminHandler struct {
	*MemberHandler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(deps Dependencies, logger *logrus.Logger) *AdminHandler {
	handler := &AdminHandler{
		MemberHandler: newMemberHandler(deps, permissions.Admin, logger),
	}

	handler.initializeCommands()
	return handler
}

// CanHandle checks if the handler can handle the given access type
func (h *AdminHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Admin
}

// initializeCommands adds the admin commands on top of the member ones
func (h *AdminHandler) initializeCommands() {
	h.commandHandlers[commands.Start] = h.handleStart
	h.commandHandlers[commands.ServersOverview] = h.handleServersOverview
}

// handleStart makes sure the admin is registered before showing the menu
func (h *AdminHandler) handleStart(ctx context.Context, c telebot.Context) error {
	user, created, err := h.users.Register(ctx, chatID(c), c.Sender().Username)
	if err != nil {
		h.entry(ctx, c).Errorf("Failed to register admin: %v", err)
		return h.sendError(c, err, nil)
	}
	if created {
		h.entry(ctx, c).Infof("Registered admin %s", user.ChatID)
	}

	return h.MemberHandler.handleStart(ctx, c)
}

// handleServersOverview shows every server with its account counts
func (h *AdminHandler) handleServersOverview(ctx context.Context, c telebot.Context) error {
	overview, err := h.servers.Overview(ctx)
	if err != nil {
		h.entry(ctx, c).Errorf("Failed to build servers overview: %v", err)
		return h.sendError(c, err, nil)
	}

	return h.sendTextMessage(c, helpers.FormatOverview(overview), h.createMainKeyboard(permissions.Admin))
}
