package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/commands"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/permissions"
)

// GuestHandler handles chat users that are not registered yet
type GuestHandler struct {
	BaseHandler
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(deps Dependencies, logger *logrus.Logger) *GuestHandler {
	return &GuestHandler{
		BaseHandler: NewBaseHandler(deps, logger),
	}
}

// CanHandle checks if the handler can handle the given access type
func (h *GuestHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.None
}

// Handle handles a message from Telegram
func (h *GuestHandler) Handle(ctx context.Context, c telebot.Context) error {
	if c.Text() != commands.Start {
		return h.sendTextMessage(c, "Send /start to register.", nil)
	}

	return h.handleRegister(ctx, c)
}

// handleRegister registers the sender as a user
func (h *GuestHandler) handleRegister(ctx context.Context, c telebot.Context) error {
	log := h.entry(ctx, c)

	user, created, err := h.users.Register(ctx, chatID(c), c.Sender().Username)
	if err != nil {
		log.Errorf("Failed to register user: %v", err)
		return h.sendError(c, err, nil)
	}

	if user.Status != models.StatusActive {
		log.Infof("Inactive user %s tried to register", user.ChatID)
		return h.sendTextMessage(c, "Your access is disabled. Contact the administrator.", nil)
	}

	if created {
		log.Infof("Registered user %s", user.ChatID)
	}

	h.stateService.ClearState(c.Sender().ID)
	text := fmt.Sprintf("Welcome, %s!\nPick a server with \"%s\" to get started.", html.EscapeString(displayName(c.Sender())), commands.Servers)
	return h.sendTextMessage(c, text, h.createMainKeyboard(permissions.Member))
}

func displayName(user *telebot.User) string {
	if user.Username != "" {
		return user.Username
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return fmt.Sprintf("user %d", user.ID)
}
