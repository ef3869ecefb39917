package handlers

import (
	"bytes"
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/commands"
	"vpn-bus-api/internal/correlation"
	"vpn-bus-api/internal/helpers"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/permissions"
	"vpn-bus-api/internal/services"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	servers      ServerDirectory
	users        UserRegistry
	accounts     AccountProvisioner
	configs      ConfigManager
	stateService *services.UserStateService
	qrService    *services.QRService
	logger       *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(deps Dependencies, logger *logrus.Logger) BaseHandler {
	return BaseHandler{
		servers:      deps.Servers,
		users:        deps.Users,
		accounts:     deps.Accounts,
		configs:      deps.Configs,
		stateService: deps.States,
		qrService:    deps.QR,
		logger:       logger,
	}
}

// CanHandle checks if the handler can handle the given access type
func (h *BaseHandler) CanHandle(accessType permissions.AccessType) bool {
	// Base handler can't handle any access type directly
	return false
}

func chatID(c telebot.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func (h *BaseHandler) entry(ctx context.Context, c telebot.Context) *logrus.Entry {
	return correlation.Entry(ctx, h.logger).WithField("chat_id", c.Sender().ID)
}

// sendTextMessage sends a text message with optional markup
func (h *BaseHandler) sendTextMessage(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{
		ParseMode: telebot.ModeHTML,
	}

	if markup != nil {
		opts.ReplyMarkup = markup
	}

	err := c.Send(text, opts)
	if err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
	}
	return err
}

// sendError reports a failed operation to the chat user
func (h *BaseHandler) sendError(c telebot.Context, err error, markup *telebot.ReplyMarkup) error {
	return h.sendTextMessage(c, helpers.UserMessage(err), markup)
}

// sendConfigFile sends a config file as a document followed by its QR code
func (h *BaseHandler) sendConfigFile(c telebot.Context, name, content string) error {
	document := &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader([]byte(content))),
		FileName: helpers.ConfigFileName(name),
		MIME:     "text/plain",
	}
	if err := c.Send(document); err != nil {
		h.logger.Errorf("Failed to send config file: %v", err)
		return err
	}

	return h.sendQRCode(c, content)
}

// sendQRCode sends a QR code for the given text
func (h *BaseHandler) sendQRCode(c telebot.Context, text string) error {
	// Generate QR code
	qrBytes, err := h.qrService.GenerateQR(text)
	if err != nil {
		h.logger.Errorf("Failed to generate QR code: %v", err)
		return h.sendTextMessage(c, "The config is too large for a QR code, use the file instead.", nil)
	}

	// Create photo from bytes
	photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(qrBytes))}

	// Send photo
	err = c.Send(photo)
	if err != nil {
		h.logger.Errorf("Failed to send QR code: %v", err)
	}
	return err
}

// createMainKeyboard creates the main keyboard for the given access type
func (h *BaseHandler) createMainKeyboard(accessType permissions.AccessType) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	rows := []telebot.Row{
		{
			telebot.Btn{Text: commands.Servers},
			telebot.Btn{Text: commands.MyConfigs},
		},
		{
			telebot.Btn{Text: commands.NewConfig},
			telebot.Btn{Text: commands.GetConfig},
		},
		{
			telebot.Btn{Text: commands.DeleteConfig},
		},
	}

	if accessType == permissions.Admin {
		rows = append(rows, telebot.Row{
			telebot.Btn{Text: commands.ServersOverview},
		})
	}

	markup.Reply(rows...)
	return markup
}

// createReturnKeyboard creates a keyboard with a return button
func (h *BaseHandler) createReturnKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	markup.Reply(
		telebot.Row{
			telebot.Btn{Text: commands.ReturnToMainMenu},
		},
	)

	return markup
}

// createServersKeyboard creates a keyboard with one button per server
func (h *BaseHandler) createServersKeyboard(servers []models.VPNProxy) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	rows := make([]telebot.Row, 0, len(servers)+1)
	for _, server := range servers {
		rows = append(rows, telebot.Row{telebot.Btn{Text: helpers.ServerLabel(server)}})
	}
	rows = append(rows, telebot.Row{telebot.Btn{Text: commands.Cancel}})

	markup.Reply(rows...)
	return markup
}
