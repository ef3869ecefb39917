package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/commands"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/helpers"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/permissions"
)

type commandHandler func(ctx context.Context, c telebot.Context) error

// MemberHandler handles member commands
type MemberHandler struct {
	BaseHandler
	accessType      permissions.AccessType
	commandHandlers map[string]commandHandler
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(deps Dependencies, logger *logrus.Logger) *MemberHandler {
	return newMemberHandler(deps, permissions.Member, logger)
}

func newMemberHandler(deps Dependencies, accessType permissions.AccessType, logger *logrus.Logger) *MemberHandler {
	handler := &MemberHandler{
		BaseHandler: NewBaseHandler(deps, logger),
		accessType:  accessType,
	}

	handler.initializeCommands()
	return handler
}

// CanHandle checks if the handler can handle the given access type
func (h *MemberHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Member
}

// Handle handles a message from Telegram
func (h *MemberHandler) Handle(ctx context.Context, c telebot.Context) error {
	text := strings.TrimSpace(c.Text())

	// Navigation commands interrupt any conversation
	switch text {
	case commands.Start, commands.ReturnToMainMenu, commands.Cancel:
		return h.commandHandlers[text](ctx, c)
	}

	state := h.stateService.GetState(c.Sender().ID)

	switch state.State {
	case models.Default:
		return h.handleDefaultState(ctx, c, text)
	case models.AwaitSelectServer:
		return h.processSelectServer(ctx, c, text)
	case models.AwaitNewConfigName:
		return h.processNewConfigName(ctx, c, text)
	case models.AwaitConfigName:
		return h.processGetConfig(ctx, c, text)
	case models.AwaitDeleteConfigName:
		return h.processDeleteConfig(ctx, c, text)
	default:
		h.logger.Warnf("Unknown state: %d", state.State)
		return h.handleDefaultState(ctx, c, text)
	}
}

// initializeCommands initializes the command handlers
func (h *MemberHandler) initializeCommands() {
	h.commandHandlers = map[string]commandHandler{
		commands.Start:            h.handleStart,
		commands.ReturnToMainMenu: h.handleStart,
		commands.Cancel:           h.handleStart,
		commands.Servers:          h.handleServers,
		commands.MyConfigs:        h.handleMyConfigs,
		commands.NewConfig:        h.handleNewConfig,
		commands.GetConfig:        h.handleGetConfig,
		commands.DeleteConfig:     h.handleDeleteConfig,
	}
}

// handleDefaultState handles the default state
func (h *MemberHandler) handleDefaultState(ctx context.Context, c telebot.Context, text string) error {
	if handler, ok := h.commandHandlers[text]; ok {
		return handler(ctx, c)
	}

	return h.handleStart(ctx, c)
}

// handleStart shows the main menu and keeps the selected account
func (h *MemberHandler) handleStart(ctx context.Context, c telebot.Context) error {
	h.stateService.WithConversationState(c.Sender().ID, models.Default)

	text := "Main menu.\nNo server selected yet, use \"" + commands.Servers + "\" to pick one."
	if account := h.currentAccount(ctx, c); account != nil {
		text = fmt.Sprintf("Main menu.\nCurrent server: <b>%s</b> (%s)", html.EscapeString(account.ServerName), account.Country)
	}

	return h.sendTextMessage(c, text, h.createMainKeyboard(h.accessType))
}

// handleServers shows the active servers
func (h *MemberHandler) handleServers(ctx context.Context, c telebot.Context) error {
	servers, err := h.servers.FindActive(ctx)
	if err != nil {
		h.entry(ctx, c).Errorf("Failed to list servers: %v", err)
		return h.sendError(c, err, nil)
	}

	if len(servers) == 0 {
		return h.sendTextMessage(c, "No servers are available right now.", h.createMainKeyboard(h.accessType))
	}

	h.stateService.WithConversationState(c.Sender().ID, models.AwaitSelectServer)
	return h.sendTextMessage(c, "Pick a server:", h.createServersKeyboard(servers))
}

// processSelectServer finds or creates the sender's account on the picked server
func (h *MemberHandler) processSelectServer(ctx context.Context, c telebot.Context, text string) error {
	log := h.entry(ctx, c)

	serverID, ok := helpers.ParseServerLabel(text)
	if !ok {
		return h.sendTextMessage(c, "Pick a server from the keyboard.", nil)
	}

	servers, err := h.servers.FindActive(ctx)
	if err != nil {
		log.Errorf("Failed to list servers: %v", err)
		return h.sendError(c, err, nil)
	}
	if !containsServer(servers, serverID) {
		return h.sendTextMessage(c, "This server is not available, pick another one.", h.createServersKeyboard(servers))
	}

	account, err := h.accounts.FindByName(ctx, chatID(c), serverID)
	if apperrors.IsNotFound(err) {
		log.Infof("No account on server %d, creating one", serverID)
		account, err = h.accounts.Save(ctx, &models.Account{ChatID: chatID(c), ServerID: serverID})
	}
	if err != nil {
		log.Errorf("Failed to get account on server %d: %v", serverID, err)
		h.stateService.WithConversationState(c.Sender().ID, models.Default)
		return h.sendError(c, err, h.createMainKeyboard(h.accessType))
	}

	h.stateService.WithSelectedAccount(c.Sender().ID, account.ID)
	h.stateService.WithConversationState(c.Sender().ID, models.Default)

	text = fmt.Sprintf("Server <b>%s</b> (%s) selected.", html.EscapeString(account.ServerName), account.Country)
	return h.sendTextMessage(c, text, h.createMainKeyboard(h.accessType))
}

// handleMyConfigs lists the configs of the selected account
func (h *MemberHandler) handleMyConfigs(ctx context.Context, c telebot.Context) error {
	account := h.requireAccount(ctx, c)
	if account == nil {
		return nil
	}

	configs, err := h.configs.FindAll(ctx, account.ID)
	if err != nil {
		h.entry(ctx, c).Errorf("Failed to list configs: %v", err)
		return h.sendError(c, err, nil)
	}

	return h.sendTextMessage(c, helpers.FormatConfigList(*account, configs), h.createMainKeyboard(h.accessType))
}

// handleNewConfig asks for the name of a new config
func (h *MemberHandler) handleNewConfig(ctx context.Context, c telebot.Context) error {
	if h.requireAccount(ctx, c) == nil {
		return nil
	}

	h.stateService.WithConversationState(c.Sender().ID, models.AwaitNewConfigName)
	return h.sendTextMessage(c, "Send a name for the new config (letters, digits, dot, dash, underscore):", h.createReturnKeyboard())
}

// processNewConfigName creates the config and sends its file
func (h *MemberHandler) processNewConfigName(ctx context.Context, c telebot.Context, name string) error {
	log := h.entry(ctx, c)

	account := h.requireAccount(ctx, c)
	if account == nil {
		return nil
	}

	if _, err := h.configs.Save(ctx, account.ID, name); err != nil {
		var validationErr *apperrors.ValidationError
		if !errors.As(err, &validationErr) {
			h.stateService.WithConversationState(c.Sender().ID, models.Default)
		}
		log.Warnf("Failed to create config %q: %v", name, err)
		return h.sendError(c, err, nil)
	}

	h.stateService.WithConversationState(c.Sender().ID, models.Default)
	log.Infof("Config %q created for account %d", name, account.ID)

	if err := h.sendTextMessage(c, fmt.Sprintf("Config <code>%s</code> created.", html.EscapeString(name)), h.createMainKeyboard(h.accessType)); err != nil {
		return err
	}
	return h.sendFile(ctx, c, account.ID, name)
}

// handleGetConfig asks which config to download
func (h *MemberHandler) handleGetConfig(ctx context.Context, c telebot.Context) error {
	return h.askConfigName(ctx, c, models.AwaitConfigName, "Which config do you want to download?")
}

// processGetConfig sends the requested config file
func (h *MemberHandler) processGetConfig(ctx context.Context, c telebot.Context, name string) error {
	account := h.requireAccount(ctx, c)
	if account == nil {
		return nil
	}

	h.stateService.WithConversationState(c.Sender().ID, models.Default)
	return h.sendFile(ctx, c, account.ID, name)
}

// handleDeleteConfig asks which config to delete
func (h *MemberHandler) handleDeleteConfig(ctx context.Context, c telebot.Context) error {
	return h.askConfigName(ctx, c, models.AwaitDeleteConfigName, "Which config do you want to delete?")
}

// processDeleteConfig deletes the named config
func (h *MemberHandler) processDeleteConfig(ctx context.Context, c telebot.Context, name string) error {
	log := h.entry(ctx, c)

	account := h.requireAccount(ctx, c)
	if account == nil {
		return nil
	}

	h.stateService.WithConversationState(c.Sender().ID, models.Default)

	if err := h.configs.DeleteByName(ctx, account.ID, name); err != nil {
		log.Warnf("Failed to delete config %q: %v", name, err)
		return h.sendError(c, err, h.createMainKeyboard(h.accessType))
	}

	log.Infof("Config %q deleted for account %d", name, account.ID)
	return h.sendTextMessage(c, fmt.Sprintf("Config <code>%s</code> deleted.", html.EscapeString(name)), h.createMainKeyboard(h.accessType))
}

// askConfigName shows the configs of the selected account and waits for a pick
func (h *MemberHandler) askConfigName(ctx context.Context, c telebot.Context, next models.ConversationState, prompt string) error {
	account := h.requireAccount(ctx, c)
	if account == nil {
		return nil
	}

	configs, err := h.configs.FindAll(ctx, account.ID)
	if err != nil {
		h.entry(ctx, c).Errorf("Failed to list configs: %v", err)
		return h.sendError(c, err, nil)
	}

	if len(configs) == 0 {
		return h.sendTextMessage(c, helpers.FormatConfigList(*account, configs), h.createMainKeyboard(h.accessType))
	}

	h.stateService.WithConversationState(c.Sender().ID, next)
	return h.sendTextMessage(c, prompt, h.createConfigsKeyboard(configs))
}

// sendFile downloads a config file and sends it with its QR code
func (h *MemberHandler) sendFile(ctx context.Context, c telebot.Context, accountID int64, name string) error {
	content, err := h.configs.GetConfigFile(ctx, accountID, name)
	if err != nil {
		h.entry(ctx, c).Warnf("Failed to get config file %q: %v", name, err)
		return h.sendError(c, err, h.createMainKeyboard(h.accessType))
	}

	return h.sendConfigFile(c, name, content)
}

// currentAccount returns the selected account, dropping a stale selection
func (h *MemberHandler) currentAccount(ctx context.Context, c telebot.Context) *models.Account {
	state := h.stateService.GetState(c.Sender().ID)
	if state.SelectedAccount == nil {
		return nil
	}

	account, err := h.accounts.FindByID(ctx, *state.SelectedAccount)
	if err != nil || account.IsDeleted() || account.ChatID != chatID(c) {
		h.entry(ctx, c).Debugf("Dropping selected account %d", *state.SelectedAccount)
		h.stateService.ClearState(c.Sender().ID)
		return nil
	}
	return account
}

// requireAccount returns the selected account or asks the user to pick a server
func (h *MemberHandler) requireAccount(ctx context.Context, c telebot.Context) *models.Account {
	account := h.currentAccount(ctx, c)
	if account == nil {
		h.stateService.WithConversationState(c.Sender().ID, models.Default)
		_ = h.sendTextMessage(c, "Pick a server first with \""+commands.Servers+"\".", h.createMainKeyboard(h.accessType))
	}
	return account
}

// createConfigsKeyboard creates a keyboard with one button per config
func (h *MemberHandler) createConfigsKeyboard(configs []models.Config) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	rows := make([]telebot.Row, 0, len(configs)+1)
	for _, config := range configs {
		rows = append(rows, telebot.Row{telebot.Btn{Text: config.Name}})
	}
	rows = append(rows, telebot.Row{telebot.Btn{Text: commands.Cancel}})

	markup.Reply(rows...)
	return markup
}

func containsServer(servers []models.VPNProxy, id int64) bool {
	for _, server := range servers {
		if server.ID == id {
			return true
		}
	}
	return false
}
