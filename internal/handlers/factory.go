package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/permissions"
	"vpn-bus-api/internal/services"
)

// MessageHandler defines the interface for handling Telegram messages
type MessageHandler interface {
	Handle(ctx context.Context, c telebot.Context) error
	CanHandle(accessType permissions.AccessType) bool
}

// ServerDirectory lists the servers chat users can pick from
type ServerDirectory interface {
	FindActive(ctx context.Context) ([]models.VPNProxy, error)
	Overview(ctx context.Context) ([]services.ServerOverview, error)
}

// UserRegistry registers chat users
type UserRegistry interface {
	Register(ctx context.Context, chatID, userName string) (*models.User, bool, error)
}

// AccountProvisioner finds or creates the account of a chat user on a server
type AccountProvisioner interface {
	FindByName(ctx context.Context, chatID string, serverID int64) (*models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
}

// ConfigManager manages the configs of an account
type ConfigManager interface {
	FindAll(ctx context.Context, accountID int64) ([]models.Config, error)
	Save(ctx context.Context, accountID int64, name string) (*models.Config, error)
	DeleteByName(ctx context.Context, accountID int64, name string) error
	GetConfigFile(ctx context.Context, accountID int64, name string) (string, error)
}

var (
	_ ServerDirectory    = (*services.ServerService)(nil)
	_ UserRegistry       = (*services.UserService)(nil)
	_ AccountProvisioner = (*services.AccountService)(nil)
	_ ConfigManager      = (*services.ConfigService)(nil)
)

// Dependencies groups the services the handlers drive
type Dependencies struct {
	Servers  ServerDirectory
	Users    UserRegistry
	Accounts AccountProvisioner
	Configs  ConfigManager
	States   *services.UserStateService
	QR       *services.QRService
}

// HandlerFactory creates message handlers
type HandlerFactory struct {
	deps   Dependencies
	logger *logrus.Logger
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(deps Dependencies, logger *logrus.Logger) *HandlerFactory {
	return &HandlerFactory{
		deps:   deps,
		logger: logger,
	}
}

// CreateHandler creates a message handler for the given access type
func (f *HandlerFactory) CreateHandler(accessType permissions.AccessType) MessageHandler {
	switch accessType {
	case permissions.Admin:
		return NewAdminHandler(f.deps, f.logger)
	case permissions.Member:
		return NewMemberHandler(f.deps, f.logger)
	case permissions.None:
		return NewGuestHandler(f.deps, f.logger)
	default:
		f.logger.Warnf("Unknown access type: %d", accessType)
		return NewGuestHandler(f.deps, f.logger)
	}
}
