package telegrambot

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/config"
	"vpn-bus-api/internal/correlation"
	"vpn-bus-api/internal/handlers"
	"vpn-bus-api/internal/permissions"
)

// AccessResolver decides which access type a chat user has
type AccessResolver interface {
	GetAccessType(ctx context.Context, userID int64) permissions.AccessType
}

// Bot represents a Telegram bot
type Bot struct {
	bot      *telebot.Bot
	config   *config.Config
	handlers map[permissions.AccessType]handlers.MessageHandler
	permCtrl AccessResolver
	logger   *logrus.Logger
}

// NewBot creates a new Telegram bot
func NewBot(
	cfg *config.Config,
	deps handlers.Dependencies,
	permCtrl AccessResolver,
	logger *logrus.Logger,
) (*Bot, error) {
	// Create bot settings
	settings := telebot.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
			if c != nil {
				_ = c.Send("An error occurred. Please try again later.")
			}
		},
	}

	// Create bot instance
	b, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	bot := newBot(b, cfg, handlers.NewHandlerFactory(deps, logger), permCtrl, logger)

	// Setup middleware
	bot.setupMiddleware()

	return bot, nil
}

func newBot(
	b *telebot.Bot,
	cfg *config.Config,
	factory *handlers.HandlerFactory,
	permCtrl AccessResolver,
	logger *logrus.Logger,
) *Bot {
	bot := &Bot{
		bot:      b,
		config:   cfg,
		handlers: make(map[permissions.AccessType]handlers.MessageHandler),
		permCtrl: permCtrl,
		logger:   logger,
	}

	// Initialize handlers for different access types
	bot.handlers[permissions.Admin] = factory.CreateHandler(permissions.Admin)
	bot.handlers[permissions.Member] = factory.CreateHandler(permissions.Member)
	bot.handlers[permissions.None] = factory.CreateHandler(permissions.None)

	return bot
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting Telegram bot")

	// Setup context for graceful shutdown
	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	// Start the bot
	b.bot.Start()
	return nil
}

// setupMiddleware sets up the bot middleware
func (b *Bot) setupMiddleware() {
	// Add middleware for all updates
	b.bot.Use(func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			// Log incoming message
			b.logger.Infof("Received message from %d: %s", c.Sender().ID, c.Text())

			// Pass to the next handler
			return next(c)
		}
	})

	// Handle all messages
	b.bot.Handle(telebot.OnText, b.handleUpdate)
	b.bot.Handle("/start", b.handleUpdate)
}

// handleUpdate handles an update from Telegram
func (b *Bot) handleUpdate(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}

	// Every update gets its own correlation id
	ctx := correlation.WithID(context.Background(), correlation.NewID())

	// Get access type
	accessType := b.permCtrl.GetAccessType(ctx, c.Sender().ID)

	// Get handler for access type
	handler, ok := b.handlers[accessType]
	if !ok {
		b.logger.Warnf("No handler for access type %s", accessType)
		return c.Send("You don't have permission to use this bot.")
	}

	correlation.Entry(ctx, b.logger).Debugf("Dispatching update from %d as %s", c.Sender().ID, accessType)
	return handler.Handle(ctx, c)
}
