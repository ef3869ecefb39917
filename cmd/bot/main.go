package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/config"
	"vpn-bus-api/internal/handlers"
	"vpn-bus-api/internal/permissions"
	"vpn-bus-api/internal/services"
	"vpn-bus-api/internal/storage"
	"vpn-bus-api/pkg/telegrambot"
	"vpn-bus-api/pkg/vpnclient"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: ", err)
	}
	if err := config.ValidateBot(cfg); err != nil {
		logger.Fatal("Invalid bot configuration: ", err)
	}
	setLogLevel(logger, cfg.LogLevel)

	// Open local store
	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	servers := storage.NewServerRepository(db)
	accounts := storage.NewAccountRepository(db)
	users := storage.NewUserRepository(db, accounts)

	// Initialize services
	remote := vpnclient.NewClient(cfg.Remote.Timeout, cfg.Remote.InsecureSkipVerify, logger)
	locks := services.NewKeyedLocker()

	serverService := services.NewServerService(servers, accounts, logger)
	userService := services.NewUserService(users, logger)
	accountService := services.NewAccountService(accounts, users, servers, remote, locks, logger)
	configService := services.NewConfigService(accounts, servers, remote, locks, logger)

	// Setup permission controller
	permController := permissions.NewController(cfg.Telegram.AdminIDs, userService, logger)

	// Initialize bot
	bot, err := telegrambot.NewBot(cfg, handlers.Dependencies{
		Servers:  serverService,
		Users:    userService,
		Accounts: accountService,
		Configs:  configService,
		States:   services.NewUserStateService(logger),
		QR:       services.NewQRService(logger),
	}, permController, logger)
	if err != nil {
		logger.Fatal("Failed to create bot: ", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start bot
	logger.Info("Starting VPN Telegram bot")
	if err := bot.Start(ctx); err != nil {
		logger.Fatal("Bot failed: ", err)
	}
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Set formatter
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}

// setLogLevel applies the configured log level, defaulting to info
func setLogLevel(logger *logrus.Logger, logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
}
