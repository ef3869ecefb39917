package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/config"
	"vpn-bus-api/internal/httpapi"
	"vpn-bus-api/internal/permissions"
	"vpn-bus-api/internal/services"
	"vpn-bus-api/internal/storage"
	"vpn-bus-api/pkg/vpnclient"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: ", err)
	}
	if err := config.ValidateAPI(cfg); err != nil {
		logger.Fatal("Invalid API configuration: ", err)
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

	server := httpapi.NewServer(cfg.HTTP.Addr, httpapi.Dependencies{
		Servers:  services.NewServerService(servers, accounts, logger),
		Users:    services.NewUserService(users, logger),
		Accounts: services.NewAccountService(accounts, users, servers, remote, locks, logger),
		Configs:  services.NewConfigService(accounts, servers, remote, locks, logger),
		Auth:     permissions.NewTokenAuthorizer(cfg.HTTP.Token),
		Health:   db,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for a shutdown signal or a server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Errorf("HTTP API failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shut down HTTP API: %v", err)
	}
	logger.Info("HTTP API stopped")
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
