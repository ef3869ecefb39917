package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/permissions"
	"vpn-bus-api/internal/services"
)

// UserAPI is the user capability exposed over HTTP
type UserAPI interface {
	services.CrudService[models.User, int64]
	FindByChatID(ctx context.Context, chatID string) (*models.User, error)
}

// AccountAPI is the account capability exposed over HTTP
type AccountAPI interface {
	FindByName(ctx context.Context, chatID string, serverID int64) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, id int64, details *models.Account) (*models.Account, error)
	DeleteByID(ctx context.Context, id int64) error
	Action(ctx context.Context, serverID, accountID int64, kind models.Action) (bool, error)
}

// ConfigAPI is the config capability exposed over HTTP
type ConfigAPI interface {
	FindAll(ctx context.Context, accountID int64) ([]models.Config, error)
	FindByName(ctx context.Context, accountID int64, name string) (*models.Config, error)
	Exists(ctx context.Context, accountID int64, name string) (bool, error)
	Save(ctx context.Context, accountID int64, name string) (*models.Config, error)
	Update(ctx context.Context, accountID int64, newName, name string) (*models.Config, error)
	DeleteByName(ctx context.Context, accountID int64, name string) error
	GetConfigFile(ctx context.Context, accountID int64, name string) (string, error)
}

// HealthChecker reports whether the local store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the HTTP API drives
type Dependencies struct {
	Servers  services.CrudService[models.VPNProxy, int64]
	Users    UserAPI
	Accounts AccountAPI
	Configs  ConfigAPI
	Auth     *permissions.TokenAuthorizer
	Health   HealthChecker
}

// Server is the HTTP API server
type Server struct {
	engine *gin.Engine
	http   *http.Server
	deps   Dependencies
	logger *logrus.Logger
}

// NewServer creates a new HTTP API server
func NewServer(addr string, deps Dependencies, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		deps:   deps,
		logger: logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.registerRoutes()

	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves requests until Shutdown is called
func (s *Server) Start() error {
	s.logger.Infof("Starting HTTP API on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
