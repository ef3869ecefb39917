package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vpn-bus-api/internal/models"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api/v1", s.correlationMiddleware, s.loggingMiddleware, s.metricsMiddleware, s.authMiddleware)

	registerCRUD[models.VPNProxy](api.Group("/vpnProxy"), "VPNProxy", s.deps.Servers, s.logger)

	users := api.Group("/user")
	registerCRUD[models.User](users, "User", s.deps.Users, s.logger)
	users.GET("/chatId/:chatId", s.handleFindUserByChatID)

	accounts := api.Group("/server/:sId/account")
	accounts.GET("/:name", s.handleFindAccount)
	accounts.POST("", s.handleSaveAccount)
	accounts.PUT("/:id", s.handleUpdateAccount)
	accounts.POST("/block/:id", s.handleAccountAction)
	accounts.POST("/unblock/:id", s.handleAccountAction)
	accounts.POST("/restart/:id", s.handleAccountAction)
	accounts.DELETE("/:id", s.handleDeleteAccount)

	configs := api.Group("/account/:aId/config")
	configs.GET("", s.handleListConfigs)
	configs.GET("/:name", s.handleFindConfig)
	configs.GET("/:name/exists", s.handleConfigExists)
	configs.GET("/:name/file", s.handleConfigFile)
	configs.POST("", s.handleSaveConfig)
	configs.PUT("/:name", s.handleRenameConfig)
	configs.DELETE("/:name", s.handleDeleteConfig)
}
