package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/correlation"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/validation"
)

// ServerService manages the registry of remote VPN servers
type ServerService struct {
	servers  ServerStore
	accounts AccountStore
	logger   *logrus.Logger
}

// ServerOverview summarises one server and the accounts living on it
type ServerOverview struct {
	Server   models.VPNProxy
	Accounts int
	Active   int
	Deleted  int
}

// NewServerService creates a new server service
func NewServerService(servers ServerStore, accounts AccountStore, logger *logrus.Logger) *ServerService {
	return &ServerService{
		servers:  servers,
		accounts: accounts,
		logger:   logger,
	}
}

// FindAll returns every server
func (s *ServerService) FindAll(ctx context.Context) ([]models.VPNProxy, error) {
	servers, err := s.servers.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "server", "", "list servers")
	}
	correlation.Entry(ctx, s.logger).Infof("Loaded %d servers", len(servers))
	return servers, nil
}

// FindByID returns the server with the given id
func (s *ServerService) FindByID(ctx context.Context, id int64) (*models.VPNProxy, error) {
	server, err := s.servers.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "server", idKey(id), "get server")
	}
	return server, nil
}

// FindActive returns the servers new accounts may be created on
func (s *ServerService) FindActive(ctx context.Context) ([]models.VPNProxy, error) {
	servers, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.VPNProxy, 0, len(servers))
	for _, server := range servers {
		if server.Status == models.StatusActive {
			active = append(active, server)
		}
	}
	return active, nil
}

// Save validates and stores a new server
func (s *ServerService) Save(ctx context.Context, server *models.VPNProxy) (*models.VPNProxy, error) {
	log := correlation.Entry(ctx, s.logger)

	if err := validation.ValidateServer(server); err != nil {
		log.Warnf("Rejected server: %v", err)
		return nil, err
	}

	created := *server
	created.ID = 0
	if created.Status == "" {
		created.Status = models.StatusActive
	}

	if err := s.servers.Insert(ctx, &created); err != nil {
		log.Errorf("Failed to save server: %v", err)
		return nil, storeError(err, "server", "", "save server")
	}

	log.Infof("Server %d saved (%s)", created.ID, created.URL)
	return &created, nil
}

// Update replaces every field of an existing server
func (s *ServerService) Update(ctx context.Context, id int64, details *models.VPNProxy) (*models.VPNProxy, error) {
	log := correlation.Entry(ctx, s.logger)

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		log.Warnf("Server %d not found for update", id)
		return nil, err
	}

	if err := validation.ValidateServer(details); err != nil {
		log.Warnf("Rejected server update: %v", err)
		return nil, err
	}

	existing.URL = details.URL
	existing.Token = details.Token
	existing.MaxConnection = details.MaxConnection
	existing.Country = details.Country
	if details.Status != "" {
		existing.Status = details.Status
	}

	if err := s.servers.Update(ctx, existing); err != nil {
		log.Errorf("Failed to update server %d: %v", id, err)
		return nil, storeError(err, "server", idKey(id), "update server")
	}

	log.Infof("Server %d updated", id)
	return existing, nil
}

// DeleteByID removes a server that no account references
func (s *ServerService) DeleteByID(ctx context.Context, id int64) error {
	log := correlation.Entry(ctx, s.logger)

	if _, err := s.FindByID(ctx, id); err != nil {
		log.Warnf("Server %d not found for deletion", id)
		return err
	}

	count, err := s.servers.CountAccounts(ctx, id)
	if err != nil {
		return storeError(err, "server", idKey(id), "count accounts")
	}
	if count > 0 {
		log.Warnf("Server %d still has %d accounts", id, count)
		return &apperrors.ConflictError{Entity: "server", Key: idKey(id), Reason: "server still has accounts"}
	}

	if err := s.servers.Delete(ctx, id); err != nil {
		log.Errorf("Failed to delete server %d: %v", id, err)
		return storeError(err, "server", idKey(id), "delete server")
	}

	log.Infof("Server %d deleted", id)
	return nil
}

// Overview returns every server with its account counts
func (s *ServerService) Overview(ctx context.Context) ([]ServerOverview, error) {
	servers, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	overview := make([]ServerOverview, 0, len(servers))
	for _, server := range servers {
		accounts, err := s.accounts.FindByServerID(ctx, server.ID)
		if err != nil {
			return nil, storeError(err, "account", idKey(server.ID), "list accounts")
		}

		item := ServerOverview{Server: server, Accounts: len(accounts)}
		for _, account := range accounts {
			switch account.Status {
			case models.StatusActive:
				item.Active++
			case models.StatusDeleted:
				item.Deleted++
			}
		}
		overview = append(overview, item)
	}
	return overview, nil
}
