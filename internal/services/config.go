package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/constants"
	"vpn-bus-api/internal/correlation"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/validation"
	"vpn-bus-api/pkg/vpnclient"
)

// ConfigService manages the config profiles of an account. Configs exist
// only on the remote server; every read is a live listing.
type ConfigService struct {
	accounts AccountStore
	servers  ServerStore
	remote   RemoteExecutor
	locks    *KeyedLocker
	logger   *logrus.Logger
}

// NewConfigService creates a new config service
func NewConfigService(accounts AccountStore, servers ServerStore, remote RemoteExecutor, locks *KeyedLocker, logger *logrus.Logger) *ConfigService {
	return &ConfigService{
		accounts: accounts,
		servers:  servers,
		remote:   remote,
		locks:    locks,
		logger:   logger,
	}
}

// FindAll lists the configs of an account
func (s *ConfigService) FindAll(ctx context.Context, accountID int64) ([]models.Config, error) {
	log := s.entry(ctx, accountID)

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return nil, err
	}

	return s.list(ctx, log, account, server)
}

// FindByName returns the first config of an account with the given name
func (s *ConfigService) FindByName(ctx context.Context, accountID int64, name string) (*models.Config, error) {
	log := s.entry(ctx, accountID).WithField("config", name)

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return nil, err
	}

	return s.findByName(ctx, log, account, server, name)
}

// Exists asks the server whether a config with the given name exists
func (s *ConfigService) Exists(ctx context.Context, accountID int64, name string) (bool, error) {
	log := s.entry(ctx, accountID).WithField("config", name)

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return false, err
	}

	path := fmt.Sprintf(constants.ConfigNamePath, url.PathEscape(account.IDOnServer), url.PathEscape(name))
	if _, err := s.remote.Execute(ctx, *server, http.MethodGet, path, nil); err != nil {
		var apiErr *apperrors.RemoteAPIError
		if errors.As(err, &apiErr) {
			return false, nil
		}
		log.Errorf("Failed to probe config: %v", err)
		return false, err
	}
	return true, nil
}

// Save creates a config with the given name. Blocked or deleted accounts
// and names already in use are rejected.
func (s *ConfigService) Save(ctx context.Context, accountID int64, name string) (*models.Config, error) {
	log := s.entry(ctx, accountID).WithField("config", name)

	if err := validation.ValidateConfigName(name); err != nil {
		log.Warnf("Rejected config name: %v", err)
		return nil, err
	}

	unlock := s.locks.Lock(configLockKey(accountID))
	defer unlock()

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return nil, err
	}

	if account.Status != models.StatusActive {
		log.Warnf("Account is %s", account.Status)
		return nil, &apperrors.ConflictError{
			Entity: "config",
			Key:    name,
			Reason: fmt.Sprintf("account is %s", account.Status),
		}
	}

	_, err = s.findByName(ctx, log, account, server, name)
	if err == nil {
		log.Warn("Config already exists")
		return nil, &apperrors.ConflictError{Entity: "config", Key: name, Reason: "config already exists"}
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	path := fmt.Sprintf(constants.ConfigNamePath, url.PathEscape(account.IDOnServer), url.PathEscape(name))
	resp, err := s.remote.Execute(ctx, *server, http.MethodPost, path, nil)
	if err != nil {
		log.Errorf("Failed to create config: %v", err)
		return nil, err
	}

	envelope, err := vpnclient.DecodeEnvelope[string]("create config", resp.Body)
	if err != nil {
		log.Errorf("Failed to parse created config: %v", err)
		return nil, err
	}

	log.Infof("Config created (remote id %s)", envelope.Data)
	return &models.Config{Name: name, IDOnServer: envelope.Data, AccountID: account.ID}, nil
}

// Update renames a config and returns it as listed under the new name
func (s *ConfigService) Update(ctx context.Context, accountID int64, newName, name string) (*models.Config, error) {
	log := s.entry(ctx, accountID).WithFields(logrus.Fields{"config": name, "new_name": newName})

	if err := validation.ValidateConfigName(newName); err != nil {
		log.Warnf("Rejected config name: %v", err)
		return nil, err
	}

	unlock := s.locks.Lock(configLockKey(accountID))
	defer unlock()

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return nil, err
	}

	configs, err := s.list(ctx, log, account, server)
	if err != nil {
		return nil, err
	}

	config, found := firstByName(configs, name)
	if !found {
		log.Warn("Config not found")
		return nil, &apperrors.NotFoundError{Entity: "config", Key: name}
	}
	if newName != name {
		if _, taken := firstByName(configs, newName); taken {
			log.Warn("New config name is taken")
			return nil, &apperrors.ConflictError{Entity: "config", Key: newName, Reason: "config already exists"}
		}
	}

	path := fmt.Sprintf(constants.ConfigRenamePath,
		url.PathEscape(account.IDOnServer), url.PathEscape(config.IDOnServer), url.PathEscape(newName))
	if _, err := s.remote.Execute(ctx, *server, http.MethodPut, path, nil); err != nil {
		log.Errorf("Failed to rename config: %v", err)
		return nil, err
	}

	log.Info("Config renamed")
	return s.findByName(ctx, log, account, server, newName)
}

// DeleteByName deletes a config on the server
func (s *ConfigService) DeleteByName(ctx context.Context, accountID int64, name string) error {
	log := s.entry(ctx, accountID).WithField("config", name)

	unlock := s.locks.Lock(configLockKey(accountID))
	defer unlock()

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return err
	}

	config, err := s.findByName(ctx, log, account, server, name)
	if err != nil {
		return err
	}

	path := fmt.Sprintf(constants.ConfigNamePath, url.PathEscape(account.IDOnServer), url.PathEscape(config.IDOnServer))
	if _, err := s.remote.Execute(ctx, *server, http.MethodDelete, path, nil); err != nil {
		log.Errorf("Failed to delete config: %v", err)
		return err
	}

	log.Info("Config deleted")
	return nil
}

// GetConfigFile returns the client configuration text of a config
func (s *ConfigService) GetConfigFile(ctx context.Context, accountID int64, name string) (string, error) {
	log := s.entry(ctx, accountID).WithField("config", name)

	account, server, err := s.resolve(ctx, accountID)
	if err != nil {
		log.Warnf("Cannot resolve account: %v", err)
		return "", err
	}

	config, err := s.findByName(ctx, log, account, server, name)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf(constants.ConfigFilePath, url.PathEscape(account.IDOnServer), url.PathEscape(config.IDOnServer))
	resp, err := s.remote.Execute(ctx, *server, http.MethodGet, path, nil)
	if err != nil {
		log.Errorf("Failed to fetch config file: %v", err)
		return "", err
	}

	envelope, err := vpnclient.DecodeEnvelope[string]("get config file", resp.Body)
	if err != nil {
		log.Errorf("Failed to parse config file: %v", err)
		return "", err
	}

	log.Debug("Config file fetched")
	return envelope.Data, nil
}

func (s *ConfigService) list(ctx context.Context, log *logrus.Entry, account *models.Account, server *models.VPNProxy) ([]models.Config, error) {
	path := fmt.Sprintf(constants.ConfigListPath, url.PathEscape(account.IDOnServer))
	resp, err := s.remote.Execute(ctx, *server, http.MethodGet, path, nil)
	if err != nil {
		log.Errorf("Failed to list configs: %v", err)
		return nil, err
	}

	envelope, err := vpnclient.DecodeEnvelope[[]models.RemoteConfig]("list configs", resp.Body)
	if err != nil {
		log.Errorf("Failed to parse config list: %v", err)
		return nil, err
	}

	configs := make([]models.Config, 0, len(envelope.Data))
	for _, remote := range envelope.Data {
		configs = append(configs, models.Config{Name: remote.Name, IDOnServer: remote.ID, AccountID: account.ID})
	}
	log.Debugf("Listed %d configs", len(configs))
	return configs, nil
}

func (s *ConfigService) findByName(ctx context.Context, log *logrus.Entry, account *models.Account, server *models.VPNProxy, name string) (*models.Config, error) {
	configs, err := s.list(ctx, log, account, server)
	if err != nil {
		return nil, err
	}

	config, found := firstByName(configs, name)
	if !found {
		return nil, &apperrors.NotFoundError{Entity: "config", Key: name}
	}
	return &config, nil
}

// resolve loads an account and the server it lives on
func (s *ConfigService) resolve(ctx context.Context, accountID int64) (*models.Account, *models.VPNProxy, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, nil, storeError(err, "account", idKey(accountID), "get account")
	}

	server, err := s.servers.FindByID(ctx, account.ServerID)
	if err != nil {
		return nil, nil, storeError(err, "server", idKey(account.ServerID), "get server")
	}

	return account, server, nil
}

func (s *ConfigService) entry(ctx context.Context, accountID int64) *logrus.Entry {
	return correlation.Entry(ctx, s.logger).WithField("account_id", accountID)
}

func firstByName(configs []models.Config, name string) (models.Config, bool) {
	for _, config := range configs {
		if config.Name == name {
			return config, true
		}
	}
	return models.Config{}, false
}
