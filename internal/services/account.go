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
	"vpn-bus-api/internal/metrics"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/pkg/vpnclient"
)

// AccountService keeps local account records in sync with the accounts
// living on remote VPN servers
type AccountService struct {
	accounts AccountStore
	users    UserStore
	servers  ServerStore
	remote   RemoteExecutor
	locks    *KeyedLocker
	logger   *logrus.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accounts AccountStore,
	users UserStore,
	servers ServerStore,
	remote RemoteExecutor,
	locks *KeyedLocker,
	logger *logrus.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		users:    users,
		servers:  servers,
		remote:   remote,
		locks:    locks,
		logger:   logger,
	}
}

// FindAll returns every local account, deleted ones included
func (s *AccountService) FindAll(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "account", "", "list accounts")
	}
	return accounts, nil
}

// FindByID returns the local account with the given id
func (s *AccountService) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "account", idKey(id), "get account")
	}
	return account, nil
}

// FindByName returns the account a chat owns on a server. A known account
// is answered locally; otherwise the server is asked and an existing
// remote account is recorded locally and attached to the user.
func (s *AccountService) FindByName(ctx context.Context, chatID string, serverID int64) (*models.Account, error) {
	log := correlation.Entry(ctx, s.logger).WithFields(logrus.Fields{"chat_id": chatID, "server_id": serverID})

	if chatID == "" {
		log.Warn("Chat id is missing")
		return nil, &apperrors.ValidationError{Field: "chatId", Message: "is required"}
	}

	unlock := s.locks.Lock(accountLockKey(chatID, serverID))
	defer unlock()

	user, server, err := s.resolveOwner(ctx, chatID, serverID)
	if err != nil {
		log.Warnf("Cannot resolve account owner: %v", err)
		return nil, err
	}

	if account, ok := user.AccountOnServer(serverID); ok {
		log.Infof("Found account %d locally", account.ID)
		found := *account
		return &found, nil
	}

	path := fmt.Sprintf(constants.AccountPath, url.PathEscape(chatID))
	resp, err := s.remote.Execute(ctx, *server, http.MethodGet, path, nil)
	if err != nil {
		var apiErr *apperrors.RemoteAPIError
		if errors.As(err, &apiErr) {
			log.Infof("Account not found on server (status %d)", apiErr.Status)
			return nil, &apperrors.NotFoundError{Entity: "account", Key: accountLockKey(chatID, serverID)}
		}
		log.Errorf("Failed to look up account: %v", err)
		return nil, err
	}

	envelope, err := vpnclient.DecodeEnvelope[string]("find account", resp.Body)
	if err != nil {
		log.Errorf("Failed to parse account lookup: %v", err)
		return nil, err
	}

	account := &models.Account{
		ChatID:     chatID,
		IDOnServer: envelope.Data,
		ServerName: serverDisplayName(server),
		ServerID:   server.ID,
		UserID:     &user.ID,
		Country:    server.Country,
		Status:     models.StatusActive,
	}
	if err := s.accounts.Insert(ctx, account); err != nil {
		log.Errorf("Failed to record adopted account: %v", err)
		return nil, &apperrors.PersistenceError{Operation: "adopt account", Cause: err}
	}

	metrics.AccountsAdoptedTotal.Inc()
	log.Infof("Adopted remote account %s as %d", account.IDOnServer, account.ID)
	return account, nil
}

// Save creates the account on the remote server and records it locally.
// An account already present on the server is a conflict.
func (s *AccountService) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	log := correlation.Entry(ctx, s.logger).WithFields(logrus.Fields{"chat_id": account.ChatID, "server_id": account.ServerID})

	if account.ChatID == "" {
		log.Warn("Chat id is missing")
		return nil, &apperrors.ValidationError{Field: "chatId", Message: "is required"}
	}
	if account.Country != "" && !account.Country.IsValid() {
		log.Warnf("Unknown country %q", account.Country)
		return nil, &apperrors.ValidationError{Field: "country", Message: fmt.Sprintf("unknown country %q", account.Country)}
	}
	if account.Status != "" && !account.Status.IsValid() {
		log.Warnf("Unknown status %q", account.Status)
		return nil, &apperrors.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", account.Status)}
	}

	unlock := s.locks.Lock(accountLockKey(account.ChatID, account.ServerID))
	defer unlock()

	user, server, err := s.resolveOwner(ctx, account.ChatID, account.ServerID)
	if err != nil {
		log.Warnf("Cannot resolve account owner: %v", err)
		return nil, err
	}

	path := fmt.Sprintf(constants.AccountPath, url.PathEscape(account.ChatID))

	_, err = s.remote.Execute(ctx, *server, http.MethodGet, path, nil)
	if err == nil {
		log.Warnf("Account already exists on server %s", server.URL)
		return nil, &apperrors.ConflictError{
			Entity: "account",
			Key:    accountLockKey(account.ChatID, account.ServerID),
			Reason: "account already exists on the server",
		}
	}
	var apiErr *apperrors.RemoteAPIError
	if !errors.As(err, &apiErr) {
		log.Errorf("Failed to check for an existing account: %v", err)
		return nil, err
	}

	resp, err := s.remote.Execute(ctx, *server, http.MethodPost, path, nil)
	if err != nil {
		log.Errorf("Failed to create account: %v", err)
		return nil, err
	}

	envelope, err := vpnclient.DecodeEnvelope[string]("create account", resp.Body)
	if err != nil {
		log.Errorf("Failed to parse created account: %v", err)
		return nil, err
	}

	created := &models.Account{
		ChatID:     account.ChatID,
		IDOnServer: envelope.Data,
		ServerName: account.ServerName,
		ServerID:   server.ID,
		Country:    account.Country,
		Status:     account.Status,
	}
	if created.ServerName == "" {
		created.ServerName = serverDisplayName(server)
	}
	if created.Country == "" {
		created.Country = server.Country
	}
	if created.Status == "" {
		created.Status = models.StatusActive
	}

	if err := s.accounts.Insert(ctx, created); err != nil {
		log.Errorf("Account %s created remotely but not recorded: %v", created.IDOnServer, err)
		return nil, &apperrors.PersistenceError{Operation: "save account", Cause: err}
	}

	if err := s.users.AttachAccount(ctx, user.ID, created.ID); err != nil {
		log.Errorf("Account %d recorded but not attached to user %d: %v", created.ID, user.ID, err)
		return nil, &apperrors.PersistenceError{Operation: "attach account", Cause: err}
	}
	created.UserID = &user.ID

	log.Infof("Account %d created (remote id %s)", created.ID, created.IDOnServer)
	return created, nil
}

// Update merges the non-empty fields of details into the local record.
// The remote server is not contacted.
func (s *AccountService) Update(ctx context.Context, id int64, details *models.Account) (*models.Account, error) {
	log := correlation.Entry(ctx, s.logger).WithField("account_id", id)

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		log.Warnf("Account not found for update: %v", err)
		return nil, err
	}

	unlock := s.locks.Lock(accountLockKey(existing.ChatID, existing.ServerID))
	defer unlock()

	existing, err = s.FindByID(ctx, id)
	if err != nil {
		log.Warnf("Account disappeared before update: %v", err)
		return nil, err
	}

	// A new chat id moves the account to the user owning that chat
	if details.ChatID != "" && details.ChatID != existing.ChatID {
		owner, err := s.users.FindByChatID(ctx, details.ChatID)
		if err != nil {
			log.Warnf("No user with chat id %s", details.ChatID)
			return nil, storeError(err, "user", details.ChatID, "get user")
		}
		existing.ChatID = owner.ChatID
		existing.UserID = &owner.ID
	}
	if details.IDOnServer != "" {
		existing.IDOnServer = details.IDOnServer
	}
	if details.ServerName != "" {
		existing.ServerName = details.ServerName
	}
	if details.ServerID != 0 && details.ServerID != existing.ServerID {
		if _, err := s.servers.FindByID(ctx, details.ServerID); err != nil {
			log.Warnf("Server %d not found", details.ServerID)
			return nil, storeError(err, "server", idKey(details.ServerID), "get server")
		}
		existing.ServerID = details.ServerID
	}
	if details.Country != "" {
		if !details.Country.IsValid() {
			return nil, &apperrors.ValidationError{Field: "country", Message: fmt.Sprintf("unknown country %q", details.Country)}
		}
		existing.Country = details.Country
	}
	if details.Status != "" {
		if !details.Status.IsValid() {
			return nil, &apperrors.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", details.Status)}
		}
		existing.Status = details.Status
	}

	if err := s.accounts.Update(ctx, existing); err != nil {
		log.Errorf("Failed to update account: %v", err)
		return nil, storeError(err, "account", idKey(id), "update account")
	}

	log.Info("Account updated")
	return existing, nil
}

// DeleteByID deletes the account on its server and then marks the local
// record DELETED. The row itself is kept.
func (s *AccountService) DeleteByID(ctx context.Context, id int64) error {
	log := correlation.Entry(ctx, s.logger).WithField("account_id", id)

	account, err := s.FindByID(ctx, id)
	if err != nil {
		log.Warnf("Account not found for deletion: %v", err)
		return err
	}

	unlock := s.locks.Lock(accountLockKey(account.ChatID, account.ServerID))
	defer unlock()

	// Decide on the state stored after the lock was taken
	account, err = s.FindByID(ctx, id)
	if err != nil {
		log.Warnf("Account disappeared before deletion: %v", err)
		return err
	}

	if account.IsDeleted() {
		log.Warn("Account is already deleted")
		return &apperrors.ConflictError{Entity: "account", Key: idKey(id), Reason: "account is already deleted"}
	}

	server, err := s.servers.FindByID(ctx, account.ServerID)
	if err != nil {
		log.Warnf("Server %d not found", account.ServerID)
		return storeError(err, "server", idKey(account.ServerID), "get server")
	}

	path := fmt.Sprintf(constants.AccountPath, url.PathEscape(account.IDOnServer))
	resp, err := s.remote.Execute(ctx, *server, http.MethodDelete, path, nil)
	if err != nil {
		log.Errorf("Failed to delete account on server %d: %v", server.ID, err)
		return err
	}
	if _, err := vpnclient.DecodeEnvelope[any]("delete account", resp.Body); err != nil {
		log.Errorf("Failed to parse delete response: %v", err)
		return err
	}

	if err := s.accounts.UpdateStatus(ctx, id, models.StatusDeleted); err != nil {
		log.Errorf("Account deleted remotely but not marked locally: %v", err)
		return &apperrors.PersistenceError{Operation: "delete account", Cause: err}
	}

	log.Info("Account deleted")
	return nil
}

// Action runs a lifecycle action against the account on its server. The
// error result reports rejected input; false reports that the server did
// not confirm the action.
func (s *AccountService) Action(ctx context.Context, serverID, accountID int64, kind models.Action) (bool, error) {
	log := correlation.Entry(ctx, s.logger).WithFields(logrus.Fields{
		"server_id":  serverID,
		"account_id": accountID,
		"action":     kind,
	})

	var pathTemplate string
	switch kind {
	case models.ActionBlock:
		pathTemplate = constants.AccountBlockPath
	case models.ActionUnblock:
		pathTemplate = constants.AccountUnblockPath
	case models.ActionRestart:
		pathTemplate = constants.AccountRestartPath
	default:
		log.Warn("Unknown action")
		return false, &apperrors.ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", kind)}
	}

	account, err := s.FindByID(ctx, accountID)
	if err != nil {
		log.Warnf("Account not found: %v", err)
		return false, err
	}

	if account.ServerID != serverID {
		log.Warnf("Account belongs to server %d", account.ServerID)
		return false, &apperrors.NotFoundError{Entity: "account", Key: fmt.Sprintf("%d on server %d", accountID, serverID)}
	}

	unlock := s.locks.Lock(accountLockKey(account.ChatID, account.ServerID))
	defer unlock()

	// Decide on the state stored after the lock was taken
	account, err = s.FindByID(ctx, accountID)
	if err != nil {
		log.Warnf("Account disappeared before action: %v", err)
		return false, err
	}

	if account.ServerID != serverID {
		log.Warnf("Account moved to server %d", account.ServerID)
		return false, &apperrors.NotFoundError{Entity: "account", Key: fmt.Sprintf("%d on server %d", accountID, serverID)}
	}

	if account.IsDeleted() {
		log.Warn("Account is deleted")
		return false, &apperrors.ConflictError{Entity: "account", Key: idKey(accountID), Reason: "account is deleted"}
	}

	_, server, err := s.resolveOwner(ctx, account.ChatID, serverID)
	if err != nil {
		log.Warnf("Cannot resolve account owner: %v", err)
		return false, err
	}

	path := fmt.Sprintf(pathTemplate, url.PathEscape(account.IDOnServer))
	resp, err := s.remote.Execute(ctx, *server, http.MethodPost, path, nil)
	if err != nil {
		log.Errorf("Action failed on server: %v", err)
		metrics.AccountActionsTotal.WithLabelValues(string(kind), "failed").Inc()
		return false, nil
	}
	if _, err := vpnclient.DecodeEnvelope[any]("account action", resp.Body); err != nil {
		log.Errorf("Failed to parse action response: %v", err)
		metrics.AccountActionsTotal.WithLabelValues(string(kind), "failed").Inc()
		return false, nil
	}

	if next := kind.ResultingStatus(account.Status); next != account.Status {
		if err := s.accounts.UpdateStatus(ctx, accountID, next); err != nil {
			log.Errorf("Action succeeded remotely but status %s was not stored: %v", next, err)
			metrics.AccountActionsTotal.WithLabelValues(string(kind), "failed").Inc()
			return false, &apperrors.PersistenceError{Operation: "account action", Cause: err}
		}
	}

	metrics.AccountActionsTotal.WithLabelValues(string(kind), "success").Inc()
	log.Info("Action completed")
	return true, nil
}

// resolveOwner loads the user owning a chat id and the target server
func (s *AccountService) resolveOwner(ctx context.Context, chatID string, serverID int64) (*models.User, *models.VPNProxy, error) {
	user, err := s.users.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, nil, storeError(err, "user", chatID, "get user")
	}

	server, err := s.servers.FindByID(ctx, serverID)
	if err != nil {
		return nil, nil, storeError(err, "server", idKey(serverID), "get server")
	}

	return user, server, nil
}

func serverDisplayName(server *models.VPNProxy) string {
	if u, err := url.Parse(server.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return server.URL
}
