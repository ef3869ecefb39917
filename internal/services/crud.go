package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/storage"
	"vpn-bus-api/pkg/vpnclient"
)

// CrudService is the create/read/update/delete capability shared by the
// entity services
type CrudService[T any, ID comparable] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id ID) (*T, error)
	Save(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id ID, details *T) (*T, error)
	DeleteByID(ctx context.Context, id ID) error
}

var (
	_ CrudService[models.VPNProxy, int64] = (*ServerService)(nil)
	_ CrudService[models.User, int64]     = (*UserService)(nil)
	_ CrudService[models.Account, int64]  = (*AccountService)(nil)
)

// RemoteExecutor sends one request to a remote VPN server
type RemoteExecutor interface {
	Execute(ctx context.Context, server models.VPNProxy, method, path string, body any) (*vpnclient.Response, error)
}

// ServerStore is the persistence needed for servers
type ServerStore interface {
	FindAll(ctx context.Context) ([]models.VPNProxy, error)
	FindByID(ctx context.Context, id int64) (*models.VPNProxy, error)
	Insert(ctx context.Context, server *models.VPNProxy) error
	Update(ctx context.Context, server *models.VPNProxy) error
	Delete(ctx context.Context, id int64) error
	CountAccounts(ctx context.Context, id int64) (int, error)
}

// UserStore is the persistence needed for users
type UserStore interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByChatID(ctx context.Context, chatID string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	AttachAccount(ctx context.Context, userID, accountID int64) error
	Delete(ctx context.Context, id int64) error
}

// AccountStore is the persistence needed for accounts
type AccountStore interface {
	FindAll(ctx context.Context) ([]models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindByServerID(ctx context.Context, serverID int64) ([]models.Account, error)
	Insert(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
}

// storeError converts a storage error into a domain error
func storeError(err error, entity, key, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &apperrors.NotFoundError{Entity: entity, Key: key}
	}
	return &apperrors.PersistenceError{Operation: operation, Cause: err}
}

func idKey(id int64) string {
	return fmt.Sprint(id)
}
