package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpn-bus-api/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x", logrus.New())
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	sqlite := &DB{driver: DriverSQLite}
	pg := &DB{driver: DriverPostgres}

	query := `UPDATE accounts SET status = ? WHERE id = ?`
	assert.Equal(t, query, sqlite.rebind(query))
	assert.Equal(t, `UPDATE accounts SET status = $1 WHERE id = $2`, pg.rebind(query))
}

func TestServerRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewServerRepository(db)

	server := &models.VPNProxy{URL: "https://vpn.example", Token: "tok", Country: "NL", MaxConnection: 10, Status: models.StatusActive}
	require.NoError(t, repo.Insert(ctx, server))
	assert.NotZero(t, server.ID)

	got, err := repo.FindByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, *server, *got)

	server.Status = models.StatusDisactive
	require.NoError(t, repo.Update(ctx, server))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusDisactive, all[0].Status)

	require.NoError(t, repo.Delete(ctx, server.ID))
	_, err = repo.FindByID(ctx, server.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, server.ID), ErrNotFound)
}

func TestUserRepository_AccountsOrderedAndAttached(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	servers := NewServerRepository(db)
	accounts := NewAccountRepository(db)
	users := NewUserRepository(db, accounts)

	server := &models.VPNProxy{URL: "https://vpn.example", Country: "DE", Status: models.StatusActive}
	require.NoError(t, servers.Insert(ctx, server))

	user := &models.User{ChatID: "100", UserName: "alice", Status: models.StatusActive}
	require.NoError(t, users.Insert(ctx, user))

	first := &models.Account{ChatID: "100", IDOnServer: "r1", ServerID: server.ID, Country: "DE", Status: models.StatusActive}
	second := &models.Account{ChatID: "100", IDOnServer: "r2", ServerID: server.ID, Country: "DE", Status: models.StatusDeleted}
	require.NoError(t, accounts.Insert(ctx, first))
	require.NoError(t, accounts.Insert(ctx, second))
	require.NoError(t, users.AttachAccount(ctx, user.ID, second.ID))
	require.NoError(t, users.AttachAccount(ctx, user.ID, first.ID))

	got, err := users.FindByChatID(ctx, "100")
	require.NoError(t, err)
	require.Len(t, got.Accounts, 2)
	assert.Equal(t, first.ID, got.Accounts[0].ID)
	assert.Equal(t, second.ID, got.Accounts[1].ID)
	require.NotNil(t, got.Accounts[0].UserID)
	assert.Equal(t, user.ID, *got.Accounts[0].UserID)

	count, err := servers.CountAccounts(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, users.Delete(ctx, user.ID))
	_, err = users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	kept, err := accounts.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.UserID)
}

func TestUserRepository_ChatIDUnique(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db, NewAccountRepository(db))

	require.NoError(t, users.Insert(ctx, &models.User{ChatID: "7", Status: models.StatusActive}))
	assert.Error(t, users.Insert(ctx, &models.User{ChatID: "7", Status: models.StatusActive}))
}

func TestAccountRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	servers := NewServerRepository(db)
	accounts := NewAccountRepository(db)

	server := &models.VPNProxy{URL: "https://vpn.example", Status: models.StatusActive}
	require.NoError(t, servers.Insert(ctx, server))

	account := &models.Account{ChatID: "5", IDOnServer: "r5", ServerID: server.ID, Status: models.StatusActive}
	require.NoError(t, accounts.Insert(ctx, account))
	require.NoError(t, accounts.UpdateStatus(ctx, account.ID, models.StatusDeleted))

	got, err := accounts.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)

	byServer, err := accounts.FindByServerID(ctx, server.ID)
	require.NoError(t, err)
	assert.Len(t, byServer, 1)

	assert.ErrorIs(t, accounts.UpdateStatus(ctx, 999, models.StatusActive), ErrNotFound)
}
