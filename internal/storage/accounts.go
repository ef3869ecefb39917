package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vpn-bus-api/internal/models"
)

// AccountRepository reads and writes Account rows. Rows are never removed;
// deletion is a status change.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, chat_id, id_on_server, server_name, vpn_proxy_id, user_id, country, status`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var account models.Account
	var userID sql.NullInt64
	var country, status string
	err := row.Scan(&account.ID, &account.ChatID, &account.IDOnServer, &account.ServerName,
		&account.ServerID, &userID, &country, &status)
	if userID.Valid {
		id := userID.Int64
		account.UserID = &id
	}
	account.Country = models.Country(country)
	account.Status = models.Status(status)
	return account, err
}

func (r *AccountRepository) list(ctx context.Context, where string, args ...any) ([]models.Account, error) {
	rows, err := r.db.query(ctx, `SELECT `+accountColumns+` FROM accounts `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// FindAll returns every account ordered by id
func (r *AccountRepository) FindAll(ctx context.Context) ([]models.Account, error) {
	return r.list(ctx, "")
}

// FindByUserID returns the accounts owned by a user ordered by id
func (r *AccountRepository) FindByUserID(ctx context.Context, userID int64) ([]models.Account, error) {
	return r.list(ctx, "WHERE user_id = ?", userID)
}

// FindByServerID returns the accounts living on a server ordered by id
func (r *AccountRepository) FindByServerID(ctx context.Context, serverID int64) ([]models.Account, error) {
	return r.list(ctx, "WHERE vpn_proxy_id = ?", serverID)
}

// FindByID returns the account with the given id or ErrNotFound
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := scanAccount(r.db.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get account %d: %w", id, err)
	}
	return &account, nil
}

// Insert stores a new account and sets its id
func (r *AccountRepository) Insert(ctx context.Context, account *models.Account) error {
	id, err := r.db.insert(ctx,
		`INSERT INTO accounts (chat_id, id_on_server, server_name, vpn_proxy_id, user_id, country, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ChatID, account.IDOnServer, account.ServerName, account.ServerID,
		nullableID(account.UserID), string(account.Country), string(account.Status))
	if err != nil {
		return fmt.Errorf("storage: insert account: %w", err)
	}
	account.ID = id
	return nil
}

// Update overwrites every column of an existing account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	res, err := r.db.exec(ctx,
		`UPDATE accounts SET chat_id = ?, id_on_server = ?, server_name = ?, vpn_proxy_id = ?,
		 user_id = ?, country = ?, status = ? WHERE id = ?`,
		account.ChatID, account.IDOnServer, account.ServerName, account.ServerID,
		nullableID(account.UserID), string(account.Country), string(account.Status), account.ID)
	if err != nil {
		return fmt.Errorf("storage: update account %d: %w", account.ID, err)
	}
	return affected(res)
}

// UpdateStatus changes only the status column
func (r *AccountRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	res, err := r.db.exec(ctx, `UPDATE accounts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("storage: update account %d status: %w", id, err)
	}
	return affected(res)
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
