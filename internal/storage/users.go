package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vpn-bus-api/internal/models"
)

// UserRepository reads and writes User rows. Accounts are loaded through
// accounts.user_id and ordered by account id.
type UserRepository struct {
	db       *DB
	accounts *AccountRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, accounts *AccountRepository) *UserRepository {
	return &UserRepository{db: db, accounts: accounts}
}

const userColumns = `id, chat_id, user_name, status`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	var status string
	err := row.Scan(&user.ID, &user.ChatID, &user.UserName, &status)
	user.Status = models.Status(status)
	return user, err
}

// FindAll returns every user with their accounts ordered by id
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list users: %w", err)
	}

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: scan user: %w", err)
		}
		users = append(users, user)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("storage: list users: %w", err)
	}

	// accounts are loaded after the cursor is closed, sqlite runs on a single connection
	for i := range users {
		if users[i].Accounts, err = r.accounts.FindByUserID(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// FindByID returns the user with the given id or ErrNotFound
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, `WHERE id = ?`, id)
}

// FindByChatID returns the user with the given chat id or ErrNotFound
func (r *UserRepository) FindByChatID(ctx context.Context, chatID string) (*models.User, error) {
	return r.findOne(ctx, `WHERE chat_id = ?`, chatID)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.queryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get user: %w", err)
	}

	if user.Accounts, err = r.accounts.FindByUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// Insert stores a new user and sets its id
func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	id, err := r.db.insert(ctx,
		`INSERT INTO users (chat_id, user_name, status) VALUES (?, ?, ?)`,
		user.ChatID, user.UserName, string(user.Status))
	if err != nil {
		return fmt.Errorf("storage: insert user: %w", err)
	}
	user.ID = id
	return nil
}

// Update overwrites the user columns; accounts are managed through AttachAccount
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.db.exec(ctx,
		`UPDATE users SET chat_id = ?, user_name = ?, status = ? WHERE id = ?`,
		user.ChatID, user.UserName, string(user.Status), user.ID)
	if err != nil {
		return fmt.Errorf("storage: update user %d: %w", user.ID, err)
	}
	return affected(res)
}

// AttachAccount makes the user the owner of the account
func (r *UserRepository) AttachAccount(ctx context.Context, userID, accountID int64) error {
	res, err := r.db.exec(ctx, `UPDATE accounts SET user_id = ? WHERE id = ?`, userID, accountID)
	if err != nil {
		return fmt.Errorf("storage: attach account %d to user %d: %w", accountID, userID, err)
	}
	return affected(res)
}

// Delete removes a user row; owned accounts are kept and detached
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.rebind(`UPDATE accounts SET user_id = NULL WHERE user_id = ?`), id); err != nil {
		return fmt.Errorf("storage: detach accounts of user %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, r.db.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("storage: delete user %d: %w", id, err)
	}
	if err := affected(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}
