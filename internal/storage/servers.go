package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vpn-bus-api/internal/models"
)

// ServerRepository reads and writes VPNProxy rows
type ServerRepository struct {
	db *DB
}

// NewServerRepository creates a new server repository
func NewServerRepository(db *DB) *ServerRepository {
	return &ServerRepository{db: db}
}

const serverColumns = `id, url, token, country, max_connection, status`

func scanServer(row interface{ Scan(...any) error }) (models.VPNProxy, error) {
	var server models.VPNProxy
	var country, status string
	err := row.Scan(&server.ID, &server.URL, &server.Token, &country, &server.MaxConnection, &status)
	server.Country = models.Country(country)
	server.Status = models.Status(status)
	return server, err
}

// FindAll returns every server ordered by id
func (r *ServerRepository) FindAll(ctx context.Context) ([]models.VPNProxy, error) {
	rows, err := r.db.query(ctx, `SELECT `+serverColumns+` FROM vpn_proxies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list servers: %w", err)
	}
	defer rows.Close()

	servers := []models.VPNProxy{}
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan server: %w", err)
		}
		servers = append(servers, server)
	}
	return servers, rows.Err()
}

// FindByID returns the server with the given id or ErrNotFound
func (r *ServerRepository) FindByID(ctx context.Context, id int64) (*models.VPNProxy, error) {
	server, err := scanServer(r.db.queryRow(ctx, `SELECT `+serverColumns+` FROM vpn_proxies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get server %d: %w", id, err)
	}
	return &server, nil
}

// Insert stores a new server and sets its id
func (r *ServerRepository) Insert(ctx context.Context, server *models.VPNProxy) error {
	id, err := r.db.insert(ctx,
		`INSERT INTO vpn_proxies (url, token, country, max_connection, status) VALUES (?, ?, ?, ?, ?)`,
		server.URL, server.Token, string(server.Country), server.MaxConnection, string(server.Status))
	if err != nil {
		return fmt.Errorf("storage: insert server: %w", err)
	}
	server.ID = id
	return nil
}

// Update overwrites every column of an existing server
func (r *ServerRepository) Update(ctx context.Context, server *models.VPNProxy) error {
	res, err := r.db.exec(ctx,
		`UPDATE vpn_proxies SET url = ?, token = ?, country = ?, max_connection = ?, status = ? WHERE id = ?`,
		server.URL, server.Token, string(server.Country), server.MaxConnection, string(server.Status), server.ID)
	if err != nil {
		return fmt.Errorf("storage: update server %d: %w", server.ID, err)
	}
	return affected(res)
}

// Delete removes a server row
func (r *ServerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.exec(ctx, `DELETE FROM vpn_proxies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: delete server %d: %w", id, err)
	}
	return affected(res)
}

// CountAccounts returns how many accounts reference the server, deleted ones included
func (r *ServerRepository) CountAccounts(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE vpn_proxy_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count accounts of server %d: %w", id, err)
	}
	return n, nil
}
