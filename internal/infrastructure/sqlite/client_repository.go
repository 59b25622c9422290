package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/repository"
)

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO client (id, secret, label, created_at)
		VALUES (:id, :secret, :label, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT id, secret, label, created_at FROM client WHERE id = ?`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client not found: %s", id)
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	query := `SELECT id, secret, label, created_at FROM client ORDER BY created_at ASC`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client not found: %s", id)
	}
	return nil
}
