package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/repository"
)

type executionRepository struct {
	db *DB
}

func NewExecutionRepository(db *DB) repository.ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Create(ctx context.Context, record *domain.ExecutionRecord) error {
	query := `
		INSERT INTO execution (id, command, status, exit_code, stdout, stderr, duration_ms, killed, pid, start_time, end_time)
		VALUES (:id, :command, :status, :exit_code, :stdout, :stderr, :duration_ms, :killed, :pid, :start_time, :end_time)
	`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to create execution record: %w", err)
	}
	return nil
}

func (r *executionRepository) FindByID(ctx context.Context, id string) (*domain.ExecutionRecord, error) {
	query := `
		SELECT id, command, status, exit_code, stdout, stderr, duration_ms, killed, pid, start_time, end_time
		FROM execution
		WHERE id = ?
	`

	var record domain.ExecutionRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("execution not found: %s", id)
		}
		return nil, fmt.Errorf("failed to find execution: %w", err)
	}
	return &record, nil
}

func (r *executionRepository) List(ctx context.Context, filter repository.ExecutionFilter) ([]*domain.ExecutionRecord, error) {
	query := `
		SELECT id, command, status, exit_code, stdout, stderr, duration_ms, killed, pid, start_time, end_time
		FROM execution
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY start_time DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	var records []*domain.ExecutionRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	return records, nil
}

func (r *executionRepository) Count(ctx context.Context, filter repository.ExecutionFilter) (int, error) {
	query := `SELECT COUNT(*) FROM execution WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count executions: %w", err)
	}
	return count, nil
}
