package repository

import (
	"context"

	"github.com/martijn/cmdgate/internal/core/domain"
)

// ExecutionFilter narrows archive queries. Zero values mean "no filter".
type ExecutionFilter struct {
	Status domain.ExecutionStatus
	Limit  int
	Offset int
}

// ExecutionRepository archives completed executions.
type ExecutionRepository interface {
	Create(ctx context.Context, record *domain.ExecutionRecord) error
	FindByID(ctx context.Context, id string) (*domain.ExecutionRecord, error)
	List(ctx context.Context, filter ExecutionFilter) ([]*domain.ExecutionRecord, error)
	Count(ctx context.Context, filter ExecutionFilter) (int, error)
}
