package repository

import (
	"context"

	"github.com/martijn/cmdgate/internal/core/domain"
)

// ClientRepository stores API client credentials.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Delete(ctx context.Context, id string) error
}
