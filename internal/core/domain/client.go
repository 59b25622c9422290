package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is an API client credential. Secret holds a bcrypt hash; the
// plain secret is only shown once, at creation time.
type Client struct {
	ID        string    `db:"id" json:"id"`
	Secret    string    `db:"secret" json:"-"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewClient(label, secretHash string) *Client {
	return &Client{
		ID:        uuid.New().String(),
		Secret:    secretHash,
		Label:     label,
		CreatedAt: time.Now(),
	}
}
