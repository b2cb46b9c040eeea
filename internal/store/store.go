// Package store provides key-addressable persistence for conversation records.
package store

import (
	"context"
	"errors"

	"github.com/assist-link/support-agent/internal/model"
)

// ErrNotFound is returned when no conversation exists for the given ID.
var ErrNotFound = errors.New("conversation not found")

// Store is a key-addressable store of conversation records. Operations are
// atomic per conversation ID. Implementations may be backed by anything that
// honors that contract; the default is process-scoped memory.
type Store interface {
	// Get returns a copy of the conversation, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Conversation, error)

	// Put stores the conversation, replacing any existing record.
	Put(ctx context.Context, conv *model.Conversation) error

	// List returns all conversations ordered by creation time, most recent first.
	List(ctx context.Context) ([]*model.Conversation, error)
}
