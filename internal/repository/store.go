package repository

import (
	"context"

	"message-store/internal/domain"
)

// Store is the keyed message table shared by every backend.
// Insert fails with domain.ErrMessageExists when the id is live and Replace
// fails with domain.ErrMessageNotFound when it is not. Get and Delete report a
// missing id through the boolean, not an error.
type Store interface {
	List(ctx context.Context) ([]domain.Message, error)
	Get(ctx context.Context, id string) (domain.Message, bool, error)
	Insert(ctx context.Context, msg domain.Message) error
	Replace(ctx context.Context, msg domain.Message) error
	Delete(ctx context.Context, id string) (domain.Message, bool, error)
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*BadgerStore)(nil)
	_ Store = (*DynamoClient)(nil)
)
