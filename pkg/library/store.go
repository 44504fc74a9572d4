package library

import "context"

// ItemStore is the read/write interface for persisted items.
type ItemStore interface {
	Write(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Read(ctx context.Context, id string) (*Item, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Item, error)
}

var _ ItemStore = (*FileStore)(nil)
