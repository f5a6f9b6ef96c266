// Package storage persists full snapshots of the expense collection.
package storage

import (
	"context"
	"errors"
	"fmt"

	"expenses/internal/core"
)

var (
	// ErrMalformedStorage means the storage location exists but its content
	// cannot be decoded into expenses. The content is left untouched.
	ErrMalformedStorage = errors.New("malformed storage")
	// ErrDuplicateID means two stored records share an identifier.
	ErrDuplicateID = errors.New("duplicate expense id")
)

// Snapshotter reads and writes the whole expense collection at once.
type Snapshotter interface {
	// Load returns the stored expenses in insertion order. An absent
	// location is an empty snapshot, not an error.
	Load(ctx context.Context) ([]core.Expense, error)
	// Save replaces the stored collection with expenses. Readers never
	// observe a partially written collection.
	Save(ctx context.Context, expenses []core.Expense) error
	// Location describes where the snapshot lives, for logs.
	Location() string
	Close() error
}

func checkUniqueIDs(expenses []core.Expense) error {
	seen := make(map[int64]struct{}, len(expenses))
	for _, e := range expenses {
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
