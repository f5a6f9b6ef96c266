package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/storage"
)

const firstID int64 = 1

// ErrNotPersisted is returned when a change was applied in memory but the
// snapshot could not be written. Memory and storage differ until the next
// successful Save.
var ErrNotPersisted = errors.New("change applied in memory but not persisted")

// ExpenseStore owns the expense collection, hands out identifiers and
// writes a full snapshot after every change.
type ExpenseStore struct {
	mu     sync.Mutex
	snap   storage.Snapshotter
	items  []core.Expense
	nextID int64
	now    func() time.Time
	logger *applog.Logger
}

// Option configures an ExpenseStore.
type Option func(*ExpenseStore)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseStore) { s.now = now }
}

// WithLogger sets the logger used for load and save reports.
func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseStore) { s.logger = l.WithComponent(applog.ComponentStore) }
}

// Open builds a store bound to snap and loads its current content.
//
// The returned store is always usable. A non-nil error means loading
// failed and the store started empty; errors.Is(err,
// storage.ErrMalformedStorage) identifies unparsable content, which stays
// on disk untouched.
func Open(ctx context.Context, snap storage.Snapshotter, opts ...Option) (*ExpenseStore, error) {
	s := &ExpenseStore{
		snap:   snap,
		nextID: firstID,
		now:    time.Now,
		logger: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentStore),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, s.Load(ctx)
}

// Load replaces the in-memory collection with the stored snapshot. On
// failure the collection is reset to empty and the error is returned.
func (s *ExpenseStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.snap.Load(ctx)
	if err != nil {
		s.items = nil
		s.nextID = firstID
		s.logger.WarnContext(ctx, "Failed to load expenses, starting empty",
			applog.NewFields().
				WithOperation(applog.OpLoad).
				WithError(err).
				ToSlice()...)
		return fmt.Errorf("load expenses from %s: %w", s.snap.Location(), err)
	}

	s.items = loaded
	s.nextID = firstID
	for _, e := range loaded {
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}

	s.logger.DebugContext(ctx, "Expenses loaded",
		applog.FieldCount, len(loaded),
		applog.FieldPath, s.snap.Location())
	return nil
}

// Save writes the whole collection to storage.
func (s *ExpenseStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *ExpenseStore) saveLocked(ctx context.Context) error {
	if err := s.snap.Save(ctx, s.items); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save expenses",
			applog.NewFields().
				WithOperation(applog.OpSave).
				WithError(err).
				ToSlice()...)
		return fmt.Errorf("save expenses to %s: %w", s.snap.Location(), err)
	}
	return nil
}

// Create records a new expense under the next identifier and persists the
// collection. The expense is returned even when persisting fails; the
// error then wraps ErrNotPersisted. Values are stored as given.
func (s *ExpenseStore) Create(ctx context.Context, amount decimal.Decimal, description, category string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := core.NewExpense(s.nextID, amount, description, category, s.now())
	s.items = append(s.items, e)
	s.nextID++

	if err := s.saveLocked(ctx); err != nil {
		return e, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithExpense(e.ID, e.Amount.String(), e.Description, e.Category).
			ToSlice()...)
	return e, nil
}

// DeleteByID removes the expense with id and reports whether one existed.
// An unknown id is not an error. When a removal happened but persisting
// failed, it returns true and an error wrapping ErrNotPersisted.
func (s *ExpenseStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)

	if err := s.saveLocked(ctx); err != nil {
		return true, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	return true, nil
}

// ListAll returns a copy of the expenses in insertion order.
func (s *ExpenseStore) ListAll() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}

// TotalAmount sums every amount exactly. An empty store totals zero.
func (s *ExpenseStore) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, e := range s.items {
		total = total.Add(e.Amount)
	}
	return total
}

// FindByID returns the expense with id, if present.
func (s *ExpenseStore) FindByID(id int64) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Expense{}, false
	}
	return s.items[idx], true
}

// Len returns the number of stored expenses.
func (s *ExpenseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close releases the underlying storage.
func (s *ExpenseStore) Close() error {
	if s.snap == nil {
		return nil
	}
	if err := s.snap.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

func (s *ExpenseStore) indexOf(id int64) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
