package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteSnapshotter stores the collection in an SQLite table. Every Save
// replaces the table contents inside one transaction.
type SQLiteSnapshotter struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteSnapshotter(dbPath string) (*SQLiteSnapshotter, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteSnapshotter{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteSnapshotter) Location() string { return s.dbPath }

func (s *SQLiteSnapshotter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements Snapshotter.
func (s *SQLiteSnapshotter) Load(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, description, category, date FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e      core.Expense
			amount string
		)
		if err := rows.Scan(&e.ID, &amount, &e.Description, &e.Category, &e.Date); err != nil {
			return nil, fmt.Errorf("%w: %s: scan row: %w", ErrMalformedStorage, s.dbPath, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("%w: %s: expense %d amount %q: %w", ErrMalformedStorage, s.dbPath, e.ID, amount, err)
		}
		if _, err := time.ParseInLocation(core.DateLayout, e.Date, time.Local); err != nil {
			return nil, fmt.Errorf("%w: %s: expense %d date %q: %w", ErrMalformedStorage, s.dbPath, e.ID, e.Date, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	slog.DebugContext(ctx, "Expenses loaded from SQLite", "path", s.dbPath, "count", len(expenses))
	return expenses, nil
}

// Save implements Snapshotter.
func (s *SQLiteSnapshotter) Save(ctx context.Context, expenses []core.Expense) error {
	if err := checkUniqueIDs(expenses); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (id, position, amount, description, category, date) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range expenses {
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.Amount.String(), e.Description, e.Category, e.Date); err != nil {
			return fmt.Errorf("insert expense %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Expenses saved to SQLite", "path", s.dbPath, "count", len(expenses))
	return nil
}
