package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func sampleExpenses() []core.Expense {
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.Local)
	return []core.Expense{
		core.NewExpense(1, decimal.RequireFromString("25.0"), "lunch", "food", at),
		core.NewExpense(3, decimal.RequireFromString("15.75"), "bus", "transport", at.Add(time.Minute)),
		core.NewExpense(2, decimal.RequireFromString("0.01"), "Без опису", "Інше", at.Add(time.Hour)),
	}
}

func assertSameExpenses(t *testing.T, want, got []core.Expense) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "index %d: want %+v got %+v", i, want[i], got[i])
	}
}

func TestJSONFileMissingIsEmpty(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "expenses.json"))

	got, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJSONFileSaveLoadKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	f := NewJSONFile(path)
	want := sampleExpenses()

	require.NoError(t, f.Save(context.Background(), want))

	got, err := NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	assertSameExpenses(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestJSONFileSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	require.NoError(t, NewJSONFile(path).Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestJSONFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewJSONFile(filepath.Join(dir, "expenses.json"))
	require.NoError(t, f.Save(context.Background(), sampleExpenses()))
	require.NoError(t, f.Save(context.Background(), sampleExpenses()[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "expenses.json", entries[0].Name())
}

func TestJSONFileWritesReadableLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	require.NoError(t, NewJSONFile(path).Save(context.Background(), sampleExpenses()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":1,"amount":25,"description":"lunch","category":"food","date":"2025-06-01 12:30:00"}]`,
		string(data))
	assert.Contains(t, string(data), "\n  {", "output is indented")
}

func TestJSONFileMalformed(t *testing.T) {
	cases := map[string]string{
		"garbage":          "not json at all",
		"empty file":       "",
		"object not array": `{"id":1}`,
		"null":             "null",
		"padded null":      "  null\n",
		"null record":      `[null]`,
		"quoted amount":    `[{"id":1,"amount":"12.5","description":"a"}]`,
		"missing field":    `[{"id":1,"description":"a"}]`,
		"duplicate ids":    `[{"id":1,"amount":1,"description":"a"},{"id":1,"amount":2,"description":"b"}]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "expenses.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			got, err := NewJSONFile(path).Load(context.Background())
			assert.ErrorIs(t, err, ErrMalformedStorage)
			assert.Nil(t, got)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(after), "malformed file must be left untouched")
		})
	}
}

func TestJSONFileMissingRecordFieldWrapsRecordError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"amount":1,"description":"a"}]`), 0o644))

	_, err := NewJSONFile(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrMalformedStorage)
	assert.ErrorIs(t, err, core.ErrMalformedRecord)
}

func TestJSONFileSaveFailsForMissingDirectory(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "missing", "expenses.json"))
	assert.Error(t, f.Save(context.Background(), sampleExpenses()))
}

func TestJSONFileHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewJSONFile(filepath.Join(t.TempDir(), "expenses.json"))
	assert.ErrorIs(t, f.Save(ctx, nil), context.Canceled)
	_, err := f.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
