package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DataBackend:       "json",
		ExpensesFile:      "expenses.json",
		SQLiteDBPath:      "./data/expenses.db",
		Currency:          "UAH",
		DescriptionMaxLen: 200,
		LogLevel:          "warn",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid json backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) { c.DataBackend = "sqlite" },
			wantErr: false,
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [json sqlite]",
		},
		{
			name:        "json backend missing file path",
			mutate:      func(c *Config) { c.ExpensesFile = " " },
			wantErr:     true,
			errorString: "expenses file path cannot be empty when using json backend",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "empty currency",
			mutate:      func(c *Config) { c.Currency = "" },
			wantErr:     true,
			errorString: "currency label cannot be empty",
		},
		{
			name:        "description limit too small",
			mutate:      func(c *Config) { c.DescriptionMaxLen = 0 },
			wantErr:     true,
			errorString: "invalid description max length 0: must be at least 1",
		},
		{
			name:        "description limit too large",
			mutate:      func(c *Config) { c.DescriptionMaxLen = 20000 },
			wantErr:     true,
			errorString: "invalid description max length 20000: must be at most 10000",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name: "multiple errors are combined",
			mutate: func(c *Config) {
				c.Currency = ""
				c.LogLevel = "loud"
			},
			wantErr:     true,
			errorString: "currency label cannot be empty\n- invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateWithFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("file in existing directory", func(t *testing.T) {
		cfg := validConfig()
		cfg.ExpensesFile = filepath.Join(dir, "expenses.json")
		assert.NoError(t, cfg.Validate())
	})

	t.Run("file in missing directory", func(t *testing.T) {
		cfg := validConfig()
		cfg.ExpensesFile = filepath.Join(dir, "nope", "expenses.json")
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("path is a directory", func(t *testing.T) {
		cfg := validConfig()
		cfg.ExpensesFile = dir
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "existing.json")
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
		cfg := validConfig()
		cfg.ExpensesFile = path
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	keys := []string{"DATA_BACKEND", "EXPENSES_FILE", "SQLITE_DB_PATH", "CURRENCY", "DESCRIPTION_MAX_LEN", "LOG_LEVEL"}

	t.Run("default values", func(t *testing.T) {
		for _, k := range keys {
			t.Setenv(k, "")
		}
		cfg := Load()
		assert.Equal(t, "json", cfg.DataBackend)
		assert.Equal(t, "expenses.json", cfg.ExpensesFile)
		assert.Equal(t, "./data/expenses.db", cfg.SQLiteDBPath)
		assert.Equal(t, "UAH", cfg.Currency)
		assert.Equal(t, 200, cfg.DescriptionMaxLen)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("DATA_BACKEND", "sqlite")
		t.Setenv("EXPENSES_FILE", "/tmp/mine.json")
		t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		t.Setenv("CURRENCY", "EUR")
		t.Setenv("DESCRIPTION_MAX_LEN", "50")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := Load()
		assert.Equal(t, "sqlite", cfg.DataBackend)
		assert.Equal(t, "/tmp/mine.json", cfg.ExpensesFile)
		assert.Equal(t, "/tmp/test.db", cfg.SQLiteDBPath)
		assert.Equal(t, "EUR", cfg.Currency)
		assert.Equal(t, 50, cfg.DescriptionMaxLen)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("DESCRIPTION_MAX_LEN", "lots")
		assert.Equal(t, 200, Load().DescriptionMaxLen)
	})
}
