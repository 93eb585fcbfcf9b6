package database

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))

	for _, table := range []string{"users", "auth_tokens", "authors", "categories", "books", "shopping_carts", "shopping_cart_books", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "table %s should exist", table)
	}
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestNewLogger_QuietOnMissingRow(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "quiet.db"))
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	session := db.DB.Session(&gorm.Session{Logger: newLogger(&out, false)})

	var author entities.Author
	err = session.First(&author, 42).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, out.String())

	err = session.Exec("SELECT * FROM no_such_table").Error
	assert.Error(t, err)
	assert.Contains(t, out.String(), "no_such_table")
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Database
	}{
		{name: "missing sqlite path", cfg: config.Database{Driver: config.DriverSQLite}},
		{name: "missing postgres dsn", cfg: config.Database{Driver: config.DriverPostgres}},
		{name: "unknown driver", cfg: config.Database{Driver: "oracle", Path: "x.db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, db)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on&_journal=WAL&_busy_timeout=5000", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?cache=shared&_foreign_keys=on&_journal=WAL&_busy_timeout=5000", sqliteDSN("a.db?cache=shared"))
}
