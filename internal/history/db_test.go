package history

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/devconsole/internal/dispatch"
)

func TestNewDB_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "history.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestNewDB_RunsMigrations(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	var tableName string
	err = db.Connection().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='executions'",
	).Scan(&tableName)
	require.NoError(t, err)
	require.Equal(t, "executions", tableName)
}

func TestNewDB_PreMigrationBackup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, db1.Record(context.Background(), dispatch.Outcome{Name: "heal", Status: dispatch.StatusExecuted}))
	require.NoError(t, db1.Close())

	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	got, err := db2.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "reopening keeps existing rows")
}

func TestNewDB_Pragmas(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	var journalMode string
	require.NoError(t, db.Connection().QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, db.Connection().QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

func TestDB_Close(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "second close is a no-op")
	require.Error(t, db.Connection().Ping())

	err = db.Record(context.Background(), dispatch.Outcome{Name: "heal"})
	require.ErrorIs(t, err, ErrClosed)
}

func TestNewDB_InvalidPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := NewDB(filepath.Join(file, "history.db"))
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	s, err := Open(DriverMemory, "")
	require.NoError(t, err)
	require.IsType(t, (*MemoryStore)(nil), s)

	s, err = Open("", filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.IsType(t, (*DB)(nil), s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "")
	require.ErrorContains(t, err, "unknown history driver")
}
