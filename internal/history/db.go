package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB is the SQLite-backed Store.
type DB struct {
	conn *sql.DB

	mu     sync.Mutex
	closed bool
}

var _ Store = (*DB)(nil)

// NewDB opens (creating if needed) the history database at path and
// migrates it. An existing file is copied to path+".bak" first.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	if err := backup(path); err != nil {
		return nil, fmt.Errorf("backing up history database: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatHistory, "History database ready", "path", path)
	return &DB{conn: conn}, nil
}

// runMigrations applies the embedded migrations. The migrate instance is
// not closed because that would close conn.
func runMigrations(conn *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	drv, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func backup(path string) error {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// Connection returns the underlying *sql.DB.
func (d *DB) Connection() *sql.DB {
	return d.conn
}

// Close closes the database. Further calls are no-ops.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.conn.Close()
}

func (d *DB) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Record inserts one execution.
func (d *DB) Record(ctx context.Context, o dispatch.Outcome) error {
	if d.isClosed() {
		return ErrClosed
	}
	m := toExecutionModel(fromOutcome(uuid.NewString(), o))
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO executions (guid, name, status, static, rescanned, duration_us, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.GUID, m.Name, m.Status, m.Static, m.Rescanned, m.DurationUS, m.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution: %w", err)
	}
	return nil
}

// Recent returns up to limit executions, newest first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Execution, error) {
	if d.isClosed() {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, guid, name, status, static, rescanned, duration_us, executed_at
		FROM executions ORDER BY executed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Execution
	for rows.Next() {
		var m executionModel
		if err := rows.Scan(&m.ID, &m.GUID, &m.Name, &m.Status, &m.Static, &m.Rescanned, &m.DurationUS, &m.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		out = append(out, m.toExecution())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}
	return out, nil
}

// RecentNames returns up to limit distinct names, most recently run first.
func (d *DB) RecentNames(ctx context.Context, limit int) ([]string, error) {
	if d.isClosed() {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := d.conn.QueryContext(ctx,
		`SELECT name FROM executions GROUP BY name
		ORDER BY MAX(executed_at) DESC, MAX(id) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Clear deletes all executions.
func (d *DB) Clear(ctx context.Context) error {
	if d.isClosed() {
		return ErrClosed
	}
	if _, err := d.conn.ExecContext(ctx, `DELETE FROM executions`); err != nil {
		return fmt.Errorf("failed to clear executions: %w", err)
	}
	return nil
}
