// Package history records console command executions so they can be
// listed by the history command and recalled in the console prompt.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/devconsole/internal/dispatch"
)

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("history store closed")

// Execution is one recorded dispatch.
type Execution struct {
	ID         string
	Name       string
	Status     dispatch.Status
	Static     bool
	Rescanned  bool
	Duration   time.Duration
	ExecutedAt time.Time
}

// Store persists executions. Every Store is a dispatch.Recorder.
type Store interface {
	dispatch.Recorder

	// Recent returns up to limit executions, newest first.
	Recent(ctx context.Context, limit int) ([]Execution, error)

	// RecentNames returns up to limit distinct names, most recently run first.
	RecentNames(ctx context.Context, limit int) ([]string, error)

	// Clear deletes all executions.
	Clear(ctx context.Context) error

	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the store for driver. An empty driver means SQLite.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		return NewDB(path)
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
}

func fromOutcome(id string, o dispatch.Outcome) Execution {
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	return Execution{
		ID:         id,
		Name:       o.Name,
		Status:     o.Status,
		Static:     o.Static,
		Rescanned:  o.Rescanned,
		Duration:   o.Duration,
		ExecutedAt: at,
	}
}
