package history

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/devconsole/internal/dispatch"
)

const maxMemoryExecutions = 1000

// MemoryStore keeps executions in process memory, oldest first, capped at
// the most recent 1000.
type MemoryStore struct {
	mu         sync.RWMutex
	executions []Execution
	closed     bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, o dispatch.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.executions = append(s.executions, fromOutcome(uuid.NewString(), o))
	if over := len(s.executions) - maxMemoryExecutions; over > 0 {
		s.executions = slices.Delete(s.executions, 0, over)
	}
	return nil
}

// newestFirst returns executions sorted by time, newest first; ties keep
// reverse insertion order.
func (s *MemoryStore) newestFirst() []Execution {
	out := slices.Clone(s.executions)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Execution) int {
		return b.ExecutedAt.Compare(a.ExecutedAt)
	})
	return out
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	out := s.newestFirst()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) RecentNames(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	seen := make(map[string]struct{})
	var names []string
	for _, e := range s.newestFirst() {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
		if len(names) == limit {
			break
		}
	}
	return names, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.executions = nil
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
