package history

import (
	"time"

	"github.com/zjrosen/devconsole/internal/dispatch"
)

// executionModel is the executions table row. Times are Unix milliseconds,
// durations microseconds.
type executionModel struct {
	ID         int64
	GUID       string
	Name       string
	Status     string
	Static     bool
	Rescanned  bool
	DurationUS int64
	ExecutedAt int64
}

func toExecutionModel(e Execution) executionModel {
	return executionModel{
		GUID:       e.ID,
		Name:       e.Name,
		Status:     string(e.Status),
		Static:     e.Static,
		Rescanned:  e.Rescanned,
		DurationUS: e.Duration.Microseconds(),
		ExecutedAt: e.ExecutedAt.UnixMilli(),
	}
}

func (m executionModel) toExecution() Execution {
	return Execution{
		ID:         m.GUID,
		Name:       m.Name,
		Status:     dispatch.Status(m.Status),
		Static:     m.Static,
		Rescanned:  m.Rescanned,
		Duration:   time.Duration(m.DurationUS) * time.Microsecond,
		ExecutedAt: time.UnixMilli(m.ExecutedAt),
	}
}
