package presentation

import (
	"time"

	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/history"
	"github.com/zjrosen/devconsole/internal/registry"
)

// CommandDTO represents a registered console command for presentation
type CommandDTO struct {
	Name          string `json:"name"`
	Static        bool   `json:"static"`
	DeclaringType string `json:"declaring_type,omitempty"`
}

// OutcomeDTO represents one dispatch result
type OutcomeDTO struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Rescanned  bool   `json:"rescanned"`
	DurationUS int64  `json:"duration_us"`
}

// ExecutionDTO represents one recorded execution
type ExecutionDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Static     bool      `json:"static"`
	Rescanned  bool      `json:"rescanned"`
	DurationUS int64     `json:"duration_us"`
	ExecutedAt time.Time `json:"executed_at"`
}

// FromEntries converts registry entries to DTOs, keeping their order.
func FromEntries(entries []registry.Entry) []CommandDTO {
	out := make([]CommandDTO, len(entries))
	for i, e := range entries {
		out[i] = CommandDTO{Name: e.Name, Static: e.Static, DeclaringType: e.DeclaringType}
	}
	return out
}

// FromOutcome converts a dispatch outcome to a DTO.
func FromOutcome(o dispatch.Outcome) OutcomeDTO {
	return OutcomeDTO{
		Name:       o.Name,
		Status:     string(o.Status),
		Rescanned:  o.Rescanned,
		DurationUS: o.Duration.Microseconds(),
	}
}

// FromExecutions converts history rows to DTOs. The result is never nil so
// an empty history prints as [].
func FromExecutions(execs []history.Execution) []ExecutionDTO {
	out := make([]ExecutionDTO, len(execs))
	for i, e := range execs {
		out[i] = ExecutionDTO{
			ID:         e.ID,
			Name:       e.Name,
			Status:     string(e.Status),
			Static:     e.Static,
			Rescanned:  e.Rescanned,
			DurationUS: e.Duration.Microseconds(),
			ExecutedAt: e.ExecutedAt,
		}
	}
	return out
}
