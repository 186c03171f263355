// Package presentation renders console data as JSON for the CLI.
package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatCommands formats registered commands as a JSON array
func (f *Formatter) FormatCommands(commands []CommandDTO) error {
	return f.encode(commands)
}

// FormatOutcome formats one dispatch result as a JSON object
func (f *Formatter) FormatOutcome(outcome OutcomeDTO) error {
	return f.encode(outcome)
}

// FormatExecutions formats history rows as a JSON array
func (f *Formatter) FormatExecutions(executions []ExecutionDTO) error {
	return f.encode(executions)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
