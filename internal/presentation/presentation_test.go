package presentation

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/history"
	"github.com/zjrosen/devconsole/internal/registry"
)

func TestFormatCommands(t *testing.T) {
	var buf bytes.Buffer
	dtos := FromEntries([]registry.Entry{
		{Name: "heal", Static: true, DeclaringType: "github.com/zjrosen/devconsole/internal/demo"},
		{Name: "spawnEnemy", DeclaringType: "*demo.SpawnController"},
	})

	require.NoError(t, NewFormatter(&buf).FormatCommands(dtos))

	require.JSONEq(t, `[
		{"name": "heal", "static": true, "declaring_type": "github.com/zjrosen/devconsole/internal/demo"},
		{"name": "spawnEnemy", "static": false, "declaring_type": "*demo.SpawnController"}
	]`, buf.String())
}

func TestFormatOutcome(t *testing.T) {
	var buf bytes.Buffer
	dto := FromOutcome(dispatch.Outcome{
		Name:      "doesNotExist",
		Status:    dispatch.StatusNotFound,
		Rescanned: true,
		Duration:  1500 * time.Microsecond,
	})

	require.NoError(t, NewFormatter(&buf).FormatOutcome(dto))

	require.JSONEq(t, `{"name": "doesNotExist", "status": "not_found", "rescanned": true, "duration_us": 1500}`, buf.String())
}

func TestFormatExecutions_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).FormatExecutions(FromExecutions(nil)))

	require.JSONEq(t, `[]`, buf.String())
}

func TestFromExecutions(t *testing.T) {
	at := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	dtos := FromExecutions([]history.Execution{{
		ID: "id-1", Name: "heal", Status: dispatch.StatusExecuted, Static: true,
		Duration: 2 * time.Millisecond, ExecutedAt: at,
	}})

	require.Equal(t, []ExecutionDTO{{
		ID: "id-1", Name: "heal", Status: "executed", Static: true,
		DurationUS: 2000, ExecutedAt: at,
	}}, dtos)
}
