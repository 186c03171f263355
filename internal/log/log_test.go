package log

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func initForTest(t *testing.T, path string, size int) {
	t.Helper()
	cleanup, err := Init(path, size)
	require.NoError(t, err)
	t.Cleanup(cleanup)
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLog_NoopBeforeInit(t *testing.T) {
	require.NotPanics(t, func() {
		Info(CatDispatch, "ignored")
	})
	require.Nil(t, GetRecentLogs(10))
	require.Nil(t, NewListener(context.Background()))
}

func TestLog_WritesFileAndBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	initForTest(t, path, 10)

	Warn(CatRegistry, "Command already registered", "name", "heal")

	recent := GetRecentLogs(10)
	require.Len(t, recent, 1)
	require.Contains(t, recent[0], "[WARN] [registry] Command already registered name=heal")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Command already registered name=heal")
}

func TestLog_OddFieldCount(t *testing.T) {
	initForTest(t, "", 10)

	Info(CatScan, "odd", "orphan")

	recent := GetRecentLogs(1)
	require.Len(t, recent, 1)
	require.True(t, strings.HasSuffix(recent[0], "orphan=<missing>"))
}

func TestLog_ErrorErr(t *testing.T) {
	initForTest(t, "", 10)

	ErrorErr(CatHistory, "save failed", errors.New("disk full"))
	ErrorErr(CatHistory, "save failed", nil)

	recent := GetRecentLogs(2)
	require.Contains(t, recent[0], "error=disk full")
	require.Contains(t, recent[1], "error=<nil>")
}

func TestLog_MinLevelAndEnabled(t *testing.T) {
	initForTest(t, "", 10)

	SetMinLevel(LevelWarn)
	Info(CatUI, "filtered")
	Error(CatUI, "kept")
	require.Len(t, GetRecentLogs(10), 1)

	SetEnabled(false)
	Error(CatUI, "dropped")
	require.Len(t, GetRecentLogs(10), 1)
}

func TestLog_RingBufferKeepsNewest(t *testing.T) {
	initForTest(t, "", 3)

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		Info(CatDispatch, msg)
	}

	recent := GetRecentLogs(10)
	require.Len(t, recent, 3)
	require.True(t, strings.HasSuffix(recent[0], " c"))
	require.True(t, strings.HasSuffix(recent[2], " e"))

	last := GetRecentLogs(1)
	require.True(t, strings.HasSuffix(last[0], " e"))

	ClearBuffer()
	require.Nil(t, GetRecentLogs(10))
}

func TestLog_ListenerReceivesEntries(t *testing.T) {
	initForTest(t, "", 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatLifecycle, "console initialized")

	msg := listener.Listen()()
	event, ok := msg.(LogEvent)
	require.True(t, ok)
	require.Contains(t, event.Payload, "console initialized")
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), 10)
	require.Error(t, err)
}
