package demo

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/devconsole/internal/console"
	"github.com/zjrosen/devconsole/internal/locator"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/registry"
)

func TestMain(m *testing.M) {
	cleanup, err := log.Init("", 500)
	if err != nil {
		panic(err)
	}
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setup(t *testing.T) (*console.Manager, *locator.Scene) {
	t.Helper()
	log.ClearBuffer()
	scene := NewScene()
	m, err := console.Initialize(console.Options{Locator: scene, Registry: registry.New()})
	require.NoError(t, err)
	t.Cleanup(console.Shutdown)
	return m, scene
}

func find[T any](t *testing.T, scene *locator.Scene) T {
	t.Helper()
	obj, ok := scene.FindInstance(reflect.TypeFor[T]())
	require.True(t, ok)
	return obj.(T)
}

func logs() string {
	return strings.Join(log.GetRecentLogs(500), "\n")
}

func TestDeclaredCommandsRegister(t *testing.T) {
	m, _ := setup(t)

	names := m.ListCommandNames()
	for _, want := range []string{"heal", "commands", "loadExpansion", "spawnEnemy", "killAll", "status"} {
		require.Contains(t, names, want)
	}
}

func TestHeal(t *testing.T) {
	m, scene := setup(t)
	p := find[*Player](t, scene)
	require.Equal(t, 35, p.HP())

	_, err := m.Execute(context.Background(), "heal")

	require.NoError(t, err)
	require.Equal(t, 100, p.HP())
	require.Contains(t, logs(), "[demo] Player healed health=100")
}

func TestSpawnAndKill(t *testing.T) {
	m, scene := setup(t)
	spawner := find[*SpawnController](t, scene)

	for range 3 {
		_, err := m.Execute(context.Background(), "spawnEnemy")
		require.NoError(t, err)
	}
	require.Equal(t, 3, spawner.Enemies())

	_, err := m.Execute(context.Background(), "killAll")
	require.NoError(t, err)
	require.Equal(t, 0, spawner.Enemies())
	require.Contains(t, logs(), "Enemies killed count=3")
}

func TestStatus(t *testing.T) {
	m, _ := setup(t)

	_, err := m.Execute(context.Background(), "status")

	require.NoError(t, err)
	require.Contains(t, logs(), "Player status health=35 max=100")
}

func TestCommandsLogsNames(t *testing.T) {
	m, _ := setup(t)

	_, err := m.Execute(context.Background(), "commands")

	require.NoError(t, err)
	require.Contains(t, logs(), "Console command name=spawnEnemy")
}

func TestLoadExpansionThenOpenPortal(t *testing.T) {
	m, _ := setup(t)
	require.NotContains(t, m.ListCommandNames(), "openPortal")

	_, err := m.Execute(context.Background(), "loadExpansion")
	require.NoError(t, err)

	outcome, err := m.Execute(context.Background(), "openPortal")

	require.NoError(t, err)
	require.True(t, outcome.Rescanned)
	require.Contains(t, logs(), "Portal opened")
}
