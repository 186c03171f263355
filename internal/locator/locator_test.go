package locator

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type spawnController struct{ id int }

type healer interface{ Heal() }

type medic struct{}

func (medic) Heal() {}

func TestScene_FindInstance(t *testing.T) {
	s := NewScene("arena")
	c := &spawnController{id: 1}
	s.Attach(c)

	got, ok := s.FindInstance(reflect.TypeFor[*spawnController]())

	require.True(t, ok)
	require.Same(t, c, got)
}

func TestScene_FindInstance_Missing(t *testing.T) {
	s := NewScene("arena")
	s.Attach(medic{})

	got, ok := s.FindInstance(reflect.TypeFor[*spawnController]())

	require.False(t, ok)
	require.Nil(t, got)
}

func TestScene_FindInstance_EarliestWins(t *testing.T) {
	s := NewScene("arena")
	first := &spawnController{id: 1}
	second := &spawnController{id: 2}
	s.Attach(first, second)

	got, ok := s.FindInstance(reflect.TypeFor[*spawnController]())

	require.True(t, ok)
	require.Same(t, first, got)
}

func TestScene_FindInstance_Interface(t *testing.T) {
	s := NewScene("arena")
	s.Attach(&spawnController{}, medic{})

	got, ok := s.FindInstance(reflect.TypeFor[healer]())

	require.True(t, ok)
	require.Equal(t, medic{}, got)
}

func TestScene_DetachAndClear(t *testing.T) {
	s := NewScene("arena")
	c := &spawnController{}
	s.Attach(c, nil, medic{})
	require.Len(t, s.Objects(), 2)

	require.True(t, s.Detach(c))
	require.False(t, s.Detach(c))
	_, ok := s.FindInstance(reflect.TypeFor[*spawnController]())
	require.False(t, ok)

	s.Clear()
	require.Empty(t, s.Objects())
	require.Equal(t, "arena", s.Name())
}

func TestFind_NilLocator(t *testing.T) {
	got, ok := Find(nil, reflect.TypeFor[*spawnController]())
	require.False(t, ok)
	require.Nil(t, got)
}

func TestFunc(t *testing.T) {
	want := &spawnController{}
	loc := Func(func(reflect.Type) (any, bool) { return want, true })

	got, ok := Find(loc, reflect.TypeFor[*spawnController]())

	require.True(t, ok)
	require.Same(t, want, got)
}
