package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReceivesEvent(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(DispatchedEvent, "heal")

	msg := ListenCmd(ctx, ch)()

	event, ok := msg.(Event[string])
	require.True(t, ok, "msg should be Event[string]")
	require.Equal(t, "heal", event.Payload)
	require.Equal(t, DispatchedEvent, event.Type)
}

func TestListenCmd_ContextCancelled(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Nil(t, ListenCmd(ctx, ch)())
}

func TestListenCmd_ChannelClosed(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())
	broker.Close()

	require.Nil(t, ListenCmd(context.Background(), ch)())
}

func TestListener_ListenRepeatedly(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener[int](ctx, broker)
	broker.Publish(LoggedEvent, 1)
	broker.Publish(LoggedEvent, 2)

	first := l.Listen()().(Event[int])
	second := l.Listen()().(Event[int])
	require.Equal(t, 1, first.Payload)
	require.Equal(t, 2, second.Payload)
}
