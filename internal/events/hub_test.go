package events

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendo-app/backend/internal/logger"
)

func TestMain(m *testing.M) {
	logger.InitializeForTests()
	os.Exit(m.Run())
}

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := newRunningHub(t)

	a := hub.Register()
	b := hub.Register()
	waitForClients(t, hub, 2)

	hub.Broadcast(New(TypeTaskCreated, map[string]string{"id": "t1"}))

	for _, client := range []*Client{a, b} {
		select {
		case ev := <-client.Send:
			assert.Equal(t, TypeTaskCreated, ev.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("client did not receive the event")
		}
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := newRunningHub(t)

	client := hub.Register()
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := newRunningHub(t)

	_ = hub.Register()
	waitForClients(t, hub, 1)

	// Never read: the buffer fills, then the hub drops us
	for i := 0; i < clientBuffer+5; i++ {
		hub.Broadcast(New(TypeDigest, nil))
	}

	waitForClients(t, hub, 0)
	_, _, dropped := hub.Stats()
	assert.GreaterOrEqual(t, dropped, int64(1))
}

func TestStopDisconnectsClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := hub.Register()
	waitForClients(t, hub, 1)

	hub.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := <-client.Send; !ok {
			break
		}
		require.False(t, time.Now().After(deadline), "send channel never closed")
	}
}

func TestEventEncode(t *testing.T) {
	ev := New(TypePrompt, map[string]string{"task_id": "t1"})
	data, err := ev.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"prompt"`)
	assert.Contains(t, string(data), `"task_id":"t1"`)
}
