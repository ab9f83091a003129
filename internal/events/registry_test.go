package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records every message it is sent.
type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (c *fakeClient) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, message)
	return nil
}

func (c *fakeClient) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryBroadcastsToEveryClientOnce(t *testing.T) {
	registry := NewRegistry(discardLogger())
	clients := []*fakeClient{{}, {}, {}}
	for i, c := range clients {
		registry.Register(fmt.Sprintf("conn-%d", i), c)
	}
	require.Equal(t, 3, registry.Count())

	event, err := NewEvent(TaskUpdated, map[string]string{"id": "abc"})
	require.NoError(t, err)

	require.NoError(t, registry.EmitEvent(context.Background(), event))

	for i, c := range clients {
		msgs := c.received()
		require.Len(t, msgs, 1, "client %d", i)

		var got Event
		require.NoError(t, json.Unmarshal(msgs[0], &got))
		assert.Equal(t, TaskUpdated, got.Name)
		assert.Equal(t, event.ID, got.ID)
	}
}

func TestRegistryEmitWithNoClients(t *testing.T) {
	registry := NewRegistry(nil)
	event, err := NewEvent(TaskCreated, struct{}{})
	require.NoError(t, err)

	assert.NoError(t, registry.EmitEvent(context.Background(), event))
}

func TestRegistryDisconnectedClientMissesEvents(t *testing.T) {
	registry := NewRegistry(discardLogger())
	stays, leaves := &fakeClient{}, &fakeClient{}
	registry.Register("stays", stays)
	registry.Register("leaves", leaves)

	registry.Unregister("leaves")
	registry.Unregister("never-registered")

	event, err := NewEvent(TaskDeleted, "some-id")
	require.NoError(t, err)
	require.NoError(t, registry.EmitEvent(context.Background(), event))

	assert.Len(t, stays.received(), 1)
	assert.Empty(t, leaves.received())
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryFailingClientDoesNotBlockOthers(t *testing.T) {
	registry := NewRegistry(discardLogger())
	sendErr := errors.New("buffer full")
	healthy, failing := &fakeClient{}, &fakeClient{err: sendErr}
	registry.Register("healthy", healthy)
	registry.Register("failing", failing)

	event, err := NewEvent(TaskCreated, map[string]int{"n": 1})
	require.NoError(t, err)

	err = registry.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, sendErr)
	assert.Len(t, healthy.received(), 1)
}

func TestRegistryConcurrentMembershipChanges(t *testing.T) {
	registry := NewRegistry(discardLogger())
	event, err := NewEvent(TaskUpdated, "x")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		id := fmt.Sprintf("conn-%d", i)
		go func() {
			defer wg.Done()
			registry.Register(id, &fakeClient{})
			registry.Unregister(id)
		}()
		go func() {
			defer wg.Done()
			_ = registry.EmitEvent(context.Background(), event)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Count())
}
