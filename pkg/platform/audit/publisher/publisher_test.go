package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audit "idproof/pkg/platform/audit"
	"idproof/pkg/platform/audit/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("db down") }
func (failingStore) ListBySession(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := audit.Event{
		SessionID: "s-1",
		Action:    string(audit.EventSessionStarted),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventSessionStarted), events[0].Action)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		SessionID: "s-2",
		Action:    string(audit.EventDocumentValidated),
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		events, _ := pub.List(context.Background(), "s-2")
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			SessionID: "s-3",
			Action:    string(audit.EventChannelCodeSent),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySession(context.Background(), "s-3")
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_ComplianceIsFailClosed(t *testing.T) {
	pub := NewPublisher(failingStore{}, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		SessionID: "s-4",
		Action:    string(audit.EventVerdictIssued),
	})
	require.Error(t, err, "compliance events bypass the buffer and surface store failures")

	err = pub.Emit(context.Background(), audit.Event{
		SessionID: "s-4",
		Action:    string(audit.EventChannelCodeSent),
	})
	assert.NoError(t, err, "operations events are buffered")
}

func TestPublisher_RequiresAction(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())
	defer pub.Close()
	assert.Error(t, pub.Emit(context.Background(), audit.Event{SessionID: "s-5"}))
}

func TestPublisher_EmitAfterCloseWritesSynchronously(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(4))
	pub.Close()

	require.NotPanics(t, func() {
		err := pub.Emit(context.Background(), audit.Event{
			SessionID: "s-6",
			Action:    string(audit.EventArtifactRetake),
		})
		require.NoError(t, err)
	})

	events, err := store.ListBySession(context.Background(), "s-6")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublisher_CloseRacesEmitters(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1024))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.NoError(t, pub.Emit(context.Background(), audit.Event{
					SessionID: "s-7",
					Action:    string(audit.EventDocumentValidated),
				}))
			}
		}()
	}
	pub.Close()
	wg.Wait()

	events, err := store.ListBySession(context.Background(), "s-7")
	require.NoError(t, err)
	assert.Len(t, events, 400)
}
