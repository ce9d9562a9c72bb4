package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/model"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

func TestRecorderAppendsTransmitEvents(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "j.jsonl"))
	require.NoError(t, err)
	bus := eventbus.New[events.Event]()

	done := StartRecorder(context.Background(), bus, store, nil)
	bus.Publish(events.StatusEvent{Value: true})
	bus.Publish(events.TransmitEvent{Result: model.TransmitResult{ID: "t1", Code: model.PowerCode, Success: true, Started: time.Now()}})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not stop")
	}
	out, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "t1", out[0].ID)
	assert.Equal(t, "0x0a90", out[0].Code)
}

func TestRecorderNilStore(t *testing.T) {
	done := StartRecorder(context.Background(), eventbus.New[events.Event](), nil, nil)
	_, open := <-done
	assert.False(t, open)
}
