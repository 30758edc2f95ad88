package distributed

import (
	"encoding/json"
	"testing"

	"playhud/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func encodeEvent(t *testing.T, event *Event) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestSnapshotBus_DispatchForwardsRemoteSnapshots(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := NewSnapshotBus(nil, "inst-a", logger)

	stats := domain.DefaultVideoStats("sess_remote")
	stats.QualityLabel = "1080p"

	var got []*Event
	bus.dispatch(encodeEvent(t, &Event{
		Type:       EventSnapshotPublished,
		InstanceID: "inst-b",
		SessionID:  stats.SessionID,
		Snapshot:   &stats,
	}), func(event *Event) error {
		got = append(got, event)
		return nil
	})

	require.Len(t, got, 1)
	assert.Equal(t, EventSnapshotPublished, got[0].Type)
	require.NotNil(t, got[0].Snapshot)
	assert.Equal(t, stats, *got[0].Snapshot)
}

func TestSnapshotBus_DispatchSkipsOwnFrames(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := NewSnapshotBus(nil, "inst-a", logger)

	called := false
	bus.dispatch(encodeEvent(t, &Event{
		Type:       EventSnapshotPublished,
		InstanceID: "inst-a",
		SessionID:  "sess_local",
	}), func(*Event) error {
		called = true
		return nil
	})

	assert.False(t, called, "frames published by this instance must not loop back")
}

func TestSnapshotBus_DispatchDropsMalformedFrames(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := NewSnapshotBus(nil, "inst-a", logger)

	called := false
	bus.dispatch([]byte("{not json"), func(*Event) error {
		called = true
		return nil
	})

	assert.False(t, called)
}

func TestSnapshotBus_DispatchSurvivesHandlerError(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	bus := NewSnapshotBus(nil, "inst-a", logger)

	bus.dispatch(encodeEvent(t, &Event{
		Type:       EventSnapshotPublished,
		InstanceID: "inst-b",
		SessionID:  "sess_remote",
	}), func(*Event) error {
		return assert.AnError
	})
}
