package tlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/runtime"
	"github.com/flowlog/tlogd/types"
)

func TestNeedsSpillCrossesThreshold(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)

	require.False(t, gen.needsSpill())

	team := testTeam(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	big := make([]byte, cfg.SpillThresholdBytes+1)
	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID: gr.id, StorageTeamID: team, Messages: big, PrevVersion: 0, Version: 1,
	})
	require.NoError(t, err)
	require.True(t, gen.needsSpill())
}

// Spilling a team moves its bytes from "input" to "durable" and removes
// them from the in-memory deque up to the requested version, without
// touching entries above it.
func TestSpillTeamMovesBytesDurableAndTrimsDeque(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	prev := types.Version(0)
	for _, v := range []types.Version{1, 2, 3} {
		_, err := gen.Commit(ctx, &CommitRequest{
			GroupID: gr.id, StorageTeamID: team, Messages: []byte("payload"), PrevVersion: prev, Version: v,
		})
		require.NoError(t, err)
		prev = v
	}
	require.Equal(t, uint64(0), gen.BytesDurable())

	spilled, err := gen.spillTeam(gr.kv, team, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(len("payload")*2), spilled)
	require.Equal(t, spilled, gen.BytesDurable())

	idx, ok := gen.team(team)
	require.True(t, ok)
	require.Equal(t, 1, idx.Len())
	front, _ := idx.Front()
	require.Equal(t, types.Version(3), front.Version)
}

// Spilling by value writes the message bytes directly; a later readSpilled
// recovers them from the KeyValueStore with no in-memory entry left.
func TestReadSpilledRecoversValueModeWrites(t *testing.T) {
	gr, cfg := newTestGroup(t)
	cfg.SpillType = 0 // config.SpillValue
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID: gr.id, StorageTeamID: team, Messages: []byte("archived"), PrevVersion: 0, Version: 1,
	})
	require.NoError(t, err)

	_, err = gen.spillTeam(gr.kv, team, 1)
	require.NoError(t, err)
	idx, ok := gen.team(team)
	require.True(t, ok)
	require.Equal(t, 0, idx.Len())

	data, highest, err := gen.readSpilled(gr.kv, team, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []byte("archived"), data)
	require.Equal(t, types.Version(1), highest)
}

func TestRunSpillerActorDrainsOverThresholdTeam(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	big := make([]byte, cfg.SpillThresholdBytes+1)
	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID: gr.id, StorageTeamID: team, Messages: big, PrevVersion: 0, Version: 1,
	})
	require.NoError(t, err)

	gr.RunSpiller(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for gen.BytesDurable() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.Greater(t, gen.BytesDurable(), uint64(0))
}

func TestQueuingMetricsSampleUsesInjectedClock(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID: gr.id, StorageTeamID: team, Messages: []byte("x"), PrevVersion: 0, Version: 1,
	})
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := runtime.NewFakeClock(start)
	gr.sampleQueuingMetrics(clock, gr.id.String(), 42)

	m := gr.GetQueuingMetrics()
	require.Equal(t, uint64(42), m.InstanceID)
	require.Equal(t, start.UnixNano(), m.LocalTime)
	require.Equal(t, uint64(1), m.BytesInput)
}
