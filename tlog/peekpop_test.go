package tlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/types"
)

func TestClientSequencesRejectsOutOfOrder(t *testing.T) {
	seqs := newClientSequences()
	require.True(t, seqs.accept(1, 5))
	require.True(t, seqs.accept(1, 6))
	require.False(t, seqs.accept(1, 6)) // repeat
	require.False(t, seqs.accept(1, 3)) // stale
	require.True(t, seqs.accept(2, 1))  // different client starts fresh
}

func TestClientSequencesZeroClientAlwaysAccepts(t *testing.T) {
	seqs := newClientSequences()
	require.True(t, seqs.accept(0, 100))
	require.True(t, seqs.accept(0, 1))
}

// ReturnIfBlocked with nothing in memory and nothing spilled returns
// immediately with no data rather than waiting for a commit.
func TestPeekReturnIfBlockedWithNoDataReturnsImmediately(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	limiter := newPeekMemoryLimiter(cfg.PeekMemoryBytes)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reply, err := gen.Peek(ctx, gr.kv, limiter, nil, &PeekRequest{
		GroupID:         gr.id,
		StorageTeamID:   team,
		BeginVersion:    3,
		ReturnIfBlocked: true,
	})
	require.NoError(t, err)
	require.Equal(t, types.Version(3), reply.End)
	require.Empty(t, reply.Data)
}

// Pop(version) trims everything at or below version from the in-memory
// deque and persists the high-water mark so a later Peek can report it via
// Popped.
func TestPopTrimsInMemoryEntries(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	prev := types.Version(0)
	for _, entry := range []struct {
		version types.Version
		msg     string
	}{{1, "a"}, {2, "b"}, {3, "c"}} {
		_, err := gen.Commit(ctx, &CommitRequest{
			GroupID: gr.id, StorageTeamID: team, Messages: []byte(entry.msg), PrevVersion: prev, Version: entry.version,
		})
		require.NoError(t, err)
		prev = entry.version
	}

	require.NoError(t, gen.Pop(&PopRequest{GroupID: gr.id, StorageTeamID: team, Version: 2}))

	idx, ok := gen.team(team)
	require.True(t, ok)
	require.Equal(t, 1, idx.Len())
	front, _ := idx.Front()
	require.Equal(t, types.Version(3), front.Version)
	require.Equal(t, types.Version(2), gen.poppedVersion(team))
}
