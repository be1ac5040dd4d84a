package tlog

import (
	"context"
	"testing"
	"time"

	stderrors "errors"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/types"
)

// S1: a single commit to a single generation is immediately peekable.
func TestCommitSingleGenerationRoundTrip(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reply, err := gen.Commit(ctx, &CommitRequest{
		GroupID:       gr.id,
		StorageTeamID: team,
		Messages:      []byte("hello"),
		PrevVersion:   0,
		Version:       10,
	})
	require.NoError(t, err)
	require.Equal(t, types.Version(0), reply.DurableKnownCommittedVersion)
	require.Equal(t, types.Version(10), gen.Version())

	limiter := newPeekMemoryLimiter(cfg.PeekMemoryBytes)
	peekReply, err := gen.Peek(ctx, gr.kv, limiter, nil, &PeekRequest{
		GroupID:       gr.id,
		StorageTeamID: team,
		BeginVersion:  0,
	})
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), peekReply.Data)
	require.Equal(t, types.Version(10), peekReply.End)
}

// S2: replaying the exact same commit (same prevVersion) after it already
// landed is a no-op that returns the existing durable frontier rather than
// re-appending the message.
func TestCommitDuplicateIsIdempotent(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := &CommitRequest{
		GroupID:       gr.id,
		StorageTeamID: team,
		Messages:      []byte("hello"),
		PrevVersion:   0,
		Version:       10,
	}
	_, err := gen.Commit(ctx, req)
	require.NoError(t, err)

	// Retry with the same prevVersion: version has already moved past it,
	// so this must be recognized as a duplicate rather than blocking
	// forever or double-appending.
	_, err = gen.Commit(ctx, req)
	require.NoError(t, err)

	idx, ok := gen.team(team)
	require.True(t, ok)
	require.Equal(t, 1, idx.Len())
}

// S3: a commit blocked waiting on prevVersion returns tlog_stopped the
// moment the generation is stopped, instead of hanging.
func TestCommitBlockedThenStoppedReturnsTLogStopped(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := gen.Commit(ctx, &CommitRequest{
			GroupID:       gr.id,
			StorageTeamID: testTeam(1),
			Messages:      []byte("never arrives first"),
			PrevVersion:   5, // nothing has advanced version to 5 yet
			Version:       10,
		})
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	gen.Stop()

	select {
	case err := <-errCh:
		require.True(t, stderrors.Is(err, errs.ErrTLogStopped))
	case <-time.After(time.Second):
		t.Fatal("commit did not unblock after Stop")
	}
}

// Boundary: a commit with no message bytes still advances version and
// durability bookkeeping without touching messageblock state.
func TestCommitEmptyMessagesStillAdvancesVersion(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID:       gr.id,
		StorageTeamID: testTeam(1),
		Messages:      nil,
		PrevVersion:   0,
		Version:       7,
	})
	require.NoError(t, err)
	require.Equal(t, types.Version(7), gen.Version())
	require.Equal(t, uint64(0), gen.BytesInput())
	_, ok := gen.team(testTeam(1))
	require.False(t, ok, "an empty commit must not allocate a TeamIndex")
}

// Boundary: a message larger than DefaultBlockBytes still commits by
// allocating a block sized to fit it, rather than being rejected.
func TestCommitMessageLargerThanDefaultBlockSucceeds(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	big := make([]byte, cfg.DefaultBlockBytes*2)
	for i := range big {
		big[i] = byte(i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID:       gr.id,
		StorageTeamID: team,
		Messages:      big,
		PrevVersion:   0,
		Version:       1,
	})
	require.NoError(t, err)

	idx, ok := gen.team(team)
	require.True(t, ok)
	back, ok := idx.Back()
	require.True(t, ok)
	require.Equal(t, big, back.Bytes())
}

// Two commits that together overflow one block must stitch into a second
// block rather than corrupt or drop the second message.
func TestCommitStitchesAcrossBlocksWhenFirstFills(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first := make([]byte, cfg.DefaultBlockBytes-1)
	_, err := gen.Commit(ctx, &CommitRequest{
		GroupID: gr.id, StorageTeamID: team, Messages: first, PrevVersion: 0, Version: 1,
	})
	require.NoError(t, err)

	second := []byte("spills into a fresh block")
	_, err = gen.Commit(ctx, &CommitRequest{
		GroupID: gr.id, StorageTeamID: team, Messages: second, PrevVersion: 1, Version: 2,
	})
	require.NoError(t, err)

	idx, ok := gen.team(team)
	require.True(t, ok)
	require.Equal(t, 2, idx.Len())
	front, _ := idx.Front()
	back, _ := idx.Back()
	require.True(t, front.Block != back.Block, "second commit must have landed in a fresh block")
	require.Equal(t, second, back.Bytes())
}
