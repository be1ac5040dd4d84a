package tlog

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/config"
	"github.com/flowlog/tlogd/types"
)

// newTestGroup opens a GroupData backed by a fresh temp directory, with no
// generations registered yet. InMemoryOnly is set so tests don't pay for a
// DiskQueue unless they specifically need crash-recovery behavior.
func newTestGroup(t *testing.T) (*GroupData, *config.Config) {
	t.Helper()
	dir, err := ioutil.TempDir("", "tlogd-group")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := config.TestConfig()
	cfg.InMemoryOnly = true
	cfg.DataDir = dir

	gr, err := OpenGroup(types.TLogGroupID{1}, dir, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { gr.Close() })
	return gr, cfg
}

// newActiveGeneration initializes and activates a fresh generation on gr,
// starts its commit-queue pump, and registers cleanup.
func newActiveGeneration(t *testing.T, gr *GroupData, cfg *config.Config, logID types.LogID) (*GenerationData, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	gen := NewGeneration(gr, logID, types.Epoch(logID), cfg.SpillType, "", cfg)
	require.NoError(t, gen.Initialize())
	gen.Activate()
	gr.AddGeneration(gen)
	gr.RunCommitQueue(ctx)
	t.Cleanup(func() {
		gr.StopCommitQueue()
		cancel()
	})
	return gen, cancel
}

func testTeam(b byte) types.StorageTeamID {
	var id types.StorageTeamID
	id[0] = b
	return id
}
