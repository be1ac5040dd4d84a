package tlog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/types"
)

// S5: once the older of two generations on a group is removed, the younger
// one becomes the oldest poppable generation and gates DiskQueue reclaim on
// its own behalf.
func TestCrossGenerationPopOrder(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen1, _ := newActiveGeneration(t, gr, cfg, 1)
	gr.StopActiveGeneration()
	gen2, _ := newActiveGeneration(t, gr, cfg, 2)

	oldest, ok := gr.oldestPoppable()
	require.True(t, ok)
	require.Equal(t, gen1.LogID(), oldest.LogID())

	require.NoError(t, gr.RemoveGeneration(gen1.LogID()))

	oldest, ok = gr.oldestPoppable()
	require.True(t, ok)
	require.Equal(t, gen2.LogID(), oldest.LogID())
	require.Equal(t, GenRemoved, gen1.State())
	require.Nil(t, gr.Generation(gen1.LogID()))
}

// At most one non-stopped generation may be active per group: once the
// first is stopped, adding a second makes it the group's active generation.
func TestAddGenerationSupersedesPreviousActive(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen1, _ := newActiveGeneration(t, gr, cfg, 1)
	require.False(t, gen1.IsStopped())

	gr.StopActiveGeneration()
	require.True(t, gen1.IsStopped())

	gen2, _ := newActiveGeneration(t, gr, cfg, 2)
	active, ok := gr.ActiveGeneration()
	require.True(t, ok)
	require.Equal(t, gen2.LogID(), active.LogID())
}

// advanceDiskQueuePop is a no-op (not a panic) once the group has no
// DiskQueue, which is the InMemoryOnly configuration every other test here
// runs under.
func TestAdvanceDiskQueuePopNoopWithoutDiskQueue(t *testing.T) {
	gr, cfg := newTestGroup(t)
	_, _ = newActiveGeneration(t, gr, cfg, 1)
	require.NotPanics(t, func() { gr.advanceDiskQueuePop() })
}

func TestRemoveLogIDHelper(t *testing.T) {
	ids := []types.LogID{1, 2, 3}
	out := removeLogID(ids, 2)
	require.Equal(t, []types.LogID{1, 3}, out)
}
