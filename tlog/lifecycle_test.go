package tlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Lock is servable even against a Stopped generation, since the recovery
// coordinator needs a stopped generation's drain point.
func TestLockWorksAfterStop(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	gen.Stop()

	result := gen.Lock()
	require.Equal(t, gen.QueueCommittedVersion(), result.End)
}

// DisablePopRequest queues Pop calls instead of applying them; EnablePopRequest
// replays the queue in receipt order once lifted.
func TestDisablePopRequestQueuesAndReplays(t *testing.T) {
	gr, cfg := newTestGroup(t)
	gen, _ := newActiveGeneration(t, gr, cfg, 1)
	team := testTeam(1)

	gr.DisablePopRequest()
	require.NoError(t, gen.Pop(&PopRequest{GroupID: gr.id, StorageTeamID: team, Version: 5}))
	require.Equal(t, int64(0), int64(gen.poppedVersion(team)))

	require.NoError(t, gr.EnablePopRequest())
	require.Equal(t, int64(5), int64(gen.poppedVersion(team)))
}

func TestGenStateStrings(t *testing.T) {
	cases := map[GenState]string{
		GenInit: "init", GenInitialized: "initialized", GenActive: "active",
		GenStopped: "stopped", GenDrained: "drained", GenRemoved: "removed",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}
