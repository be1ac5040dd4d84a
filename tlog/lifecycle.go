package tlog

import "github.com/flowlog/tlogd/types"

// LockResult mirrors TLogLockResult from SPEC_FULL.md §4.7 EXPANDED: a
// read-only snapshot of a generation's durable frontier, servable even
// against a Stopped generation — it's specifically how the recovery
// coordinator discovers a stopped generation's drain point.
type LockResult struct {
	End                   types.Version
	KnownCommittedVersion types.Version
}

// Lock implements the `lock` endpoint. It never mutates state and works
// in any GenState, including Stopped.
func (g *GenerationData) Lock() LockResult {
	return LockResult{
		End:                   g.queueCommittedVersion.Get(),
		KnownCommittedVersion: g.knownCommittedVersionSnapshot(),
	}
}

func (gr *GroupData) popRequestsDisabled() bool {
	gr.popMu.Lock()
	defer gr.popMu.Unlock()
	return gr.ignorePopRequest
}

func (gr *GroupData) queuePop(apply func() error) {
	gr.popMu.Lock()
	defer gr.popMu.Unlock()
	gr.toBePopped = append(gr.toBePopped, apply)
}

// DisablePopRequest implements SPEC_FULL.md §4.8 EXPANDED: subsequent Pop
// calls are queued instead of applied, so a snapshot-based backup agent
// can pin the log in place while it reads.
func (gr *GroupData) DisablePopRequest() {
	gr.popMu.Lock()
	defer gr.popMu.Unlock()
	gr.ignorePopRequest = true
}

// EnablePopRequest replays every queued pop in receipt order and clears
// the flag.
func (gr *GroupData) EnablePopRequest() error {
	gr.popMu.Lock()
	queued := gr.toBePopped
	gr.toBePopped = nil
	gr.ignorePopRequest = false
	gr.popMu.Unlock()

	for _, apply := range queued {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}
