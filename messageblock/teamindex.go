package messageblock

import (
	"sort"
	"sync"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/types"
)

// TeamIndex is one storage team's in-memory message log: a deque of
// (version, slice-into-Block) entries, append-only at the back and
// reclaimed from the front by spill or pop (SPEC_FULL.md §3, §9 decision 3
// — one mutex per TeamIndex rather than one per generation, so peeks and
// pops on different teams never contend).
type TeamIndex struct {
	mu      sync.Mutex
	entries []Ref
}

func NewTeamIndex() *TeamIndex {
	return &TeamIndex{}
}

// Append adds one entry. Versions must be strictly increasing; commit-level
// deduplication (SPEC_FULL.md §4.5 step 4) is expected to have already
// rejected a retried version before this is called, so a violation here is
// a programming error, not a client-triggerable one.
func (t *TeamIndex) Append(version types.Version, block *Block, offset, length int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.entries); n > 0 && t.entries[n-1].Version >= version {
		return errors.Errorf("messageblock: team index version went backwards: last=%s new=%s",
			t.entries[n-1].Version, version)
	}
	block.Retain()
	t.entries = append(t.entries, Ref{Version: version, Block: block, Offset: offset, Length: length})
	return nil
}

// SetLastLoc stamps the DiskQueue location cookie on the most recently
// appended entry. Called once the caller knows where that entry's
// QueueEntry landed in the FramedQueue, which isn't known until after
// Append (SPEC_FULL.md §4.5 steps a/c run in sequence, not atomically).
func (t *TeamIndex) SetLastLoc(loc int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.entries); n > 0 {
		t.entries[n-1].Loc = loc
	}
}

func (t *TeamIndex) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Front returns the oldest in-memory entry, if any.
func (t *TeamIndex) Front() (Ref, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return Ref{}, false
	}
	return t.entries[0], true
}

// Back returns the newest in-memory entry, if any.
func (t *TeamIndex) Back() (Ref, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return Ref{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// PeekFrom returns every in-memory entry with Version >= begin, in version
// order, each holding an extra reference on its Block that the caller must
// release via ReleaseRefs once it has copied the bytes out.
func (t *TeamIndex) PeekFrom(begin types.Version) []Ref {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].Version >= begin })
	out := make([]Ref, len(t.entries)-idx)
	for i, e := range t.entries[idx:] {
		e.Block.Retain()
		out[i] = e
	}
	return out
}

// ReleaseRefs drops the extra references PeekFrom took out.
func ReleaseRefs(refs []Ref) {
	for _, r := range refs {
		r.Block.Release()
	}
}

// PopFront removes every entry with Version <= upTo from the front of the
// deque, releasing each one's Block reference, and returns what was
// removed. Both spill and pop call this with different cutoffs
// (SPEC_FULL.md §3 TeamIndex lifecycle).
func (t *TeamIndex) PopFront(upTo types.Version) []Ref {
	t.mu.Lock()
	defer t.mu.Unlock()
	cut := 0
	for cut < len(t.entries) && t.entries[cut].Version <= upTo {
		cut++
	}
	if cut == 0 {
		return nil
	}
	popped := make([]Ref, cut)
	copy(popped, t.entries[:cut])
	for _, r := range popped {
		r.Block.Release()
	}
	remaining := len(t.entries) - cut
	if remaining == 0 {
		t.entries = nil
	} else {
		next := make([]Ref, remaining)
		copy(next, t.entries[cut:])
		t.entries = next
	}
	return popped
}
