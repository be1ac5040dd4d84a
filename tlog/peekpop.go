package tlog

import (
	"context"
	"sync"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/diskqueue"
	"github.com/flowlog/tlogd/engine"
	"github.com/flowlog/tlogd/messageblock"
	"github.com/flowlog/tlogd/types"
)

// clientSequences tracks the last (clientId, sequence) a peek client used,
// enforcing the monotonic-request rule from SPEC_FULL.md §4.6: an
// out-of-order sequence from a client already seen is dropped.
type clientSequences struct {
	mu   sync.Mutex
	last map[uint64]uint64
}

func newClientSequences() *clientSequences {
	return &clientSequences{last: make(map[uint64]uint64)}
}

// accept reports whether seq is in order for clientID, and records it if
// so. A clientID of 0 means "no dedup requested" and always accepts.
func (c *clientSequences) accept(clientID, seq uint64) bool {
	if clientID == 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.last[clientID]; ok && seq <= last {
		return false
	}
	c.last[clientID] = seq
	return true
}

// Peek implements SPEC_FULL.md §4.3/§4.6: drain spilled KV records in
// [beginVersion, version], then the in-memory deque, bounded by the
// process peek memory limiter.
func (g *GenerationData) Peek(ctx context.Context, kv *engine.Store, limiter *peekMemoryLimiter, seqs *clientSequences, req *PeekRequest) (*PeekReply, error) {
	if seqs != nil && !seqs.accept(req.ClientID, req.Sequence) {
		return nil, errors.Errorf("tlog: out-of-order peek sequence %d from client %d", req.Sequence, req.ClientID)
	}

	end := req.EndVersion
	if end == 0 {
		end = g.version.Get()
	}

	if req.ReturnIfBlocked {
		idx, ok := g.team(req.StorageTeamID)
		if !ok || idx.Len() == 0 {
			hasSpill, err := g.hasSpilledInRange(kv, req.StorageTeamID, req.BeginVersion, end)
			if err != nil {
				return nil, err
			}
			if !hasSpill {
				return &PeekReply{End: req.BeginVersion, MaxKnownVersion: g.version.Get(),
					MinKnownCommittedVersion: g.minKnownCommittedSnapshot(), Begin: req.BeginVersion}, nil
			}
		}
	}

	var data []byte
	highest := req.BeginVersion
	inMemBegin := req.BeginVersion
	popped := g.poppedVersion(req.StorageTeamID)

	// Spilled records are always drained first, regardless of onlySpilled —
	// that flag only decides whether the in-memory tail is drained too.
	spilledData, spilledEnd, err := g.readSpilled(kv, req.StorageTeamID, req.BeginVersion, end)
	if err != nil {
		return nil, err
	}
	if len(spilledData) > 0 {
		if err := limiter.Acquire(ctx, uint64(len(spilledData))); err != nil {
			return nil, errors.WithStack(err)
		}
		data = append(data, spilledData...)
		highest = spilledEnd
		inMemBegin = spilledEnd + 1
		defer limiter.Release(uint64(len(spilledData)))
	}

	if !req.OnlySpilled {
		idx, ok := g.team(req.StorageTeamID)
		if ok {
			refs := idx.PeekFrom(inMemBegin)
			var inMemBytes int
			for _, r := range refs {
				if r.Version > end {
					break
				}
				inMemBytes += r.Length
			}
			if inMemBytes > 0 {
				if err := limiter.Acquire(ctx, uint64(inMemBytes)); err != nil {
					messageblock.ReleaseRefs(refs)
					return nil, errors.WithStack(err)
				}
				defer limiter.Release(uint64(inMemBytes))
			}
			for _, r := range refs {
				if r.Version > end {
					break
				}
				data = append(data, r.Bytes()...)
				if r.Version > highest {
					highest = r.Version
				}
			}
			messageblock.ReleaseRefs(refs)
		}
	}

	return &PeekReply{
		Data:                     data,
		End:                      highest,
		Popped:                   popped,
		MaxKnownVersion:          g.version.Get(),
		MinKnownCommittedVersion: g.minKnownCommittedSnapshot(),
		Begin:                    req.BeginVersion,
		OnlySpilled:              req.OnlySpilled,
	}, nil
}

func (g *GenerationData) minKnownCommittedSnapshot() types.Version {
	g.kcMu.Lock()
	defer g.kcMu.Unlock()
	return g.minKnownCommittedVersion
}

func (g *GenerationData) hasSpilledInRange(kv *engine.Store, team types.StorageTeamID, begin, end types.Version) (bool, error) {
	tag := [16]byte(types.TagForTeam(team))
	for _, rng := range []func(uint64, [16]byte, uint64, uint64) ([]byte, []byte){engine.TagMsgRange, engine.TagMsgRefRange} {
		start, stop := rng(uint64(g.logID), tag, uint64(begin), uint64(end))
		kvs, err := kv.ReadRange(start, stop)
		if err != nil {
			return false, err
		}
		if len(kvs) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// readSpilled reads every TagMsg/TagMsgRef entry for team in [begin, end]
// and returns the concatenated bytes in version order along with the
// highest version included.
func (g *GenerationData) readSpilled(kv *engine.Store, team types.StorageTeamID, begin, end types.Version) ([]byte, types.Version, error) {
	tag := [16]byte(types.TagForTeam(team))
	highest := begin - 1

	start, stop := engine.TagMsgRange(uint64(g.logID), tag, uint64(begin), uint64(end))
	valueKVs, err := kv.ReadRange(start, stop)
	if err != nil {
		return nil, begin, err
	}

	start, stop = engine.TagMsgRefRange(uint64(g.logID), tag, uint64(begin), uint64(end))
	refKVs, err := kv.ReadRange(start, stop)
	if err != nil {
		return nil, begin, err
	}

	var out []byte
	for _, kv2 := range valueKVs {
		out = append(out, kv2.Value...)
		if v := versionFromTagMsgKey(kv2.Key); v > highest {
			highest = v
		}
	}
	// A TagMsgRef location is the start of the entry's frame; the message
	// bytes follow the frame's u32 length field and the QueueEntry header
	// (logID, team, version, knownCommittedVersion).
	const framedMessagesOffset = 4 + 8 + 16 + 8 + 8
	for _, kv2 := range refKVs {
		start, length := decodeLocRange(kv2.Value)
		buf := make([]byte, length)
		if g.group.dq != nil {
			if _, err := g.group.dq.ReadAt(diskqueue.Location(start+framedMessagesOffset), buf); err != nil {
				return nil, begin, errors.WithStack(err)
			}
		}
		out = append(out, buf...)
		if v := versionFromTagMsgKey(kv2.Key); v > highest {
			highest = v
		}
	}
	if highest < begin {
		highest = begin
	}
	return out, highest, nil
}

// versionFromTagMsgKey extracts the trailing big-endian u64 version from a
// TagMsg/TagMsgRef key (engine.tagKey layout: prefix | logID(8) | tag(16) |
// version(8)).
func versionFromTagMsgKey(key []byte) types.Version {
	if len(key) < 8 {
		return 0
	}
	tail := key[len(key)-8:]
	var v uint64
	for _, b := range tail {
		v = v<<8 | uint64(b)
	}
	return types.Version(v)
}

func (g *GenerationData) poppedVersion(team types.StorageTeamID) types.Version {
	tag := [16]byte(types.TagForTeam(team))
	val, found, err := g.group.kv.ReadValue(engine.TagPopKey(uint64(g.logID), tag))
	if err != nil || !found {
		return 0
	}
	return decodeVersion(val)
}

// Pop implements SPEC_FULL.md §4.6. If the group has disablePopRequest
// active (SPEC_FULL.md §4.8 EXPANDED), the request is queued in
// toBePopped and replayed once enablePopRequest clears the flag.
func (g *GenerationData) Pop(req *PopRequest) error {
	if g.group.popRequestsDisabled() {
		g.group.queuePop(func() error { return g.applyPop(req) })
		return nil
	}
	return g.applyPop(req)
}

func (g *GenerationData) applyPop(req *PopRequest) error {
	tag := [16]byte(types.TagForTeam(req.StorageTeamID))
	current := g.poppedVersion(req.StorageTeamID)
	if req.Version <= current {
		return nil
	}
	var wb engine.WriteBatch
	wb.Set(engine.TagPopKey(uint64(g.logID), tag), encodeVersion(req.Version))
	if err := g.group.commitPersistent(&wb); err != nil {
		return err
	}
	if idx, ok := g.team(req.StorageTeamID); ok {
		idx.PopFront(req.Version)
	}
	g.group.advanceDiskQueuePop()
	return nil
}
