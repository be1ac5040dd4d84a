package tlog

import (
	"context"
	"math/rand"
	"time"

	"github.com/ngaut/log"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/types"
)

// Commit implements the handler algorithm from SPEC_FULL.md §4.5.
func (g *GenerationData) Commit(ctx context.Context, req *CommitRequest) (*CommitReply, error) {
	g.raiseMinKnownCommitted(req.MinKnownCommittedVersion)

	// Step 2: serialize by prevVersion -> version chain.
	if err := g.version.WhenAtLeast(ctx, req.PrevVersion, g.stopCh); err != nil {
		if errors.Cause(err) == errs.ErrTLogStopped {
			return nil, errors.WithStack(errs.ErrTLogStopped)
		}
		return nil, err
	}

	g.versionMu.Lock()
	defer g.versionMu.Unlock()

	// Step 3: backpressure against the hard memory limit.
	for g.BytesInput()-g.BytesDurable() >= g.cfg.HardLimitBytes {
		if g.IsStopped() {
			return nil, errors.WithStack(errs.ErrTLogStopped)
		}
		jitter := time.Duration(rand.Intn(20)) * time.Millisecond
		select {
		case <-time.After(10*time.Millisecond + jitter):
		case <-ctx.Done():
			return nil, errors.WithStack(errs.ErrOperationCancelled)
		case <-g.stopCh:
			return nil, errors.WithStack(errs.ErrTLogStopped)
		}
	}

	// Step 4: duplicate detection. The wait above already established
	// version < req.prevVersion is impossible (we'd still be waiting), so
	// a duplicate is exactly "someone else already advanced version past
	// prevVersion to something other than what this request expects".
	if g.version.Get() != req.PrevVersion {
		return &CommitReply{DurableKnownCommittedVersion: g.durableKnownCommitted()}, nil
	}

	if len(req.Messages) > 0 {
		idx, _, _, err := g.commitMessages(req.Version, req.StorageTeamID, req.Messages)
		if err != nil {
			return nil, err
		}
		g.raiseKnownCommitted(req.KnownCommittedVersion)

		entry := QueueEntry{
			LogID:                 g.logID,
			StorageTeamID:         req.StorageTeamID,
			Version:               req.Version,
			KnownCommittedVersion: g.knownCommittedVersionSnapshot(),
			Messages:              req.Messages,
		}
		if g.group.queue != nil {
			payload := encodeQueueEntry(&entry)
			start, _, err := g.group.queue.Push(payload)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			idx.SetLastLoc(int64(start))
		}
	}

	// Step 5e: release the version advance — peers observe this.
	g.version.Set(req.Version)

	// Step 6: wait for the queue-commit pump to catch up, or for a stop.
	warn := time.NewTimer(g.cfg.WarningTimeout)
	defer warn.Stop()
	done := make(chan error, 1)
	go func() {
		done <- g.queueCommittedVersion.WhenAtLeast(ctx, req.Version, g.stopCh)
	}()
	for {
		select {
		case err := <-done:
			if err != nil {
				if errors.Cause(err) == errs.ErrTLogStopped {
					return nil, errors.WithStack(errs.ErrTLogStopped)
				}
				return nil, err
			}
			return &CommitReply{DurableKnownCommittedVersion: g.durableKnownCommitted()}, nil
		case <-warn.C:
			log.Warnf("tlog: commit for team %x version %s has been waiting on queue-commit for %s",
				req.StorageTeamID, req.Version, g.cfg.WarningTimeout)
		}
	}
}

func encodeQueueEntry(e *QueueEntry) []byte {
	buf := make([]byte, 0, 8+16+8+8+len(e.Messages))
	buf = appendUint64(buf, uint64(e.LogID))
	buf = append(buf, e.StorageTeamID[:]...)
	buf = appendUint64(buf, uint64(e.Version))
	buf = appendUint64(buf, uint64(e.KnownCommittedVersion))
	buf = append(buf, e.Messages...)
	return buf
}

func decodeQueueEntry(b []byte) (*QueueEntry, error) {
	if len(b) < 8+16+8+8 {
		return nil, errors.WithStack(errs.ErrCorruptLog)
	}
	e := &QueueEntry{}
	e.LogID = types.LogID(readUint64(b[0:8]))
	copy(e.StorageTeamID[:], b[8:24])
	e.Version = types.Version(readUint64(b[24:32]))
	e.KnownCommittedVersion = types.Version(readUint64(b[32:40]))
	e.Messages = append([]byte{}, b[40:]...)
	return e, nil
}

func appendUint64(b []byte, v uint64) []byte {
	for i := 7; i >= 0; i-- {
		b = append(b, byte(v>>(8*uint(i))))
	}
	return b
}

func readUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
