package tlog

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ngaut/log"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/cluster"
	"github.com/flowlog/tlogd/config"
	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/runtime"
	"github.com/flowlog/tlogd/types"
)

// metricsSampleInterval is how often a group's queuing metrics are
// resampled off the commit hot path (SPEC_FULL.md §4.4 EXPANDED).
const metricsSampleInterval = time.Second

// rejoinMastersPollInterval is how often a generation checks whether
// cluster recovery has displaced it (spec.md §4.8).
const rejoinMastersPollInterval = 2 * time.Second

// spillTickInterval is how often a group's spiller checks whether its
// active generation has crossed the spill threshold.
const spillTickInterval = 50 * time.Millisecond

// ServerData is a tlogd process: every group it hosts, the process-wide
// peek memory limiter, and the per-client sequence tracker, all dispatched
// to by GroupID (SPEC_FULL.md §2 "ServerData dispatches by storageTeamID
// to the right GenerationData" — concretely, by the GroupID the caller
// already resolved from cluster configuration; see CommitRequest's doc
// comment for why that resolution is the caller's job, not ours).
type ServerData struct {
	cfg        *config.Config
	clock      runtime.Clock
	instanceID uint64
	source     cluster.InfoSource

	mu     sync.Mutex
	groups map[types.TLogGroupID]*GroupData

	recruitMu sync.Mutex
	recruited map[string][]types.LogID

	nextLogID uint64

	limiter *peekMemoryLimiter
	seqs    *clientSequences
}

// NewServerData constructs an empty server. source may be nil, in which
// case InitializeTLog never starts a rejoinMasters loop — useful for
// standalone/test deployments with no cluster coordinator.
func NewServerData(cfg *config.Config, clock runtime.Clock, instanceID uint64, source cluster.InfoSource) *ServerData {
	return &ServerData{
		cfg:        cfg,
		clock:      clock,
		instanceID: instanceID,
		source:     source,
		groups:     make(map[types.TLogGroupID]*GroupData),
		recruited:  make(map[string][]types.LogID),
		limiter:    newPeekMemoryLimiter(cfg.PeekMemoryBytes),
		seqs:       newClientSequences(),
	}
}

func (s *ServerData) group(id types.TLogGroupID) (*GroupData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gr, ok := s.groups[id]
	return gr, ok
}

func (s *ServerData) getOrOpenGroup(id types.TLogGroupID) (*GroupData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gr, ok := s.groups[id]; ok {
		return gr, nil
	}
	gr, err := OpenGroup(id, fmt.Sprintf("%s/%s", s.cfg.DataDir, id.String()), s.cfg)
	if err != nil {
		return nil, err
	}
	s.groups[id] = gr
	return gr, nil
}

func (s *ServerData) mintLogID() types.LogID {
	return types.LogID(atomic.AddUint64(&s.nextLogID, 1))
}

// InitializeTLog implements the recruitment handler from spec.md §4.8: for
// each requested group, it recovers the group's persisted state, stops any
// currently-active generation, and recruits a fresh one. It's idempotent on
// recruitmentID — a retried request from the same recruiter replays the
// already-assigned LogIDs rather than recruiting twice.
func (s *ServerData) InitializeTLog(ctx context.Context, req *cluster.RecruitmentRequest) ([]types.LogID, error) {
	s.recruitMu.Lock()
	if ids, ok := s.recruited[req.RecruitmentID]; ok {
		s.recruitMu.Unlock()
		return ids, nil
	}
	s.recruitMu.Unlock()

	logIDs := make([]types.LogID, 0, len(req.TLogGroups))
	for _, groupID := range req.TLogGroups {
		gr, err := s.getOrOpenGroup(groupID)
		if err != nil {
			return nil, errors.WithStack(errs.ErrRecruitmentFailed)
		}

		recoverCtx, cancel := context.WithTimeout(ctx, s.cfg.TlogMaxCreateDuration)
		err = gr.checkRecovered(recoverCtx, s.cfg.TlogMaxCreateDuration)
		cancel()
		if err != nil {
			log.Errorf("tlog: group %s failed to recover: %v", groupID, err)
			return nil, errors.WithStack(errs.ErrRecruitmentFailed)
		}

		gr.StopActiveGeneration()

		logID := s.mintLogID()
		gen := NewGeneration(gr, logID, req.Epoch, s.cfg.SpillType, "", s.cfg)
		if err := gen.Initialize(); err != nil {
			return nil, err
		}
		gen.Activate()
		gr.AddGeneration(gen)
		gr.RunCommitQueue(ctx)
		gr.RunSpiller(ctx, spillTickInterval)
		go gr.RunQueuingMetricsSampler(ctx, s.clock, s.instanceID, metricsSampleInterval)

		if s.source != nil {
			go func(gr *GroupData, gen *GenerationData) {
				if err := s.rejoinMasters(ctx, gr, gen); err != nil && !stderrors.Is(err, errs.ErrOperationCancelled) {
					log.Warnf("tlog: generation %v left rejoinMasters: %v", gen.LogID(), err)
				}
			}(gr, gen)
		}

		logIDs = append(logIDs, logID)
	}

	s.recruitMu.Lock()
	s.recruited[req.RecruitmentID] = logIDs
	s.recruitMu.Unlock()
	return logIDs, nil
}

// rejoinMasters polls the cluster's recovery state and stops+removes gen
// the moment it's superseded by a newer recovery, per spec.md §4.8. It
// returns errs.ErrWorkerRemoved once that happens, or errs.ErrOperationCancelled
// if ctx is done first; either way it returns nil if gen is stopped by some
// other path (e.g. a fresh recruitment) before displacement is observed.
func (s *ServerData) rejoinMasters(ctx context.Context, gr *GroupData, gen *GenerationData) error {
	ticker := time.NewTicker(rejoinMastersPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return errors.WithStack(errs.ErrOperationCancelled)
		case <-gen.stopCh:
			return nil
		case <-ticker.C:
		}

		cfg, err := s.source.CurrentLogSystemConfig(ctx)
		if err != nil {
			log.Warnf("tlog: rejoinMasters poll failed for generation %v: %v", gen.LogID(), err)
			continue
		}
		if cfg.Superseded(gen.LogID(), gen.recoveryCount) {
			gen.Stop()
			if err := gr.RemoveGeneration(gen.LogID()); err != nil {
				log.Errorf("tlog: failed to remove superseded generation %v: %v", gen.LogID(), err)
			}
			return errors.WithStack(errs.ErrWorkerRemoved)
		}
	}
}

// Commit dispatches a commit to its GroupID's active generation.
func (s *ServerData) Commit(ctx context.Context, req *CommitRequest) (*CommitReply, error) {
	gr, ok := s.group(req.GroupID)
	if !ok {
		return nil, errors.WithStack(errs.ErrGroupNotFound)
	}
	gen, ok := gr.ActiveGeneration()
	if !ok {
		return nil, errors.WithStack(errs.ErrTLogStopped)
	}
	return gen.Commit(ctx, req)
}

// Peek dispatches a peek to its GroupID's active generation, sharing this
// server's process-wide peek memory limiter and client sequence tracker.
func (s *ServerData) Peek(ctx context.Context, req *PeekRequest) (*PeekReply, error) {
	gr, ok := s.group(req.GroupID)
	if !ok {
		return nil, errors.WithStack(errs.ErrGroupNotFound)
	}
	gen, ok := gr.ActiveGeneration()
	if !ok {
		return nil, errors.WithStack(errs.ErrTLogStopped)
	}
	return gen.Peek(ctx, gr.kv, s.limiter, s.seqs, req)
}

// Pop dispatches a pop to its GroupID's active generation.
func (s *ServerData) Pop(req *PopRequest) error {
	gr, ok := s.group(req.GroupID)
	if !ok {
		return errors.WithStack(errs.ErrGroupNotFound)
	}
	gen, ok := gr.ActiveGeneration()
	if !ok {
		return errors.WithStack(errs.ErrTLogStopped)
	}
	return gen.Pop(req)
}

// Lock returns a generation's durable frontier, identified explicitly by
// LogID since, unlike Commit/Peek/Pop, it must also answer for a generation
// that's already Stopped and so no longer "the" active one for its group.
func (s *ServerData) Lock(groupID types.TLogGroupID, logID types.LogID) (LockResult, error) {
	gr, ok := s.group(groupID)
	if !ok {
		return LockResult{}, errors.WithStack(errs.ErrGroupNotFound)
	}
	gen := gr.Generation(logID)
	if gen == nil {
		return LockResult{}, errors.WithStack(errs.ErrGroupNotFound)
	}
	return gen.Lock(), nil
}

// GetQueuingMetrics returns the last periodic sample for a group.
func (s *ServerData) GetQueuingMetrics(groupID types.TLogGroupID) (QueuingMetrics, error) {
	gr, ok := s.group(groupID)
	if !ok {
		return QueuingMetrics{}, errors.WithStack(errs.ErrGroupNotFound)
	}
	return gr.GetQueuingMetrics(), nil
}

// DisablePopRequest/EnablePopRequest implement SPEC_FULL.md §4.8 EXPANDED
// for a single group, used by a snapshot-based backup agent to pin the log
// in place while it reads.
func (s *ServerData) DisablePopRequest(groupID types.TLogGroupID) error {
	gr, ok := s.group(groupID)
	if !ok {
		return errors.WithStack(errs.ErrGroupNotFound)
	}
	gr.DisablePopRequest()
	return nil
}

func (s *ServerData) EnablePopRequest(groupID types.TLogGroupID) error {
	gr, ok := s.group(groupID)
	if !ok {
		return errors.WithStack(errs.ErrGroupNotFound)
	}
	return gr.EnablePopRequest()
}

// Close shuts down every group's commitQueue actor and on-disk state. Used
// on process shutdown.
func (s *ServerData) Close() error {
	s.mu.Lock()
	groups := make([]*GroupData, 0, len(s.groups))
	for _, gr := range s.groups {
		groups = append(groups, gr)
	}
	s.mu.Unlock()

	var firstErr error
	for _, gr := range groups {
		gr.StopCommitQueue()
		if err := gr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
