package tlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ngaut/log"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/config"
	"github.com/flowlog/tlogd/diskqueue"
	"github.com/flowlog/tlogd/engine"
	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/types"
	"github.com/flowlog/tlogd/worker"
)

// GroupData is a TLog group: the generations that have ever run on it, its
// shared DiskQueue + KeyValueStore, and the pop/spill ordering across
// generations (SPEC_FULL.md §3, §4.4).
type GroupData struct {
	id  types.TLogGroupID
	cfg *config.Config

	kv    *engine.Store
	queue *diskqueue.FramedQueue
	dq    *diskqueue.DiskQueue

	// persistentDataCommitLock serializes KeyValueStore commits across the
	// group's actors (SPEC_FULL.md §5 shared-resource policy).
	persistentDataCommitLock sync.Mutex

	mu           sync.Mutex
	generations  map[types.LogID]*GenerationData
	popOrder     []types.LogID // oldest first
	spillOrder   []types.LogID // oldest first
	activeLogID  types.LogID
	hasActive    bool

	newLogData chan struct{}

	commitQueueStop chan struct{}
	commitQueueDone chan struct{}

	metricsInit sync.Once
	metrics     *queuingMetricsSnapshot

	popMu            sync.Mutex
	ignorePopRequest bool
	toBePopped       []func() error

	spillWorker *worker.Worker
}

// OpenGroup opens (or creates) a group's on-disk state under dataDir and
// returns it with no generations yet registered.
func OpenGroup(id types.TLogGroupID, dataDir string, cfg *config.Config) (*GroupData, error) {
	kv, err := engine.Open(dataDir + "/kv")
	if err != nil {
		return nil, err
	}
	var queue *diskqueue.FramedQueue
	var dq *diskqueue.DiskQueue
	if !cfg.InMemoryOnly {
		dq, err = diskqueue.Open(dataDir+"/queue", 0, 0)
		if err != nil {
			kv.Close()
			return nil, err
		}
		queue = diskqueue.NewFramedQueue(dq)
	}
	return &GroupData{
		id:          id,
		cfg:         cfg,
		kv:          kv,
		queue:       queue,
		dq:          dq,
		generations: make(map[types.LogID]*GenerationData),
		newLogData:  make(chan struct{}, 1),
	}, nil
}

func (gr *GroupData) Close() error {
	if gr.dq != nil {
		gr.dq.Close()
	}
	return gr.kv.Close()
}

func (gr *GroupData) commitPersistent(wb *engine.WriteBatch) error {
	gr.persistentDataCommitLock.Lock()
	defer gr.persistentDataCommitLock.Unlock()
	return wb.Commit(gr.kv)
}

func (gr *GroupData) notifyNewLogData() {
	select {
	case gr.newLogData <- struct{}{}:
	default:
	}
}

// AddGeneration registers gen with the group, making it the group's single
// active generation. Any previously active generation must already have
// been stopped by the caller (SPEC_FULL.md §4.4: at most one non-stopped
// generation per group).
func (gr *GroupData) AddGeneration(gen *GenerationData) {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	gr.generations[gen.logID] = gen
	gr.popOrder = append(gr.popOrder, gen.logID)
	gr.spillOrder = append(gr.spillOrder, gen.logID)
	gr.activeLogID = gen.logID
	gr.hasActive = true
}

// ActiveGeneration returns the group's current non-stopped generation, if
// any.
func (gr *GroupData) ActiveGeneration() (*GenerationData, bool) {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	if !gr.hasActive {
		return nil, false
	}
	return gr.generations[gr.activeLogID], true
}

// StopActiveGeneration stops the current active generation (if any) so a
// new one can be recruited. Mirrors stopAllTLogs narrowed to one group
// (SPEC_FULL.md §4.8).
func (gr *GroupData) StopActiveGeneration() {
	gr.mu.Lock()
	active, ok := gr.activeLogID, gr.hasActive
	gr.hasActive = false
	gr.mu.Unlock()
	if ok {
		if gen := gr.Generation(active); gen != nil {
			gen.Stop()
		}
	}
}

func (gr *GroupData) Generation(id types.LogID) *GenerationData {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	return gr.generations[id]
}

// RemoveGeneration clears a generation's persisted keys and unlinks it
// from the group (SPEC_FULL.md §4.7 Removed).
func (gr *GroupData) RemoveGeneration(id types.LogID) error {
	logID := uint64(id)
	var wb engine.WriteBatch
	for _, key := range [][]byte{
		engine.FormatKey(logID), engine.ProtocolVersionKey(logID), engine.SpillTypeKey(logID),
		engine.RecoveryCountKey(logID), engine.VersionKey(logID), engine.KnownCommittedKey(logID),
		engine.LocalityKey(logID),
	} {
		wb.Clear(key)
	}
	if err := gr.commitPersistent(&wb); err != nil {
		return err
	}

	gr.mu.Lock()
	defer gr.mu.Unlock()
	if gen, ok := gr.generations[id]; ok {
		gen.setState(GenRemoved)
	}
	delete(gr.generations, id)
	gr.popOrder = removeLogID(gr.popOrder, id)
	gr.spillOrder = removeLogID(gr.spillOrder, id)
	return nil
}

func removeLogID(s []types.LogID, id types.LogID) []types.LogID {
	out := s[:0]
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// oldestPoppable returns the oldest generation still in popOrder, i.e. the
// one whose unpopped prefix gates DiskQueue reclamation across the whole
// group (SPEC_FULL.md §4.4 Cross-generation pop rule).
func (gr *GroupData) oldestPoppable() (*GenerationData, bool) {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	if len(gr.popOrder) == 0 {
		return nil, false
	}
	return gr.generations[gr.popOrder[0]], true
}

// advanceDiskQueuePop recomputes the minimum DiskQueue location still
// needed by the oldest poppable generation's teams and pops the queue up
// to it.
func (gr *GroupData) advanceDiskQueuePop() {
	if gr.dq == nil {
		return
	}
	gen, ok := gr.oldestPoppable()
	if !ok {
		return
	}
	min, any := gen.minRetainedLoc()
	if !any {
		// Oldest generation holds nothing in memory anymore; it may be
		// droppable from popOrder entirely once also drained.
		gr.maybeAdvancePopOrder()
		return
	}
	gr.dq.Pop(diskqueue.Location(min))
}

func (gr *GroupData) maybeAdvancePopOrder() {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	for len(gr.popOrder) > 0 {
		id := gr.popOrder[0]
		gen := gr.generations[id]
		if gen == nil || (gen.State() == GenDrained && gen.allTeamsEmpty()) {
			gr.popOrder = gr.popOrder[1:]
			continue
		}
		break
	}
}

// RunCommitQueue starts the per-group commitQueue actor described in
// SPEC_FULL.md §4.4: it watches the active generation's version and
// periodically flushes the FramedQueue so durability tracks commits
// without every commit paying for its own fsync.
func (gr *GroupData) RunCommitQueue(ctx context.Context) {
	gr.mu.Lock()
	if gr.commitQueueStop != nil {
		gr.mu.Unlock()
		return
	}
	gr.commitQueueStop = make(chan struct{})
	gr.commitQueueDone = make(chan struct{})
	stop := gr.commitQueueStop
	done := gr.commitQueueDone
	gr.mu.Unlock()

	go func() {
		defer close(done)
		for {
			gen, ok := gr.ActiveGeneration()
			if !ok {
				select {
				case <-gr.newLogData:
					continue
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
			}
			gr.pumpGeneration(ctx, gen, stop)
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
}

func (gr *GroupData) StopCommitQueue() {
	gr.mu.Lock()
	stop := gr.commitQueueStop
	done := gr.commitQueueDone
	gr.mu.Unlock()
	if stop == nil {
		return
	}
	select {
	case <-stop:
	default:
		close(stop)
	}
	if done != nil {
		<-done
	}
}

// pumpGeneration commits the group's FramedQueue whenever gen's version
// has advanced past what's already queue-committed, checking every 5ms
// (SPEC_FULL.md §4.4). Pushed bytes are not counted here: pendingBytes
// stays 0, so the maxQueueCommitBytes comparison never forces a commit on
// its own. Once gen is stopped and drained it is marked GenDrained.
func (gr *GroupData) pumpGeneration(ctx context.Context, gen *GenerationData, stop <-chan struct{}) {
	var pendingBytes uint64
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		v := gen.version.Get()
		qv := gen.queueCommittedVersion.Get()
		if v <= qv && pendingBytes < gr.cfg.MaxQueueCommitBytes {
			select {
			case <-ticker.C:
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-gen.stopCh:
				if gen.Drained() {
					gen.stateMu.Lock()
					if gen.state == GenStopped {
						gen.state = GenDrained
					}
					gen.stateMu.Unlock()
					return
				}
			}
			continue
		}
		knownCommitted := gen.knownCommittedVersionSnapshot()
		if gr.queue != nil {
			if err := gr.queue.Commit(); err != nil {
				log.Errorf("tlog: group %s queue commit failed: %v", gr.id, err)
				return
			}
		}
		gen.queueCommittedVersion.Set(v)
		gen.setDurableKnownCommitted(knownCommitted)
		pendingBytes = 0
		gr.advanceDiskQueuePop()
		if gen.State() == GenStopped && gen.Drained() {
			gen.stateMu.Lock()
			if gen.state == GenStopped {
				gen.state = GenDrained
			}
			gen.stateMu.Unlock()
			return
		}
	}
}

// checkRecovered is invoked by ServerData while bringing a group up, per
// SPEC_FULL.md §4.8.
func (gr *GroupData) checkRecovered(ctx context.Context, timeout time.Duration) error {
	if gr.dq == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		reader := gr.queue.NewReader(0)
		var lastGood diskqueue.Location
		for {
			loc := reader.Location()
			payload, err := reader.ReadNext()
			if err != nil {
				if errors.Cause(err) == errs.ErrEndOfStream {
					break
				}
				done <- err
				return
			}
			lastGood = reader.Location()
			entry, err := decodeQueueEntry(payload)
			if err != nil {
				done <- err
				return
			}
			if gen := gr.Generation(entry.LogID); gen != nil {
				if _, _, _, err := gen.commitMessages(entry.Version, entry.StorageTeamID, entry.Messages); err != nil {
					done <- err
					return
				}
				if idx, ok := gen.team(entry.StorageTeamID); ok {
					idx.SetLastLoc(int64(loc))
				}
				gen.raiseKnownCommitted(entry.KnownCommittedVersion)
				gen.version.Set(entry.Version)
				gen.queueCommittedVersion.Set(entry.Version)
				gen.setDurableKnownCommitted(entry.KnownCommittedVersion)
			}
		}
		gr.dq.SetWriteLocation(lastGood)
		done <- nil
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return errors.WithStack(errs.ErrIOTimeout)
	case <-ctx.Done():
		return errors.WithStack(errs.ErrOperationCancelled)
	}
}

// spillTick is the only Task the spiller's worker.Handler ever receives.
type spillTick struct{}

// spillActor drains every team of its group's active generation once that
// generation is over the spill threshold, one goroutine per group
// (SPEC_FULL.md §4.3 Spilling, run via the teacher's single-consumer
// worker.Worker rather than a bare goroutine, so a spill tick arriving
// mid-drain waits in the worker's queue instead of racing the first; ticks
// are dropped only while that queue is full).
type spillActor struct {
	gr *GroupData
}

func (a *spillActor) Handle(t worker.Task) {
	if _, ok := t.(spillTick); !ok {
		return
	}
	gen, ok := a.gr.ActiveGeneration()
	if !ok || !gen.needsSpill() {
		return
	}
	upTo := gen.Version()
	for _, team := range gen.teamIDs() {
		if _, err := gen.spillTeam(a.gr.kv, team, upTo); err != nil {
			log.Errorf("tlog: spill failed for group %s team %s: %v", a.gr.id, team, err)
		}
	}
	a.gr.advanceDiskQueuePop()
}

// RunSpiller starts the group's spill actor and a ticker goroutine that
// feeds it spillTick tasks until ctx is done. Safe to call more than once;
// only the first call starts anything.
func (gr *GroupData) RunSpiller(ctx context.Context, interval time.Duration) {
	gr.mu.Lock()
	if gr.spillWorker != nil {
		gr.mu.Unlock()
		return
	}
	w := worker.New(fmt.Sprintf("spiller-%s", gr.id), nil)
	gr.spillWorker = w
	gr.mu.Unlock()

	w.Run(&spillActor{gr: gr})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.Stop()
				return
			case <-ticker.C:
				select {
				case w.Sender() <- spillTick{}:
				default:
				}
			}
		}
	}()
}
