package tlog

import (
	"sync"
	"sync/atomic"

	"github.com/ngaut/log"
	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/config"
	"github.com/flowlog/tlogd/engine"
	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/messageblock"
	"github.com/flowlog/tlogd/types"
)

// GenerationData is one log generation for one TLog group: a version
// counter, the in-memory per-team message index, and the spill/commit
// bookkeeping that goes with them (SPEC_FULL.md §4.3). It does not own a
// DiskQueue or KeyValueStore directly — those belong to the GroupData that
// created it (SPEC_FULL.md §3 Ownership) — it holds a plain back-reference
// to it, which is fine under Go's GC even though the source's ownership
// notes (§9) warn against cycles in a manually-managed-memory host.
type GenerationData struct {
	// versionMu serializes the append pipeline end to end (commitMessages,
	// queue push, version advance): the generation-wide lock from
	// SPEC_FULL.md §9 decision 3, kept distinct from each TeamIndex's own
	// mutex, which only protects that team's deque against concurrent
	// peeks.
	versionMu sync.Mutex

	logID         types.LogID
	groupID       types.TLogGroupID
	epoch         types.Epoch
	recoveryCount types.Epoch
	locality      string
	spillType     config.SpillType
	cfg           *config.Config
	group         *GroupData

	stateMu sync.Mutex
	state   GenState

	version               *versionNotifier
	queueCommittedVersion *versionNotifier

	kcMu                         sync.Mutex
	knownCommittedVersion        types.Version
	durableKnownCommittedVersion types.Version
	minKnownCommittedVersion     types.Version

	teamsMu   sync.Mutex
	teams     map[types.StorageTeamID]*messageblock.TeamIndex
	tailBlock *messageblock.Block

	bytesInput   uint64
	bytesDurable uint64

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGeneration constructs a generation in state Init, per SPEC_FULL.md
// §4.7.
func NewGeneration(group *GroupData, logID types.LogID, epoch types.Epoch, spillType config.SpillType, locality string, cfg *config.Config) *GenerationData {
	return &GenerationData{
		logID:                 logID,
		groupID:               group.id,
		epoch:                 epoch,
		recoveryCount:         epoch,
		locality:              locality,
		spillType:             spillType,
		cfg:                   cfg,
		group:                 group,
		state:                 GenInit,
		version:               newVersionNotifier(),
		queueCommittedVersion: newVersionNotifier(),
		teams:                 make(map[types.StorageTeamID]*messageblock.TeamIndex),
		stopCh:                make(chan struct{}),
	}
}

func (g *GenerationData) State() GenState {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	return g.state
}

func (g *GenerationData) setState(s GenState) {
	g.stateMu.Lock()
	g.state = s
	g.stateMu.Unlock()
}

func (g *GenerationData) LogID() types.LogID   { return g.logID }
func (g *GenerationData) Epoch() types.Epoch   { return g.epoch }
func (g *GenerationData) Version() types.Version { return g.version.Get() }
func (g *GenerationData) QueueCommittedVersion() types.Version {
	return g.queueCommittedVersion.Get()
}

func (g *GenerationData) IsStopped() bool {
	select {
	case <-g.stopCh:
		return true
	default:
		return false
	}
}

// Initialize persists the generation's metadata keys and transitions
// Init -> Initialized (SPEC_FULL.md §4.7). Commits are serialized by the
// group's persistentDataCommitLock.
func (g *GenerationData) Initialize() error {
	if g.State() != GenInit {
		return errors.Errorf("tlog: Initialize called in state %s", g.State())
	}
	var wb engine.WriteBatch
	logID := uint64(g.logID)
	wb.Set(engine.FormatKey(logID), []byte("tlogd-v1"))
	wb.Set(engine.VersionKey(logID), encodeVersion(0))
	wb.Set(engine.KnownCommittedKey(logID), encodeVersion(0))
	wb.Set(engine.LocalityKey(logID), []byte(g.locality))
	wb.Set(engine.RecoveryCountKey(logID), encodeVersion(types.Version(g.recoveryCount)))
	wb.Set(engine.ProtocolVersionKey(logID), []byte("1"))
	wb.Set(engine.SpillTypeKey(logID), []byte(g.spillType.String()))

	if err := g.group.commitPersistent(&wb); err != nil {
		return err
	}
	g.setState(GenInitialized)
	g.group.notifyNewLogData()
	return nil
}

// Activate transitions Initialized -> Active, after which the generation
// accepts commits.
func (g *GenerationData) Activate() {
	g.setState(GenActive)
}

// Stop transitions into Stopped: rejects further commits with
// tlog_stopped and releases anyone blocked in WhenAtLeast on this
// generation (SPEC_FULL.md §4.7).
func (g *GenerationData) Stop() {
	g.stopOnce.Do(func() {
		g.setState(GenStopped)
		close(g.stopCh)
	})
}

// Drained reports whether queueCommittedVersion has caught up to version,
// meaning no more commits will ever be queued (SPEC_FULL.md §4.7).
func (g *GenerationData) Drained() bool {
	return g.queueCommittedVersion.Get() >= g.version.Get()
}

func encodeVersion(v types.Version) []byte {
	b := make([]byte, 8)
	u := uint64(v)
	for i := 7; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}

func decodeVersion(b []byte) types.Version {
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return types.Version(u)
}

// getOrCreateTeam returns the TeamIndex for team, creating it on first use.
func (g *GenerationData) getOrCreateTeam(team types.StorageTeamID) *messageblock.TeamIndex {
	g.teamsMu.Lock()
	defer g.teamsMu.Unlock()
	idx, ok := g.teams[team]
	if !ok {
		idx = messageblock.NewTeamIndex()
		g.teams[team] = idx
	}
	return idx
}

func (g *GenerationData) team(team types.StorageTeamID) (*messageblock.TeamIndex, bool) {
	g.teamsMu.Lock()
	defer g.teamsMu.Unlock()
	idx, ok := g.teams[team]
	return idx, ok
}

// teamIDs snapshots the set of teams this generation has ever seen a
// commit for, used by the spiller to know what to walk.
func (g *GenerationData) teamIDs() []types.StorageTeamID {
	g.teamsMu.Lock()
	defer g.teamsMu.Unlock()
	ids := make([]types.StorageTeamID, 0, len(g.teams))
	for id := range g.teams {
		ids = append(ids, id)
	}
	return ids
}

// commitMessages is SPEC_FULL.md §4.3's append algorithm. Caller
// (Commit, §4.5) already holds versionMu.
func (g *GenerationData) commitMessages(version types.Version, team types.StorageTeamID, bytes []byte) (*messageblock.TeamIndex, int, int, error) {
	if len(bytes) == 0 {
		return nil, 0, 0, nil
	}
	if uint64(len(bytes)) > g.cfg.MaxMessageSize {
		log.Warnf("tlog: commit for team %s version %s is %d bytes, exceeds maxMessageSize %d",
			team, version, len(bytes), g.cfg.MaxMessageSize)
	}

	g.teamsMu.Lock()
	block := g.tailBlock
	if block == nil || block.Sealed() {
		size := g.cfg.DefaultBlockBytes
		if uint64(len(bytes)) > size {
			size = uint64(len(bytes))
		}
		block = messageblock.NewBlock(int(size))
		g.tailBlock = block
	}
	offset, ok := block.Append(bytes)
	if !ok {
		block.Seal()
		size := g.cfg.DefaultBlockBytes
		if uint64(len(bytes)) > size {
			size = uint64(len(bytes))
		}
		block = messageblock.NewBlock(int(size))
		g.tailBlock = block
		offset, ok = block.Append(bytes)
		if !ok {
			g.teamsMu.Unlock()
			return nil, 0, 0, errors.Errorf("tlog: message of %d bytes exceeds block capacity", len(bytes))
		}
	}
	g.teamsMu.Unlock()

	idx := g.getOrCreateTeam(team)
	if err := idx.Append(version, block, offset, len(bytes)); err != nil {
		return nil, 0, 0, errors.WithStack(err)
	}
	atomic.AddUint64(&g.bytesInput, uint64(len(bytes)))
	return idx, offset, len(bytes), nil
}

func (g *GenerationData) BytesInput() uint64   { return atomic.LoadUint64(&g.bytesInput) }
func (g *GenerationData) BytesDurable() uint64 { return atomic.LoadUint64(&g.bytesDurable) }

// txsTeam is the reserved team that is always spilled by value regardless
// of the generation's configured SpillType (SPEC_FULL.md §4.3).
var txsTeam = types.StorageTeamID{0xff}

func (g *GenerationData) spillModeFor(team types.StorageTeamID) config.SpillType {
	if team == txsTeam {
		return config.SpillValue
	}
	return g.spillType
}

// spillTeam drains team's in-memory entries with Version <= upTo into the
// KeyValueStore, per SPEC_FULL.md §4.3 Spilling. It returns the number of
// bytes moved out of memory.
func (g *GenerationData) spillTeam(kv *engine.Store, team types.StorageTeamID, upTo types.Version) (uint64, error) {
	idx, ok := g.team(team)
	if !ok {
		return 0, nil
	}
	refs := idx.PeekFrom(0)
	var toSpill []messageblock.Ref
	for _, r := range refs {
		if r.Version <= upTo {
			toSpill = append(toSpill, r)
		}
	}
	messageblock.ReleaseRefs(refs)
	if len(toSpill) == 0 {
		return 0, nil
	}

	var wb engine.WriteBatch
	tag := types.TagForTeam(team)
	var spilledBytes uint64
	for _, r := range toSpill {
		switch g.spillModeFor(team) {
		case config.SpillReference:
			loc := encodeLocRange(r.Loc, int64(r.Length))
			wb.Set(engine.TagMsgRefKey(uint64(g.logID), [16]byte(tag), uint64(r.Version)), loc)
		default:
			wb.Set(engine.TagMsgKey(uint64(g.logID), [16]byte(tag), uint64(r.Version)), r.Bytes())
		}
		spilledBytes += uint64(r.Length)
	}
	if err := g.group.commitPersistent(&wb); err != nil {
		return 0, err
	}

	idx.PopFront(upTo)
	atomic.AddUint64(&g.bytesDurable, spilledBytes)
	return spilledBytes, nil
}

func encodeLocRange(start, length int64) []byte {
	b := make([]byte, 16)
	putInt64(b[0:8], start)
	putInt64(b[8:16], length)
	return b
}

func decodeLocRange(b []byte) (start, length int64) {
	return getInt64(b[0:8]), getInt64(b[8:16])
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 7; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
}

func getInt64(b []byte) int64 {
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return int64(u)
}

// needsSpill reports whether bytesInput has outpaced bytesDurable by more
// than spillThreshold (SPEC_FULL.md §4.3).
func (g *GenerationData) needsSpill() bool {
	in, durable := g.BytesInput(), g.BytesDurable()
	if in < durable {
		return false
	}
	return in-durable > g.cfg.SpillThresholdBytes
}

// ErrTeamNotFound aliases errs.ErrGroupNotFound. Peek does not return it:
// peeking a team this generation has never seen a commit for yields an
// empty reply.
var ErrTeamNotFound = errs.ErrGroupNotFound

func (g *GenerationData) knownCommittedVersionSnapshot() types.Version {
	g.kcMu.Lock()
	defer g.kcMu.Unlock()
	return g.knownCommittedVersion
}

func (g *GenerationData) setDurableKnownCommitted(v types.Version) {
	g.kcMu.Lock()
	defer g.kcMu.Unlock()
	if v > g.durableKnownCommittedVersion {
		g.durableKnownCommittedVersion = v
	}
}

func (g *GenerationData) durableKnownCommitted() types.Version {
	g.kcMu.Lock()
	defer g.kcMu.Unlock()
	return g.durableKnownCommittedVersion
}

func (g *GenerationData) raiseKnownCommitted(v types.Version) {
	g.kcMu.Lock()
	defer g.kcMu.Unlock()
	if v > g.knownCommittedVersion {
		g.knownCommittedVersion = v
	}
}

func (g *GenerationData) raiseMinKnownCommitted(v types.Version) {
	g.kcMu.Lock()
	defer g.kcMu.Unlock()
	if v > g.minKnownCommittedVersion {
		g.minKnownCommittedVersion = v
	}
}

// minRetainedLoc reports the smallest DiskQueue location still referenced
// by any team's front entry — the point before which the group's
// DiskQueue may safely reclaim bytes on this generation's behalf
// (SPEC_FULL.md §4.4 Cross-generation pop rule). any is false if every
// team is currently empty.
func (g *GenerationData) minRetainedLoc() (min int64, any bool) {
	g.teamsMu.Lock()
	teams := make([]*messageblock.TeamIndex, 0, len(g.teams))
	for _, idx := range g.teams {
		teams = append(teams, idx)
	}
	g.teamsMu.Unlock()

	for _, idx := range teams {
		front, ok := idx.Front()
		if !ok {
			continue
		}
		if !any || front.Loc < min {
			min, any = front.Loc, true
		}
	}
	return min, any
}

// allTeamsEmpty reports whether every team's in-memory deque is empty.
func (g *GenerationData) allTeamsEmpty() bool {
	g.teamsMu.Lock()
	teams := make([]*messageblock.TeamIndex, 0, len(g.teams))
	for _, idx := range g.teams {
		teams = append(teams, idx)
	}
	g.teamsMu.Unlock()

	for _, idx := range teams {
		if idx.Len() > 0 {
			return false
		}
	}
	return true
}
