package tlog

import "github.com/flowlog/tlogd/types"

// GenState is a generation's position in the lifecycle from SPEC_FULL.md
// §4.7: Init -> Initialized -> Active -> Stopped -> Drained -> Removed.
type GenState int32

const (
	GenInit GenState = iota
	GenInitialized
	GenActive
	GenStopped
	GenDrained
	GenRemoved
)

func (s GenState) String() string {
	switch s {
	case GenInit:
		return "init"
	case GenInitialized:
		return "initialized"
	case GenActive:
		return "active"
	case GenStopped:
		return "stopped"
	case GenDrained:
		return "drained"
	case GenRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// CommitRequest mirrors the wire message from SPEC_FULL.md §4.5, decoded
// into Go types before reaching GenerationData.Commit. GroupID is supplied
// by the caller (a commit proxy, out of scope) which already knows the
// team-to-group assignment from cluster configuration; ServerData only
// dispatches by GroupID to the right GroupData, then to its active
// generation.
type CommitRequest struct {
	GroupID                  types.TLogGroupID
	SpanID                   uint64
	StorageTeamID            types.StorageTeamID
	Messages                 []byte
	PrevVersion              types.Version
	Version                  types.Version
	KnownCommittedVersion    types.Version
	MinKnownCommittedVersion types.Version
	DebugID                  string
}

// CommitReply is the durableKnownCommittedVersion returned once a commit's
// version has reached queueCommittedVersion (SPEC_FULL.md §4.5 step 7).
type CommitReply struct {
	DurableKnownCommittedVersion types.Version
}

// PeekRequest mirrors SPEC_FULL.md §4.3/§4.6.
type PeekRequest struct {
	GroupID         types.TLogGroupID
	StorageTeamID   types.StorageTeamID
	BeginVersion    types.Version
	EndVersion      types.Version // 0 means unbounded
	OnlySpilled     bool
	ReturnIfBlocked bool
	ClientID        uint64
	Sequence        uint64
}

// PeekReply mirrors TLogPeekReply from SPEC_FULL.md §6.
type PeekReply struct {
	Data                     []byte
	End                      types.Version
	Popped                   types.Version
	MaxKnownVersion          types.Version
	MinKnownCommittedVersion types.Version
	Begin                    types.Version
	OnlySpilled              bool
}

// PopRequest mirrors SPEC_FULL.md §4.6.
type PopRequest struct {
	GroupID                      types.TLogGroupID
	StorageTeamID                types.StorageTeamID
	Version                      types.Version
	DurableKnownCommittedVersion types.Version
}

// QueueEntry is one commit's payload as it's framed into the FramedQueue
// (SPEC_FULL.md §3).
type QueueEntry struct {
	LogID                 types.LogID
	StorageTeamID         types.StorageTeamID
	Version               types.Version
	KnownCommittedVersion types.Version
	Messages              []byte
}

// QueuingMetrics is the snapshot returned by getQueuingMetrics
// (SPEC_FULL.md §6, §2 item 13).
type QueuingMetrics struct {
	LocalTime    int64
	InstanceID   uint64
	BytesDurable uint64
	BytesInput   uint64
	StorageBytes uint64
	V            types.Version
}
