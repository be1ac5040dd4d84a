package rpc

import (
	"context"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/cluster"
	"github.com/flowlog/tlogd/tlog"
	"github.com/flowlog/tlogd/types"
)

// Adapter implements TLogServer by converting wire messages to and from
// tlog.ServerData's Go-native request/reply types (spec.md §6's messages
// carry byte-slice ids; tlog's domain types use fixed-size arrays).
type Adapter struct {
	server *tlog.ServerData
}

// NewAdapter wraps server as a grpc-servable TLogServer.
func NewAdapter(server *tlog.ServerData) *Adapter {
	return &Adapter{server: server}
}

func toGroupID(b []byte) (types.TLogGroupID, error) {
	var id types.TLogGroupID
	if len(b) != len(id) {
		return id, errors.Errorf("rpc: group_id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func toTeamID(b []byte) (types.StorageTeamID, error) {
	var id types.StorageTeamID
	if len(b) != len(id) {
		return id, errors.Errorf("rpc: storage_team_id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (a *Adapter) Commit(ctx context.Context, in *CommitRequest) (*CommitReply, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	teamID, err := toTeamID(in.StorageTeamId)
	if err != nil {
		return nil, err
	}
	reply, err := a.server.Commit(ctx, &tlog.CommitRequest{
		GroupID:                  groupID,
		SpanID:                   in.SpanId,
		StorageTeamID:            teamID,
		Messages:                 in.Messages,
		PrevVersion:              types.Version(in.PrevVersion),
		Version:                  types.Version(in.Version),
		KnownCommittedVersion:    types.Version(in.KnownCommittedVersion),
		MinKnownCommittedVersion: types.Version(in.MinKnownCommittedVersion),
		DebugID:                  in.DebugId,
	})
	if err != nil {
		return nil, err
	}
	return &CommitReply{DurableKnownCommittedVersion: int64(reply.DurableKnownCommittedVersion)}, nil
}

func (a *Adapter) PeekMessages(ctx context.Context, in *PeekRequest) (*PeekReply, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	teamID, err := toTeamID(in.StorageTeamId)
	if err != nil {
		return nil, err
	}
	reply, err := a.server.Peek(ctx, &tlog.PeekRequest{
		GroupID:         groupID,
		StorageTeamID:   teamID,
		BeginVersion:    types.Version(in.BeginVersion),
		EndVersion:      types.Version(in.EndVersion),
		OnlySpilled:     in.OnlySpilled,
		ReturnIfBlocked: in.ReturnIfBlocked,
		ClientID:        in.ClientId,
		Sequence:        in.Sequence,
	})
	if err != nil {
		return nil, err
	}
	return &PeekReply{
		Data:                     reply.Data,
		End:                      int64(reply.End),
		Popped:                   int64(reply.Popped),
		MaxKnownVersion:          int64(reply.MaxKnownVersion),
		MinKnownCommittedVersion: int64(reply.MinKnownCommittedVersion),
		Begin:                    int64(reply.Begin),
		OnlySpilled:              reply.OnlySpilled,
	}, nil
}

func (a *Adapter) PopMessages(ctx context.Context, in *PopRequest) (*PopReply, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	teamID, err := toTeamID(in.StorageTeamId)
	if err != nil {
		return nil, err
	}
	if err := a.server.Pop(&tlog.PopRequest{
		GroupID:                      groupID,
		StorageTeamID:                teamID,
		Version:                      types.Version(in.Version),
		DurableKnownCommittedVersion: types.Version(in.DurableKnownCommittedVersion),
	}); err != nil {
		return nil, err
	}
	return &PopReply{}, nil
}

func (a *Adapter) Lock(ctx context.Context, in *LockRequest) (*LockReply, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	result, err := a.server.Lock(groupID, types.LogID(in.LogId))
	if err != nil {
		return nil, err
	}
	return &LockReply{End: int64(result.End), KnownCommittedVersion: int64(result.KnownCommittedVersion)}, nil
}

func (a *Adapter) GetQueuingMetrics(ctx context.Context, in *QueuingMetricsRequest) (*QueuingMetricsReply, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	m, err := a.server.GetQueuingMetrics(groupID)
	if err != nil {
		return nil, err
	}
	return &QueuingMetricsReply{
		LocalTime:    m.LocalTime,
		InstanceId:   m.InstanceID,
		BytesDurable: m.BytesDurable,
		BytesInput:   m.BytesInput,
		StorageBytes: m.StorageBytes,
		V:            int64(m.V),
	}, nil
}

func (a *Adapter) InitializeTLog(ctx context.Context, in *InitializeTLogRequest) (*InitializeTLogReply, error) {
	groups := make([]types.TLogGroupID, 0, len(in.TlogGroups))
	for _, g := range in.TlogGroups {
		id, err := toGroupID(g)
		if err != nil {
			return nil, err
		}
		groups = append(groups, id)
	}
	logIDs, err := a.server.InitializeTLog(ctx, &cluster.RecruitmentRequest{
		RecruitmentID: in.RecruitmentId,
		Epoch:         types.Epoch(in.Epoch),
		TLogGroups:    groups,
		IsPrimary:     in.IsPrimary,
	})
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(logIDs))
	for i, id := range logIDs {
		out[i] = uint64(id)
	}
	return &InitializeTLogReply{LogIds: out}, nil
}

func (a *Adapter) DisablePopRequest(ctx context.Context, in *DisablePopRequest) (*PopRequestAck, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	if err := a.server.DisablePopRequest(groupID); err != nil {
		return nil, err
	}
	return &PopRequestAck{}, nil
}

func (a *Adapter) EnablePopRequest(ctx context.Context, in *EnablePopRequest) (*PopRequestAck, error) {
	groupID, err := toGroupID(in.GroupId)
	if err != nil {
		return nil, err
	}
	if err := a.server.EnablePopRequest(groupID); err != nil {
		return nil, err
	}
	return &PopRequestAck{}, nil
}

// ConfirmRunning/WaitFailure/RecoveryFinished/SnapRequest are
// liveness/recovery-coordination endpoints (spec.md §6) whose substantive
// handling belongs to the out-of-scope recovery coordinator; a TLog
// process only needs to acknowledge them.
func (a *Adapter) ConfirmRunning(ctx context.Context, in *ConfirmRunningRequest) (*Ack, error) {
	return &Ack{}, nil
}

func (a *Adapter) WaitFailure(ctx context.Context, in *WaitFailureRequest) (*Ack, error) {
	return &Ack{}, nil
}

func (a *Adapter) RecoveryFinished(ctx context.Context, in *RecoveryFinishedRequest) (*Ack, error) {
	return &Ack{}, nil
}

func (a *Adapter) SnapRequest(ctx context.Context, in *SnapRequest) (*Ack, error) {
	return &Ack{}, nil
}
