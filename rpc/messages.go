// Package rpc declares the wire messages and grpc service for a tlogd
// process's TLog interface (spec.md §6 External interfaces). Messages are
// hand-written in the pre-APIv2 github.com/golang/protobuf style the
// teacher's proto-generated code uses: plain structs with `protobuf:"..."`
// field tags plus Reset/String/ProtoMessage, marshaled by that library's
// generic reflection-based Marshal/Unmarshal rather than per-message
// generated code. The FileID constants record the source format's
// per-message numeric `file_identifier` (spec.md §6 Wire types); the
// identifiers are not sent on the wire.
package rpc

import (
	fmt "fmt"

	proto "github.com/golang/protobuf/proto"
)

// FileIdentifier constants, one per request/reply message except the empty
// PopRequestAck and Ack. They are not encoded into the messages themselves:
// no message struct has a file_identifier field.
const (
	FileIDCommitRequest           = 58426693
	FileIDCommitReply             = 3568620
	FileIDPeekRequest             = 11226402
	FileIDPeekReply               = 11365689
	FileIDPopRequest              = 8500026
	FileIDPopReply                = 8500027
	FileIDLockRequest             = 8207289
	FileIDLockReply               = 8207290
	FileIDQueuingMetricsRequest   = 1795944
	FileIDQueuingMetricsReply     = 1795945
	FileIDInitializeTLogRequest   = 15604392
	FileIDInitializeTLogReply     = 15604393
	FileIDDisablePopRequest       = 4805359
	FileIDEnablePopRequest        = 4805360
	FileIDConfirmRunningRequest   = 9922920
	FileIDWaitFailureRequest      = 7991498
	FileIDRecoveryFinishedRequest = 2195892
	FileIDSnapRequest             = 22287849
)

// CommitRequest mirrors SPEC_FULL.md §4.5's wire message.
type CommitRequest struct {
	GroupId                  []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	SpanId                   uint64 `protobuf:"varint,2,opt,name=span_id,json=spanId,proto3" json:"span_id,omitempty"`
	StorageTeamId            []byte `protobuf:"bytes,3,opt,name=storage_team_id,json=storageTeamId,proto3" json:"storage_team_id,omitempty"`
	Messages                 []byte `protobuf:"bytes,4,opt,name=messages,proto3" json:"messages,omitempty"`
	PrevVersion              int64  `protobuf:"varint,5,opt,name=prev_version,json=prevVersion,proto3" json:"prev_version,omitempty"`
	Version                  int64  `protobuf:"varint,6,opt,name=version,proto3" json:"version,omitempty"`
	KnownCommittedVersion    int64  `protobuf:"varint,7,opt,name=known_committed_version,json=knownCommittedVersion,proto3" json:"known_committed_version,omitempty"`
	MinKnownCommittedVersion int64  `protobuf:"varint,8,opt,name=min_known_committed_version,json=minKnownCommittedVersion,proto3" json:"min_known_committed_version,omitempty"`
	DebugId                  string `protobuf:"bytes,9,opt,name=debug_id,json=debugId,proto3" json:"debug_id,omitempty"`
}

func (m *CommitRequest) Reset()         { *m = CommitRequest{} }
func (m *CommitRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CommitRequest) ProtoMessage()  {}

// CommitReply mirrors SPEC_FULL.md §4.5's reply.
type CommitReply struct {
	DurableKnownCommittedVersion int64 `protobuf:"varint,1,opt,name=durable_known_committed_version,json=durableKnownCommittedVersion,proto3" json:"durable_known_committed_version,omitempty"`
}

func (m *CommitReply) Reset()         { *m = CommitReply{} }
func (m *CommitReply) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CommitReply) ProtoMessage()  {}

// PeekRequest mirrors SPEC_FULL.md §4.3/§4.6.
type PeekRequest struct {
	GroupId         []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	StorageTeamId   []byte `protobuf:"bytes,2,opt,name=storage_team_id,json=storageTeamId,proto3" json:"storage_team_id,omitempty"`
	BeginVersion    int64  `protobuf:"varint,3,opt,name=begin_version,json=beginVersion,proto3" json:"begin_version,omitempty"`
	EndVersion      int64  `protobuf:"varint,4,opt,name=end_version,json=endVersion,proto3" json:"end_version,omitempty"`
	OnlySpilled     bool   `protobuf:"varint,5,opt,name=only_spilled,json=onlySpilled,proto3" json:"only_spilled,omitempty"`
	ReturnIfBlocked bool   `protobuf:"varint,6,opt,name=return_if_blocked,json=returnIfBlocked,proto3" json:"return_if_blocked,omitempty"`
	ClientId        uint64 `protobuf:"varint,7,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
	Sequence        uint64 `protobuf:"varint,8,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (m *PeekRequest) Reset()         { *m = PeekRequest{} }
func (m *PeekRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PeekRequest) ProtoMessage()  {}

// PeekReply mirrors TLogPeekReply from spec.md §6.
type PeekReply struct {
	Data                     []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
	End                      int64  `protobuf:"varint,2,opt,name=end,proto3" json:"end,omitempty"`
	Popped                   int64  `protobuf:"varint,3,opt,name=popped,proto3" json:"popped,omitempty"`
	MaxKnownVersion          int64  `protobuf:"varint,4,opt,name=max_known_version,json=maxKnownVersion,proto3" json:"max_known_version,omitempty"`
	MinKnownCommittedVersion int64  `protobuf:"varint,5,opt,name=min_known_committed_version,json=minKnownCommittedVersion,proto3" json:"min_known_committed_version,omitempty"`
	Begin                    int64  `protobuf:"varint,6,opt,name=begin,proto3" json:"begin,omitempty"`
	OnlySpilled              bool   `protobuf:"varint,7,opt,name=only_spilled,json=onlySpilled,proto3" json:"only_spilled,omitempty"`
}

func (m *PeekReply) Reset()         { *m = PeekReply{} }
func (m *PeekReply) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PeekReply) ProtoMessage()  {}

// PopRequest mirrors SPEC_FULL.md §4.6.
type PopRequest struct {
	GroupId                      []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	StorageTeamId                []byte `protobuf:"bytes,2,opt,name=storage_team_id,json=storageTeamId,proto3" json:"storage_team_id,omitempty"`
	Version                      int64  `protobuf:"varint,3,opt,name=version,proto3" json:"version,omitempty"`
	DurableKnownCommittedVersion int64  `protobuf:"varint,4,opt,name=durable_known_committed_version,json=durableKnownCommittedVersion,proto3" json:"durable_known_committed_version,omitempty"`
}

func (m *PopRequest) Reset()         { *m = PopRequest{} }
func (m *PopRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PopRequest) ProtoMessage()  {}

// PopReply is empty; Pop's contract is success-or-error.
type PopReply struct{}

func (m *PopReply) Reset()         { *m = PopReply{} }
func (m *PopReply) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PopReply) ProtoMessage()  {}

// LockRequest names which generation's frontier to snapshot.
type LockRequest struct {
	GroupId []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	LogId   uint64 `protobuf:"varint,2,opt,name=log_id,json=logId,proto3" json:"log_id,omitempty"`
}

func (m *LockRequest) Reset()         { *m = LockRequest{} }
func (m *LockRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *LockRequest) ProtoMessage()  {}

// LockReply mirrors TLogLockResult from spec.md §6.
type LockReply struct {
	End                   int64 `protobuf:"varint,1,opt,name=end,proto3" json:"end,omitempty"`
	KnownCommittedVersion int64 `protobuf:"varint,2,opt,name=known_committed_version,json=knownCommittedVersion,proto3" json:"known_committed_version,omitempty"`
}

func (m *LockReply) Reset()         { *m = LockReply{} }
func (m *LockReply) String() string { return fmt.Sprintf("%+v", *m) }
func (m *LockReply) ProtoMessage()  {}

// QueuingMetricsRequest names which group to sample.
type QueuingMetricsRequest struct {
	GroupId []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
}

func (m *QueuingMetricsRequest) Reset()         { *m = QueuingMetricsRequest{} }
func (m *QueuingMetricsRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *QueuingMetricsRequest) ProtoMessage()  {}

// QueuingMetricsReply mirrors TLogQueuingMetricsReply from spec.md §6.
type QueuingMetricsReply struct {
	LocalTime    int64  `protobuf:"varint,1,opt,name=local_time,json=localTime,proto3" json:"local_time,omitempty"`
	InstanceId   uint64 `protobuf:"varint,2,opt,name=instance_id,json=instanceId,proto3" json:"instance_id,omitempty"`
	BytesDurable uint64 `protobuf:"varint,3,opt,name=bytes_durable,json=bytesDurable,proto3" json:"bytes_durable,omitempty"`
	BytesInput   uint64 `protobuf:"varint,4,opt,name=bytes_input,json=bytesInput,proto3" json:"bytes_input,omitempty"`
	StorageBytes uint64 `protobuf:"varint,5,opt,name=storage_bytes,json=storageBytes,proto3" json:"storage_bytes,omitempty"`
	V            int64  `protobuf:"varint,6,opt,name=v,proto3" json:"v,omitempty"`
}

func (m *QueuingMetricsReply) Reset()         { *m = QueuingMetricsReply{} }
func (m *QueuingMetricsReply) String() string { return fmt.Sprintf("%+v", *m) }
func (m *QueuingMetricsReply) ProtoMessage()  {}

// InitializeTLogRequest mirrors SPEC_FULL.md §6 EXPANDED's recruitment
// message.
type InitializeTLogRequest struct {
	RecruitmentId string   `protobuf:"bytes,1,opt,name=recruitment_id,json=recruitmentId,proto3" json:"recruitment_id,omitempty"`
	Epoch         int64    `protobuf:"varint,2,opt,name=epoch,proto3" json:"epoch,omitempty"`
	TlogGroups    [][]byte `protobuf:"bytes,3,rep,name=tlog_groups,json=tlogGroups,proto3" json:"tlog_groups,omitempty"`
	IsPrimary     bool     `protobuf:"varint,4,opt,name=is_primary,json=isPrimary,proto3" json:"is_primary,omitempty"`
}

func (m *InitializeTLogRequest) Reset()         { *m = InitializeTLogRequest{} }
func (m *InitializeTLogRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *InitializeTLogRequest) ProtoMessage()  {}

// InitializeTLogReply returns the LogIDs minted for the requested groups,
// in the same order as the request's tlog_groups.
type InitializeTLogReply struct {
	LogIds []uint64 `protobuf:"varint,1,rep,packed,name=log_ids,json=logIds,proto3" json:"log_ids,omitempty"`
}

func (m *InitializeTLogReply) Reset()         { *m = InitializeTLogReply{} }
func (m *InitializeTLogReply) String() string { return fmt.Sprintf("%+v", *m) }
func (m *InitializeTLogReply) ProtoMessage()  {}

// DisablePopRequest/EnablePopRequest implement the pull-model backup
// endpoints from spec.md §6.
type DisablePopRequest struct {
	GroupId []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
}

func (m *DisablePopRequest) Reset()         { *m = DisablePopRequest{} }
func (m *DisablePopRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *DisablePopRequest) ProtoMessage()  {}

type EnablePopRequest struct {
	GroupId []byte `protobuf:"bytes,1,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
}

func (m *EnablePopRequest) Reset()         { *m = EnablePopRequest{} }
func (m *EnablePopRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *EnablePopRequest) ProtoMessage()  {}

// PopRequestAck acknowledges both DisablePopRequest and EnablePopRequest.
type PopRequestAck struct{}

func (m *PopRequestAck) Reset()         { *m = PopRequestAck{} }
func (m *PopRequestAck) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PopRequestAck) ProtoMessage()  {}

// ConfirmRunningRequest/WaitFailureRequest/RecoveryFinishedRequest/
// SnapRequest are liveness/recovery-coordination endpoints listed in
// spec.md §6 whose payload is opaque to a single TLog process — it only
// needs to acknowledge them.
type ConfirmRunningRequest struct {
	DebugId string `protobuf:"bytes,1,opt,name=debug_id,json=debugId,proto3" json:"debug_id,omitempty"`
}

func (m *ConfirmRunningRequest) Reset()         { *m = ConfirmRunningRequest{} }
func (m *ConfirmRunningRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *ConfirmRunningRequest) ProtoMessage()  {}

type WaitFailureRequest struct{}

func (m *WaitFailureRequest) Reset()         { *m = WaitFailureRequest{} }
func (m *WaitFailureRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *WaitFailureRequest) ProtoMessage()  {}

type RecoveryFinishedRequest struct {
	KnownCommittedVersion int64 `protobuf:"varint,1,opt,name=known_committed_version,json=knownCommittedVersion,proto3" json:"known_committed_version,omitempty"`
}

func (m *RecoveryFinishedRequest) Reset()         { *m = RecoveryFinishedRequest{} }
func (m *RecoveryFinishedRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *RecoveryFinishedRequest) ProtoMessage()  {}

type SnapRequest struct {
	SnapPayload string `protobuf:"bytes,1,opt,name=snap_payload,json=snapPayload,proto3" json:"snap_payload,omitempty"`
}

func (m *SnapRequest) Reset()         { *m = SnapRequest{} }
func (m *SnapRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *SnapRequest) ProtoMessage()  {}

// Ack is the shared empty reply for the liveness/recovery endpoints above.
type Ack struct{}

func (m *Ack) Reset()         { *m = Ack{} }
func (m *Ack) String() string { return fmt.Sprintf("%+v", *m) }
func (m *Ack) ProtoMessage()  {}

func init() {
	proto.RegisterType((*CommitRequest)(nil), "tlogd.rpc.CommitRequest")
	proto.RegisterType((*CommitReply)(nil), "tlogd.rpc.CommitReply")
	proto.RegisterType((*PeekRequest)(nil), "tlogd.rpc.PeekRequest")
	proto.RegisterType((*PeekReply)(nil), "tlogd.rpc.PeekReply")
	proto.RegisterType((*PopRequest)(nil), "tlogd.rpc.PopRequest")
	proto.RegisterType((*PopReply)(nil), "tlogd.rpc.PopReply")
	proto.RegisterType((*LockRequest)(nil), "tlogd.rpc.LockRequest")
	proto.RegisterType((*LockReply)(nil), "tlogd.rpc.LockReply")
	proto.RegisterType((*QueuingMetricsRequest)(nil), "tlogd.rpc.QueuingMetricsRequest")
	proto.RegisterType((*QueuingMetricsReply)(nil), "tlogd.rpc.QueuingMetricsReply")
	proto.RegisterType((*InitializeTLogRequest)(nil), "tlogd.rpc.InitializeTLogRequest")
	proto.RegisterType((*InitializeTLogReply)(nil), "tlogd.rpc.InitializeTLogReply")
	proto.RegisterType((*DisablePopRequest)(nil), "tlogd.rpc.DisablePopRequest")
	proto.RegisterType((*EnablePopRequest)(nil), "tlogd.rpc.EnablePopRequest")
	proto.RegisterType((*PopRequestAck)(nil), "tlogd.rpc.PopRequestAck")
	proto.RegisterType((*ConfirmRunningRequest)(nil), "tlogd.rpc.ConfirmRunningRequest")
	proto.RegisterType((*WaitFailureRequest)(nil), "tlogd.rpc.WaitFailureRequest")
	proto.RegisterType((*RecoveryFinishedRequest)(nil), "tlogd.rpc.RecoveryFinishedRequest")
	proto.RegisterType((*SnapRequest)(nil), "tlogd.rpc.SnapRequest")
	proto.RegisterType((*Ack)(nil), "tlogd.rpc.Ack")
}
