package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// TLogServer is the service a tlogd process exposes per TLog interface
// (spec.md §6 RPC endpoints), implemented by tlog.ServerData's grpc
// adapter.
type TLogServer interface {
	Commit(context.Context, *CommitRequest) (*CommitReply, error)
	PeekMessages(context.Context, *PeekRequest) (*PeekReply, error)
	PopMessages(context.Context, *PopRequest) (*PopReply, error)
	Lock(context.Context, *LockRequest) (*LockReply, error)
	GetQueuingMetrics(context.Context, *QueuingMetricsRequest) (*QueuingMetricsReply, error)
	InitializeTLog(context.Context, *InitializeTLogRequest) (*InitializeTLogReply, error)
	DisablePopRequest(context.Context, *DisablePopRequest) (*PopRequestAck, error)
	EnablePopRequest(context.Context, *EnablePopRequest) (*PopRequestAck, error)
	ConfirmRunning(context.Context, *ConfirmRunningRequest) (*Ack, error)
	WaitFailure(context.Context, *WaitFailureRequest) (*Ack, error)
	RecoveryFinished(context.Context, *RecoveryFinishedRequest) (*Ack, error)
	SnapRequest(context.Context, *SnapRequest) (*Ack, error)
}

// TLogClient is the client side of TLogServer.
type TLogClient interface {
	Commit(ctx context.Context, in *CommitRequest, opts ...grpc.CallOption) (*CommitReply, error)
	PeekMessages(ctx context.Context, in *PeekRequest, opts ...grpc.CallOption) (*PeekReply, error)
	PopMessages(ctx context.Context, in *PopRequest, opts ...grpc.CallOption) (*PopReply, error)
	Lock(ctx context.Context, in *LockRequest, opts ...grpc.CallOption) (*LockReply, error)
	GetQueuingMetrics(ctx context.Context, in *QueuingMetricsRequest, opts ...grpc.CallOption) (*QueuingMetricsReply, error)
	InitializeTLog(ctx context.Context, in *InitializeTLogRequest, opts ...grpc.CallOption) (*InitializeTLogReply, error)
	DisablePopRequest(ctx context.Context, in *DisablePopRequest, opts ...grpc.CallOption) (*PopRequestAck, error)
	EnablePopRequest(ctx context.Context, in *EnablePopRequest, opts ...grpc.CallOption) (*PopRequestAck, error)
	ConfirmRunning(ctx context.Context, in *ConfirmRunningRequest, opts ...grpc.CallOption) (*Ack, error)
	WaitFailure(ctx context.Context, in *WaitFailureRequest, opts ...grpc.CallOption) (*Ack, error)
	RecoveryFinished(ctx context.Context, in *RecoveryFinishedRequest, opts ...grpc.CallOption) (*Ack, error)
	SnapRequest(ctx context.Context, in *SnapRequest, opts ...grpc.CallOption) (*Ack, error)
}

type tLogClient struct {
	cc *grpc.ClientConn
}

// NewTLogClient wraps an established connection as a TLogClient.
func NewTLogClient(cc *grpc.ClientConn) TLogClient {
	return &tLogClient{cc: cc}
}

func (c *tLogClient) Commit(ctx context.Context, in *CommitRequest, opts ...grpc.CallOption) (*CommitReply, error) {
	out := new(CommitReply)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/Commit", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) PeekMessages(ctx context.Context, in *PeekRequest, opts ...grpc.CallOption) (*PeekReply, error) {
	out := new(PeekReply)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/PeekMessages", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) PopMessages(ctx context.Context, in *PopRequest, opts ...grpc.CallOption) (*PopReply, error) {
	out := new(PopReply)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/PopMessages", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) Lock(ctx context.Context, in *LockRequest, opts ...grpc.CallOption) (*LockReply, error) {
	out := new(LockReply)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/Lock", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) GetQueuingMetrics(ctx context.Context, in *QueuingMetricsRequest, opts ...grpc.CallOption) (*QueuingMetricsReply, error) {
	out := new(QueuingMetricsReply)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/GetQueuingMetrics", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) InitializeTLog(ctx context.Context, in *InitializeTLogRequest, opts ...grpc.CallOption) (*InitializeTLogReply, error) {
	out := new(InitializeTLogReply)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/InitializeTLog", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) DisablePopRequest(ctx context.Context, in *DisablePopRequest, opts ...grpc.CallOption) (*PopRequestAck, error) {
	out := new(PopRequestAck)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/DisablePopRequest", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) EnablePopRequest(ctx context.Context, in *EnablePopRequest, opts ...grpc.CallOption) (*PopRequestAck, error) {
	out := new(PopRequestAck)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/EnablePopRequest", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) ConfirmRunning(ctx context.Context, in *ConfirmRunningRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/ConfirmRunning", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) WaitFailure(ctx context.Context, in *WaitFailureRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/WaitFailure", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) RecoveryFinished(ctx context.Context, in *RecoveryFinishedRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/RecoveryFinished", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tLogClient) SnapRequest(ctx context.Context, in *SnapRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	if err := grpc.Invoke(ctx, "/tlogd.rpc.TLog/SnapRequest", in, out, c.cc, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _TLog_Commit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).Commit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/Commit"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).Commit(ctx, req.(*CommitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_PeekMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PeekRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).PeekMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/PeekMessages"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).PeekMessages(ctx, req.(*PeekRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_PopMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).PopMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/PopMessages"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).PopMessages(ctx, req.(*PopRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_Lock_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).Lock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/Lock"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).Lock(ctx, req.(*LockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_GetQueuingMetrics_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueuingMetricsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).GetQueuingMetrics(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/GetQueuingMetrics"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).GetQueuingMetrics(ctx, req.(*QueuingMetricsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_InitializeTLog_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(InitializeTLogRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).InitializeTLog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/InitializeTLog"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).InitializeTLog(ctx, req.(*InitializeTLogRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_DisablePopRequest_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DisablePopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).DisablePopRequest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/DisablePopRequest"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).DisablePopRequest(ctx, req.(*DisablePopRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_EnablePopRequest_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EnablePopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).EnablePopRequest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/EnablePopRequest"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).EnablePopRequest(ctx, req.(*EnablePopRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_ConfirmRunning_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ConfirmRunningRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).ConfirmRunning(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/ConfirmRunning"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).ConfirmRunning(ctx, req.(*ConfirmRunningRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_WaitFailure_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(WaitFailureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).WaitFailure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/WaitFailure"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).WaitFailure(ctx, req.(*WaitFailureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_RecoveryFinished_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RecoveryFinishedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).RecoveryFinished(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/RecoveryFinished"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).RecoveryFinished(ctx, req.(*RecoveryFinishedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TLog_SnapRequest_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SnapRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TLogServer).SnapRequest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tlogd.rpc.TLog/SnapRequest"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TLogServer).SnapRequest(ctx, req.(*SnapRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// _TLog_serviceDesc lists every endpoint from spec.md §6.
var _TLog_serviceDesc = grpc.ServiceDesc{
	ServiceName: "tlogd.rpc.TLog",
	HandlerType: (*TLogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Commit", Handler: _TLog_Commit_Handler},
		{MethodName: "PeekMessages", Handler: _TLog_PeekMessages_Handler},
		{MethodName: "PopMessages", Handler: _TLog_PopMessages_Handler},
		{MethodName: "Lock", Handler: _TLog_Lock_Handler},
		{MethodName: "GetQueuingMetrics", Handler: _TLog_GetQueuingMetrics_Handler},
		{MethodName: "InitializeTLog", Handler: _TLog_InitializeTLog_Handler},
		{MethodName: "DisablePopRequest", Handler: _TLog_DisablePopRequest_Handler},
		{MethodName: "EnablePopRequest", Handler: _TLog_EnablePopRequest_Handler},
		{MethodName: "ConfirmRunning", Handler: _TLog_ConfirmRunning_Handler},
		{MethodName: "WaitFailure", Handler: _TLog_WaitFailure_Handler},
		{MethodName: "RecoveryFinished", Handler: _TLog_RecoveryFinished_Handler},
		{MethodName: "SnapRequest", Handler: _TLog_SnapRequest_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tlogd/rpc/tlog.proto",
}

// RegisterTLogServer registers srv's handlers on s.
func RegisterTLogServer(s *grpc.Server, srv TLogServer) {
	s.RegisterService(&_TLog_serviceDesc, srv)
}
