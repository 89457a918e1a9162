// Package boardpb holds the gRPC contract of the board service. Messages are
// protobuf well-known types, so there is no generated code: the service
// descriptor and client below are what protoc-gen-go-grpc would emit for
//
//	service BoardService {
//	  rpc CreateBoard(google.protobuf.Struct) returns (google.protobuf.StringValue);
//	  rpc Move(google.protobuf.Struct) returns (google.protobuf.BoolValue);
//	  rpc Watch(google.protobuf.StringValue) returns (stream google.protobuf.Struct);
//	  rpc CloseBoard(google.protobuf.StringValue) returns (google.protobuf.Empty);
//	}
package boardpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "blockfall.BoardService"

	CreateBoardFullMethodName = "/" + ServiceName + "/CreateBoard"
	MoveFullMethodName        = "/" + ServiceName + "/Move"
	WatchFullMethodName       = "/" + ServiceName + "/Watch"
	CloseBoardFullMethodName  = "/" + ServiceName + "/CloseBoard"
)

type BoardServiceServer interface {
	CreateBoard(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	Move(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
	CloseBoard(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// UnimplementedBoardServiceServer can be embedded for forward compatibility.
type UnimplementedBoardServiceServer struct{}

func (UnimplementedBoardServiceServer) CreateBoard(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateBoard not implemented")
}

func (UnimplementedBoardServiceServer) Move(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Move not implemented")
}

func (UnimplementedBoardServiceServer) Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method Watch not implemented")
}

func (UnimplementedBoardServiceServer) CloseBoard(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CloseBoard not implemented")
}

func RegisterBoardServiceServer(s grpc.ServiceRegistrar, srv BoardServiceServer) {
	s.RegisterService(&BoardService_ServiceDesc, srv)
}

func _BoardService_CreateBoard_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServiceServer).CreateBoard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateBoardFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServiceServer).CreateBoard(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _BoardService_Move_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServiceServer).Move(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MoveFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServiceServer).Move(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _BoardService_Watch_Handler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BoardServiceServer).Watch(in, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

func _BoardService_CloseBoard_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServiceServer).CloseBoard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CloseBoardFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServiceServer).CloseBoard(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var BoardService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateBoard", Handler: _BoardService_CreateBoard_Handler},
		{MethodName: "Move", Handler: _BoardService_Move_Handler},
		{MethodName: "CloseBoard", Handler: _BoardService_CloseBoard_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: _BoardService_Watch_Handler, ServerStreams: true},
	},
	Metadata: "blockfall/board.proto",
}

type BoardServiceClient interface {
	CreateBoard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Move(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
	CloseBoard(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type boardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBoardServiceClient(cc grpc.ClientConnInterface) BoardServiceClient {
	return &boardServiceClient{cc}
}

func (c *boardServiceClient) CreateBoard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CreateBoardFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *boardServiceClient) Move(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, MoveFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *boardServiceClient) Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &BoardService_ServiceDesc.Streams[0], WatchFullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *boardServiceClient) CloseBoard(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, CloseBoardFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
