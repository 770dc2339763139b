package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "idpay.v1.IDPayService"

// IDPayServiceServer is the internal gRPC API. Messages are protobuf well-known
// types so the service needs no generated code.
type IDPayServiceServer interface {
	Health(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CreatePayment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
}

var IDPayServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*IDPayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Health", Handler: healthHandler},
		{MethodName: "CreatePayment", Handler: createPaymentHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "idpay/v1/idpay.proto",
}

func RegisterIDPayServiceServer(s grpc.ServiceRegistrar, srv IDPayServiceServer) {
	s.RegisterService(&IDPayServiceDesc, srv)
}

func healthHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDPayServiceServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Health"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IDPayServiceServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func createPaymentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDPayServiceServer).CreatePayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CreatePayment"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IDPayServiceServer).CreatePayment(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDPayServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetOrder"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IDPayServiceServer).GetOrder(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// IDPayServiceClient calls the internal API; used by other services and the e2e suite.
type IDPayServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIDPayServiceClient(cc grpc.ClientConnInterface) *IDPayServiceClient {
	return &IDPayServiceClient{cc: cc}
}

func (c *IDPayServiceClient) Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Health", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IDPayServiceClient) CreatePayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/CreatePayment", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IDPayServiceClient) GetOrder(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
