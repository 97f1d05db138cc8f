package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the DomainSet service. The
// service only exchanges well-known types, so no generated code is needed.
const ServiceName = "hostset.v1.DomainSet"

const (
	methodCheck  = "/" + ServiceName + "/Check"
	methodFind   = "/" + ServiceName + "/Find"
	methodExport = "/" + ServiceName + "/Export"
)

// DomainSetServer is the server API for the DomainSet service.
type DomainSetServer interface {
	// Check reports whether the host of a URL is covered.
	Check(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	// Find lists the entries at or below a suffix.
	Find(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	// Export lists every entry in sorted order.
	Export(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv DomainSetServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DomainSetServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Check", DomainSetServer.Check),
		unary("Find", DomainSetServer.Find),
		unary("Export", DomainSetServer.Export),
	},
	Metadata: "hostset/v1/domainset.proto",
}

func unary[Req, Resp any](name string, call func(DomainSetServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DomainSetServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DomainSetServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client is a thin typed client for the DomainSet service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Check(ctx context.Context, url string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodCheck, wrapperspb.String(url), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) Find(ctx context.Context, suffix string, opts ...grpc.CallOption) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, methodFind, wrapperspb.String(suffix), out, opts...); err != nil {
		return nil, err
	}
	return fromList(out), nil
}

func (c *Client) Export(ctx context.Context, opts ...grpc.CallOption) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, methodExport, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return fromList(out), nil
}

func toList(names []string) *structpb.ListValue {
	vals := make([]*structpb.Value, len(names))
	for i, n := range names {
		vals[i] = structpb.NewStringValue(n)
	}
	return &structpb.ListValue{Values: vals}
}

func fromList(l *structpb.ListValue) []string {
	out := make([]string, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		out = append(out, v.GetStringValue())
	}
	return out
}
