package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName    = "calc.v1.Calculator"
	EvaluateMethod = "/" + ServiceName + "/Evaluate"
	TokenizeMethod = "/" + ServiceName + "/Tokenize"
)

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Evaluate(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error)
	Tokenize(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Tokenize", Handler: tokenizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calc/v1/calculator.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func tokenizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Tokenize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Tokenize(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the Calculator service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate sends expression to the server and returns its value.
func (c *Client) Evaluate(ctx context.Context, expression string, opts ...grpc.CallOption) (float64, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, EvaluateMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// Tokenize returns the server's tokenization of expression.
func (c *Client) Tokenize(ctx context.Context, expression string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, TokenizeMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
