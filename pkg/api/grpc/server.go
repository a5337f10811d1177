// Package grpcapi implements the calc.v1.Calculator gRPC service. Requests and
// responses are protobuf well-known types, so the service needs no generated
// code on either side.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/store"
)

// Server implements the Calculator gRPC service.
type Server struct {
	store  *store.Store
	logger *slog.Logger
	grpc   *grpc.Server
}

// New creates a new gRPC server recording into the given store.
func New(s *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		store:  s,
		logger: logger,
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logCalls))
	RegisterCalculatorServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves gRPC requests on an already bound listener.
func (s *Server) ServeListener(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// Evaluate computes the value of the expression in req.
func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	line := req.GetValue()
	v, err := expr.Eval(line)
	s.store.Record(line, v, err)
	if err != nil {
		return nil, statusFromError(err)
	}
	return wrapperspb.Double(v), nil
}

// Tokenize returns the tokens of the expression in req, each as a struct
// with "type", "value" and "pos" fields.
func (s *Server) Tokenize(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	tokens := expr.Tokenize(req.GetValue())
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(tokens))}
	for _, tok := range tokens {
		st, err := structpb.NewStruct(map[string]any{
			"type":  tok.Type.String(),
			"value": tok.Value,
			"pos":   tok.Pos,
		})
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		list.Values = append(list.Values, structpb.NewStructValue(st))
	}
	return list, nil
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}

// statusFromError maps evaluation failures to gRPC status codes.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, expr.ErrDivideByZero):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, expr.ErrUnbalancedParens), errors.Is(err, expr.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
