package grpcapi

import (
	"context"
	"math"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/calc/pkg/store"
)

func startTestServer(t *testing.T) (string, *store.Store, func()) {
	t.Helper()
	s := store.New(0)
	srv := New(s, nil)

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go srv.grpc.Serve(lis)

	return lis.Addr().String(), s, func() {
		srv.grpc.Stop()
	}
}

func dial(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	return conn
}

func TestEvaluate(t *testing.T) {
	addr, s, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	client := NewClient(conn)
	ctx := context.Background()

	v, err := client.Evaluate(ctx, "(2+3)*4")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	v, err = client.Evaluate(ctx, "10^400")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	assert.Len(t, s.List(), 2)
}

func TestEvaluateErrorCodes(t *testing.T) {
	addr, s, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	client := NewClient(conn)
	ctx := context.Background()

	tests := []struct {
		expression string
		code       codes.Code
		message    string
	}{
		{"5/0", codes.OutOfRange, "Computational Error: Divide by zero"},
		{"(1+2", codes.InvalidArgument, "Syntax Error: Parentheses are unbalanced"},
		{"+", codes.InvalidArgument, "Syntax Error: Invalid input"},
		{"", codes.InvalidArgument, "Syntax Error: Invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			_, err := client.Evaluate(ctx, tt.expression)
			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.message, st.Message())
		})
	}

	assert.Equal(t, len(tests), s.Stats().Failed)
}

func TestTokenize(t *testing.T) {
	addr, _, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	list, err := NewClient(conn).Tokenize(context.Background(), "1 + (2)")
	require.NoError(t, err)
	require.Len(t, list.GetValues(), 5)

	first := list.GetValues()[0].GetStructValue().AsMap()
	assert.Equal(t, "NUMBER", first["type"])
	assert.Equal(t, "1", first["value"])
	assert.Equal(t, 0.0, first["pos"])

	third := list.GetValues()[2].GetStructValue().AsMap()
	assert.Equal(t, "LPAREN", third["type"])
	assert.Equal(t, 4.0, third["pos"])
}

func TestUnknownMethod(t *testing.T) {
	addr, _, cleanup := startTestServer(t)
	defer cleanup()

	conn := dial(t, addr)
	defer conn.Close()

	err := conn.Invoke(context.Background(), "/"+ServiceName+"/Differentiate",
		wrapperspb.String("x"), new(wrapperspb.DoubleValue))
	require.Error(t, err)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
