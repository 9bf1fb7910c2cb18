package matchservice

import (
	"context"
	"net"
	"testing"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

func node(cores, memory int) schema.NodeSpace {
	return schema.NodeSpace{
		NodeCount: searchspace.Exact(1),
		CoreCount: searchspace.Exact(cores),
		MemoryMB:  searchspace.Exact(memory),
		NICCount:  searchspace.Exact(1),
	}
}

type harness struct {
	client *Client
	conn   *grpc.ClientConn
	server *Server
}

func startServer(t *testing.T) harness {
	t.Helper()

	srv, err := NewServer(logr.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterMatcherServer(gs, srv)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return harness{client: NewClient(conn), conn: conn, server: srv}
}

func TestMatcher_Check(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	requirement := schema.NewEnvironmentSpace(node(2, 1024))
	resp, err := h.client.Check(ctx, requirement, schema.NewEnvironmentSpace(node(4, 4096)))
	require.NoError(t, err)
	assert.True(t, resp.Result)
	assert.Empty(t, resp.Reasons)
	assert.Nil(t, resp.MinCapability)

	resp, err = h.client.Check(ctx, requirement, schema.NewEnvironmentSpace(node(1, 4096)))
	require.NoError(t, err)
	assert.False(t, resp.Result)
	assert.Equal(t, []string{"0.core_count: capability 1 must be more than requirement 2"}, resp.Reasons)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.server.requests.WithLabelValues("Check", verdictMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.server.requests.WithLabelValues("Check", verdictNotMatched)))
}

func TestMatcher_GenerateMinCapability(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	requirement := schema.NewEnvironmentSpace(schema.NodeSpace{
		NodeCount: searchspace.Exact(1),
		CoreCount: searchspace.AtLeast(4),
		Features:  schema.MustAllowedFeatures(schema.NewFeature(schema.FeatureRDMA)),
	})
	requirement.Name = "perf"
	capability := schema.NewEnvironmentSpace(schema.DefaultCapability())

	resp, err := h.client.GenerateMinCapability(ctx, requirement, capability)
	require.NoError(t, err)
	require.True(t, resp.Result, "reasons: %v", resp.Reasons)
	require.NotNil(t, resp.MinCapability)
	assert.Equal(t, "perf", resp.MinCapability.Name)
	require.Len(t, resp.MinCapability.Nodes, 1)
	got := resp.MinCapability.Nodes[0]
	assert.True(t, searchspace.AtLeast(4).Equal(got.CoreCount))
	assert.True(t, searchspace.Exact(0).Equal(got.GPUCount) || searchspace.AtLeast(0).Equal(got.GPUCount))
	assert.Equal(t, []string{schema.FeatureRDMA}, got.Features.Names())

	// A failing check is a verdict, not an error.
	resp, err = h.client.GenerateMinCapability(ctx, schema.NewEnvironmentSpace(node(64, 512)), capability)
	require.NoError(t, err)
	assert.False(t, resp.Result)
	assert.Nil(t, resp.MinCapability)
}

func TestMatcher_ConfigurationErrorIsFailedPrecondition(t *testing.T) {
	h := startServer(t)

	capability := schema.DefaultCapability()
	capability.CoreCount = searchspace.Exact(0)
	_, err := h.client.GenerateMinCapability(context.Background(),
		schema.NewEnvironmentSpace(schema.NodeSpace{NodeCount: searchspace.Exact(1)}),
		schema.NewEnvironmentSpace(capability),
	)
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "core_count cannot be zero")
}

func TestMatcher_MalformedPayloadIsInvalidArgument(t *testing.T) {
	h := startServer(t)

	in, err := structpb.NewStruct(map[string]any{
		"requirement": map[string]any{"nodes": "not-a-list"},
	})
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = h.conn.Invoke(context.Background(), "/"+ServiceName+"/Check", in, out)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	in, err = structpb.NewStruct(map[string]any{
		"capability": map[string]any{"nodes": []any{map[string]any{"coreCount": -1}}},
	})
	require.NoError(t, err)
	err = h.conn.Invoke(context.Background(), "/"+ServiceName+"/GenerateMinCapability", in, out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(h.server.requests.WithLabelValues("Check", verdictInvalid)))
}

func TestMatcher_HealthService(t *testing.T) {
	h := startServer(t)

	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestNewServer_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewServer(logr.Discard(), reg)
	require.NoError(t, err)
	_, err = NewServer(logr.Discard(), reg)
	assert.Error(t, err)
}
