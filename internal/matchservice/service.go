// Package matchservice exposes environment matching over gRPC as the
// lisa.match.v1.Matcher service. Messages are google.protobuf.Struct values
// carrying the JSON form of the schema types.
package matchservice

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lisa-platform/lisa/internal/searchspace"
)

const ServiceName = "lisa.match.v1.Matcher"

// Verdict label values of lisa_match_requests_total.
const (
	verdictMatched    = "matched"
	verdictNotMatched = "not_matched"
	verdictInvalid    = "invalid"
	verdictError      = "error"
)

// MatcherServer is the server API for the Matcher service.
type MatcherServer interface {
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateMinCapability(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements MatcherServer on top of the schema package.
type Server struct {
	log      logr.Logger
	requests *prometheus.CounterVec
}

// NewServer returns a Server that counts requests on reg.
func NewServer(log logr.Logger, reg prometheus.Registerer) (*Server, error) {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lisa_match_requests_total",
			Help: "Number of Matcher requests by method and verdict.",
		},
		[]string{"method", "verdict"},
	)
	if err := reg.Register(requests); err != nil {
		return nil, err
	}
	return &Server{log: log, requests: requests}, nil
}

func (s *Server) Check(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const method = "Check"
	var req MatchRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, s.invalid(method, err)
	}
	result := req.Requirement.Check(req.Capability)
	return s.respond(method, MatchResponse{Result: result.Result(), Reasons: reasons(result)})
}

func (s *Server) GenerateMinCapability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const method = "GenerateMinCapability"
	var req MatchRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, s.invalid(method, err)
	}
	// Configuration errors are reported before the check, which would
	// otherwise reject a zero count as an unmatched capability.
	minCapability, err := req.Requirement.GenerateMinCapability(req.Capability)
	if errors.Is(err, searchspace.ErrConfiguration) {
		s.requests.WithLabelValues(method, verdictError).Inc()
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	if result := req.Requirement.Check(req.Capability); !result.Result() {
		return s.respond(method, MatchResponse{Result: false, Reasons: reasons(result)})
	}
	if err != nil {
		s.requests.WithLabelValues(method, verdictError).Inc()
		s.log.Error(err, "failed to generate min capability")
		return nil, status.Error(codes.Internal, err.Error())
	}
	minCapability.Name = req.Requirement.Name
	return s.respond(method, MatchResponse{Result: true, Reasons: []string{}, MinCapability: &minCapability})
}

func (s *Server) invalid(method string, err error) error {
	s.requests.WithLabelValues(method, verdictInvalid).Inc()
	s.log.V(1).Info("invalid request", "method", method, "error", err.Error())
	return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
}

func (s *Server) respond(method string, resp MatchResponse) (*structpb.Struct, error) {
	out, err := toStruct(resp)
	if err != nil {
		s.requests.WithLabelValues(method, verdictError).Inc()
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	verdict := verdictNotMatched
	if resp.Result {
		verdict = verdictMatched
	}
	s.requests.WithLabelValues(method, verdict).Inc()
	s.log.V(1).Info("handled request", "method", method, "verdict", verdict)
	return out, nil
}

func reasons(r searchspace.ResultReason) []string {
	out := r.Reasons()
	if out == nil {
		return []string{}
	}
	return out
}

// RegisterMatcherServer registers srv on s.
func RegisterMatcherServer(s grpc.ServiceRegistrar, srv MatcherServer) {
	s.RegisterService(&Matcher_ServiceDesc, srv)
}

// Matcher_ServiceDesc is the grpc.ServiceDesc for the Matcher service.
var Matcher_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Check", Handler: matcherCheckHandler},
		{MethodName: "GenerateMinCapability", Handler: matcherGenerateMinCapabilityHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lisa/match/v1/matcher.proto",
}

func matcherCheckHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatcherServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Check"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatcherServer).Check(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func matcherGenerateMinCapabilityHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatcherServer).GenerateMinCapability(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GenerateMinCapability"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatcherServer).GenerateMinCapability(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
