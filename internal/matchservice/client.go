package matchservice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lisa-platform/lisa/internal/schema"
)

// Client calls the Matcher service with schema types.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Check(ctx context.Context, requirement, capability schema.EnvironmentSpace, opts ...grpc.CallOption) (MatchResponse, error) {
	return c.call(ctx, "Check", requirement, capability, opts...)
}

func (c *Client) GenerateMinCapability(ctx context.Context, requirement, capability schema.EnvironmentSpace, opts ...grpc.CallOption) (MatchResponse, error) {
	return c.call(ctx, "GenerateMinCapability", requirement, capability, opts...)
}

func (c *Client) call(ctx context.Context, method string, requirement, capability schema.EnvironmentSpace, opts ...grpc.CallOption) (MatchResponse, error) {
	in, err := toStruct(MatchRequest{Requirement: requirement, Capability: capability})
	if err != nil {
		return MatchResponse{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return MatchResponse{}, err
	}
	var resp MatchResponse
	if err := fromStruct(out, &resp); err != nil {
		return MatchResponse{}, err
	}
	return resp, nil
}
