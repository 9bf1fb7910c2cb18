package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/lisa-platform/lisa/internal/matchservice"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

func main() {
	var target string
	var cores int
	flag.StringVar(&target, "target", "127.0.0.1:50051", "gRPC server address")
	flag.IntVar(&cores, "cores", 4, "minimum core count to request")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Errorf("dial %s: %w", target, err))
	}
	defer conn.Close()

	c := matchservice.NewClient(conn)

	// Keeping the request minimal for a quick smoke test.
	requirement := schema.NewEnvironmentSpace(schema.NodeSpace{
		NodeCount: searchspace.Exact(1),
		CoreCount: searchspace.AtLeast(cores),
	})
	capability := schema.NewEnvironmentSpace(schema.DefaultCapability())

	resp, err := c.GenerateMinCapability(ctx, requirement, capability)
	if err != nil {
		fmt.Printf("GenerateMinCapability error: %v\n", err)
		return
	}
	if !resp.Result {
		fmt.Printf("GenerateMinCapability not matched: %v\n", resp.Reasons)
		return
	}
	fmt.Printf("GenerateMinCapability ok: %s\n", resp.MinCapability)
}
