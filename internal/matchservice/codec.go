package matchservice

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lisa-platform/lisa/internal/schema"
)

// MatchRequest is the payload of both Matcher methods.
type MatchRequest struct {
	Requirement schema.EnvironmentSpace `json:"requirement"`
	Capability  schema.EnvironmentSpace `json:"capability"`
}

// MatchResponse is the payload returned by both Matcher methods.
// MinCapability is only set by GenerateMinCapability on a match.
type MatchResponse struct {
	Result        bool                     `json:"result"`
	Reasons       []string                 `json:"reasons"`
	MinCapability *schema.EnvironmentSpace `json:"minCapability,omitempty"`
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("empty payload")
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
