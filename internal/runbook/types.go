package runbook

import (
	"encoding/json"
	"fmt"

	"github.com/lisa-platform/lisa/internal/schema"
)

// Test case select actions.
const (
	SelectActionNone         = "none"
	SelectActionInclude      = "include"
	SelectActionExclude      = "exclude"
	SelectActionForceInclude = "forceInclude"
	SelectActionForceExclude = "forceExclude"
)

// PlatformTypeReady is a platform whose environments already exist.
const PlatformTypeReady = "ready"

const (
	defaultRunbookName   = "not_named"
	defaultAdminUsername = "lisatest"
	defaultSSHPort       = 22
)

// Runbook describes one test run: where to run and what to run.
type Runbook struct {
	Name        string           `json:"name,omitempty"`
	Environment *EnvironmentRoot `json:"environment,omitempty"`
	Notifier    []Notifier       `json:"notifier,omitempty"`
	Platform    []Platform       `json:"platform,omitempty"`
	TestCase    []TestCase       `json:"testcase,omitempty"`
}

type EnvironmentRoot struct {
	MaxConcurrency int           `json:"maxConcurrency,omitempty"`
	AllowCreate    *bool         `json:"allowCreate,omitempty"`
	WarnAsError    bool          `json:"warnAsError,omitempty"`
	Environments   []Environment `json:"environments,omitempty"`
}

// CanCreate reports whether the run may ask platforms for new environments.
func (e *EnvironmentRoot) CanCreate() bool {
	return e == nil || e.AllowCreate == nil || *e.AllowCreate
}

// Environment is a named group of nodes. Local and remote nodes already
// exist; requirement nodes are created by the platform.
type Environment struct {
	Name     string `json:"name,omitempty"`
	Topology string `json:"topology,omitempty"`
	Nodes    []Node `json:"nodes,omitempty"`
}

// Node is one entry of Environment.nodes. Exactly one of Local, Remote and
// Requirement is set, chosen by Type.
type Node struct {
	Type        string
	Local       *LocalNode
	Remote      *RemoteNode
	Requirement *schema.NodeSpace

	raw json.RawMessage
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*n = Node{Type: head.Type}
	switch head.Type {
	case schema.NodeTypeLocal:
		n.Local = &LocalNode{}
		return json.Unmarshal(data, n.Local)
	case schema.NodeTypeRemote:
		n.Remote = &RemoteNode{}
		return json.Unmarshal(data, n.Remote)
	case schema.NodeTypeRequirement:
		n.Requirement = &schema.NodeSpace{}
		return json.Unmarshal(data, n.Requirement)
	default:
		// Reported by Validate with the node's position.
		n.raw = append(json.RawMessage(nil), data...)
		return nil
	}
}

func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.Local != nil:
		return json.Marshal(n.Local)
	case n.Remote != nil:
		return json.Marshal(n.Remote)
	case n.Requirement != nil:
		return json.Marshal(n.Requirement)
	case n.raw != nil:
		return n.raw, nil
	default:
		return nil, fmt.Errorf("node of type %q has no content", n.Type)
	}
}

type LocalNode struct {
	Type       string            `json:"type"`
	Name       string            `json:"name,omitempty"`
	IsDefault  bool              `json:"isDefault,omitempty"`
	Capability *schema.NodeSpace `json:"capability,omitempty"`
}

type RemoteNode struct {
	Type           string            `json:"type"`
	Name           string            `json:"name,omitempty"`
	IsDefault      bool              `json:"isDefault,omitempty"`
	Address        string            `json:"address,omitempty"`
	Port           int               `json:"port,omitempty"`
	PublicAddress  string            `json:"publicAddress,omitempty"`
	PublicPort     int               `json:"publicPort,omitempty"`
	Username       string            `json:"username,omitempty"`
	Password       string            `json:"password,omitempty"`
	PrivateKeyFile string            `json:"privateKeyFile,omitempty"`
	Capability     *schema.NodeSpace `json:"capability,omitempty"`
}

type Platform struct {
	Type                string `json:"type,omitempty"`
	AdminUsername       string `json:"adminUsername,omitempty"`
	AdminPassword       string `json:"adminPassword,omitempty"`
	AdminPrivateKeyFile string `json:"adminPrivateKeyFile,omitempty"`
	// ReserveEnvironment keeps environments created by the run.
	ReserveEnvironment bool `json:"reserveEnvironment,omitempty"`
}

type Notifier struct {
	Type string `json:"type"`
}

// Criteria select test cases. All set fields must match.
type Criteria struct {
	Name     string     `json:"name,omitempty"`
	Area     string     `json:"area,omitempty"`
	Category string     `json:"category,omitempty"`
	Priority IntList    `json:"priority,omitempty"`
	Tags     StringList `json:"tags,omitempty"`
}

// TestCase is a selection rule. Rules apply in order on the result of the
// previous ones.
type TestCase struct {
	Name         string    `json:"name,omitempty"`
	Criteria     *Criteria `json:"criteria,omitempty"`
	SelectAction string    `json:"selectAction,omitempty"`
	Enable       *bool     `json:"enable,omitempty"`
	// Times runs each selected case several times.
	Times int `json:"times,omitempty"`
	// Retry is the number of retries after a failure.
	Retry             int    `json:"retry,omitempty"`
	UseNewEnvironment bool   `json:"useNewEnvironment,omitempty"`
	IgnoreFailure     bool   `json:"ignoreFailure,omitempty"`
	Environment       string `json:"environment,omitempty"`
}

// Enabled reports whether the rule takes part in selection.
func (t TestCase) Enabled() bool {
	return t.Enable == nil || *t.Enable
}

// IntList accepts a single integer or a list of integers.
type IntList []int

func (l *IntList) UnmarshalJSON(data []byte) error {
	var one int
	if err := json.Unmarshal(data, &one); err == nil {
		*l = IntList{one}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected an integer or a list of integers: %w", err)
	}
	*l = many
	return nil
}

// StringList accepts a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*l = many
	return nil
}
