package runbook

import (
	"fmt"
	"strings"

	"github.com/lisa-platform/lisa/internal/schema"
)

// ValidationError is one problem found in a runbook, located by a dotted
// field path such as "testcase[0].times".
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem of a runbook so they can be
// reported at once.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Error())
	}
	return "invalid runbook: " + strings.Join(messages, "; ")
}

func (errs *ValidationErrors) add(field, message string) {
	*errs = append(*errs, ValidationError{Field: field, Message: message})
}

var selectActions = []string{
	SelectActionNone,
	SelectActionInclude,
	SelectActionExclude,
	SelectActionForceInclude,
	SelectActionForceExclude,
}

// Validate checks a defaulted runbook and returns every problem found.
func (r *Runbook) Validate() ValidationErrors {
	var errs ValidationErrors

	for i, p := range r.Platform {
		p.validate(fmt.Sprintf("platform[%d]", i), &errs)
	}
	for i, n := range r.Notifier {
		if n.Type == "" {
			errs.add(fmt.Sprintf("notifier[%d].type", i), "is required")
		}
	}
	for i, tc := range r.TestCase {
		tc.validate(fmt.Sprintf("testcase[%d]", i), &errs)
	}
	if r.Environment != nil {
		r.Environment.validate("environment", &errs)
	}
	return errs
}

func (p Platform) validate(field string, errs *ValidationErrors) {
	if p.Type == PlatformTypeReady {
		return
	}
	switch {
	case p.AdminPassword != "" && p.AdminPrivateKeyFile != "":
		errs.add(field, "only one of adminPassword and adminPrivateKeyFile can be set")
	case p.AdminPassword == "" && p.AdminPrivateKeyFile == "":
		errs.add(field, "one of adminPassword and adminPrivateKeyFile must be set")
	}
}

func (t TestCase) validate(field string, errs *ValidationErrors) {
	if !oneOf(t.SelectAction, selectActions) {
		errs.add(field+".selectAction", "must be one of: "+strings.Join(selectActions, ", "))
	}
	if t.Times < 1 {
		errs.add(field+".times", fmt.Sprintf("must be at least 1, got %d", t.Times))
	}
	if t.Retry < 0 {
		errs.add(field+".retry", fmt.Sprintf("must not be negative, got %d", t.Retry))
	}
	if t.Criteria == nil {
		return
	}
	for _, p := range t.Criteria.Priority {
		if p < 0 || p > 3 {
			errs.add(field+".criteria.priority", fmt.Sprintf("must be between 0 and 3, got %d", p))
		}
	}
}

func (e *EnvironmentRoot) validate(field string, errs *ValidationErrors) {
	if e.MaxConcurrency < 1 {
		errs.add(field+".maxConcurrency", fmt.Sprintf("must be at least 1, got %d", e.MaxConcurrency))
	}
	for i, env := range e.Environments {
		env.validate(fmt.Sprintf("%s.environments[%d]", field, i), errs)
	}
}

func (e Environment) validate(field string, errs *ValidationErrors) {
	if e.Topology != schema.TopologySubnet {
		errs.add(field+".topology", fmt.Sprintf("%q is not supported, use %s", e.Topology, schema.TopologySubnet))
	}
	for i, n := range e.Nodes {
		nodeField := fmt.Sprintf("%s.nodes[%d]", field, i)
		switch {
		case n.Local != nil:
		case n.Remote != nil:
			n.Remote.validate(nodeField, errs)
		case n.Requirement != nil:
		default:
			errs.add(nodeField+".type", fmt.Sprintf("unknown node type '%s'", n.Type))
		}
	}
}

func (r *RemoteNode) validate(field string, errs *ValidationErrors) {
	if r.Address == "" {
		errs.add(field, "at least one of address and publicAddress need to be set")
	}
	validPort(field+".port", r.Port, errs)
	validPort(field+".publicPort", r.PublicPort, errs)
	if strings.TrimSpace(r.Username) == "" {
		errs.add(field+".username", "is required for remote node")
	}
	if r.Password == "" && r.PrivateKeyFile == "" {
		errs.add(field, "at least one of password and privateKeyFile need to be set")
	}
}

func validPort(field string, port int, errs *ValidationErrors) {
	if port < 1 || port > 65535 {
		errs.add(field, fmt.Sprintf("must be between 1 and 65535, got %d", port))
	}
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
