// Package planner assigns selected test cases to runbook environments.
package planner

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/lisa-platform/lisa/internal/runbook"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/testselector"
)

// Plan is the outcome of one planning pass.
type Plan struct {
	RunID       string
	Assignments []Assignment
	Unassigned  []Unassigned
}

// Assignment places one case run on an environment.
type Assignment struct {
	Case        testselector.RuntimeCase
	Environment string
	// MinCapability is the smallest environment that runs the case.
	MinCapability schema.EnvironmentSpace
	// NewEnvironment is set when the environment has to be created for this
	// run, either because it has requirement nodes or because the case asks
	// for a fresh one.
	NewEnvironment bool
}

// Unassigned is a case no environment can host, with the reasons given by
// every environment tried.
type Unassigned struct {
	Case    testselector.RuntimeCase
	Reasons []string
}

// Build assigns every case to the first environment that satisfies its
// requirement. A case pinned to an environment only tries that one.
func Build(log logr.Logger, cases []testselector.RuntimeCase, envs []runbook.Environment) Plan {
	plan := Plan{RunID: uuid.NewString()}
	log = log.WithValues("run", plan.RunID)

	capabilities := make([]schema.EnvironmentSpace, len(envs))
	for i, env := range envs {
		capabilities[i] = env.Capability()
	}

	for _, c := range cases {
		requirement := c.Metadata.EnvironmentRequirement()
		var reasons []string
		assigned := false
		for i, env := range envs {
			if c.Environment != "" && c.Environment != env.Name {
				continue
			}
			result := requirement.Check(capabilities[i])
			if !result.Result() {
				for _, r := range result.Reasons() {
					reasons = append(reasons, envLabel(env, i)+": "+r)
				}
				continue
			}
			minCapability, err := requirement.GenerateMinCapability(capabilities[i])
			if err != nil {
				reasons = append(reasons, envLabel(env, i)+": "+err.Error())
				continue
			}
			minCapability.Name = env.Name
			plan.Assignments = append(plan.Assignments, Assignment{
				Case:           c,
				Environment:    env.Name,
				MinCapability:  minCapability,
				NewEnvironment: c.UseNewEnvironment || !env.Existing(),
			})
			log.V(1).Info("assigned case", "case", c.Metadata.FullName(), "environment", envLabel(env, i))
			assigned = true
			break
		}
		if assigned {
			continue
		}
		if len(reasons) == 0 {
			if c.Environment != "" {
				reasons = []string{fmt.Sprintf("environment %q is not defined", c.Environment)}
			} else {
				reasons = []string{"no environment is defined"}
			}
		}
		log.Info("case has no environment", "case", c.Metadata.FullName(), "reasons", reasons)
		plan.Unassigned = append(plan.Unassigned, Unassigned{Case: c, Reasons: reasons})
	}
	return plan
}

func envLabel(env runbook.Environment, index int) string {
	if env.Name != "" {
		return env.Name
	}
	return fmt.Sprintf("environments[%d]", index)
}
