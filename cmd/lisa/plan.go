package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lisa-platform/lisa/internal/planner"
	"github.com/lisa-platform/lisa/internal/runbook"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/testselector"
	"github.com/lisa-platform/lisa/internal/testsuite"
)

type runFlags struct {
	runbook string
	catalog string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.runbook, "runbook", "", "runbook file")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "test case catalog file")
	_ = cmd.MarkFlagRequired("runbook")
	_ = cmd.MarkFlagRequired("catalog")
}

func (f *runFlags) selectCases(cmd *cobra.Command, opts *rootOptions) (*runbook.Runbook, []testselector.RuntimeCase, error) {
	log := opts.logger(cmd)
	rb, err := runbook.Load(f.runbook)
	if err != nil {
		return nil, nil, err
	}
	cases, err := testsuite.LoadCatalog(f.catalog)
	if err != nil {
		return nil, nil, err
	}
	log.V(1).Info("loaded", "runbook", rb.Name, "rules", len(rb.TestCase), "cases", len(cases))
	selected, err := testselector.Select(log, rb.TestCase, cases)
	if err != nil {
		return nil, nil, err
	}
	return rb, selected, nil
}

type selectedCase struct {
	Name              string `json:"name"`
	Area              string `json:"area,omitempty"`
	Category          string `json:"category,omitempty"`
	Priority          int    `json:"priority"`
	Times             int    `json:"times"`
	Retry             int    `json:"retry"`
	UseNewEnvironment bool   `json:"useNewEnvironment,omitempty"`
	IgnoreFailure     bool   `json:"ignoreFailure,omitempty"`
	Environment       string `json:"environment,omitempty"`
}

func toSelectedCase(c testselector.RuntimeCase) selectedCase {
	return selectedCase{
		Name:              c.Metadata.FullName(),
		Area:              c.Metadata.Area,
		Category:          c.Metadata.Category,
		Priority:          c.Metadata.Priority,
		Times:             c.Times,
		Retry:             c.Retry,
		UseNewEnvironment: c.UseNewEnvironment,
		IgnoreFailure:     c.IgnoreFailure,
		Environment:       c.Environment,
	}
}

func newSelectCmd(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "List the test cases a runbook selects from a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, selected, err := flags.selectCases(cmd, opts)
			if err != nil {
				return err
			}
			if opts.output == outputYAML {
				out := make([]selectedCase, 0, len(selected))
				for _, c := range selected {
					out = append(out, toSelectedCase(c))
				}
				return writeYAML(cmd, out)
			}
			t := newTable(cmd)
			t.AppendHeader(table.Row{"#", "Case", "Area", "Category", "Priority", "Retry", "Environment"})
			for i, c := range selected {
				sc := toSelectedCase(c)
				t.AppendRow(table.Row{i + 1, sc.Name, sc.Area, sc.Category, sc.Priority, sc.Retry, sc.Environment})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d selected", len(selected))})
			t.Render()
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

type planOutput struct {
	RunID       string           `json:"runId"`
	Assignments []planAssignment `json:"assignments"`
	Unassigned  []planUnassigned `json:"unassigned,omitempty"`
}

type planAssignment struct {
	Case           string                  `json:"case"`
	Environment    string                  `json:"environment"`
	NewEnvironment bool                    `json:"newEnvironment,omitempty"`
	MinCapability  schema.EnvironmentSpace `json:"minCapability"`
}

type planUnassigned struct {
	Case    string   `json:"case"`
	Reasons []string `json:"reasons"`
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Select test cases and assign each one to an environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rb, selected, err := flags.selectCases(cmd, opts)
			if err != nil {
				return err
			}
			var envs []runbook.Environment
			if rb.Environment != nil {
				envs = rb.Environment.Environments
			}
			plan := planner.Build(opts.logger(cmd), selected, envs)

			if opts.output == outputYAML {
				return writeYAML(cmd, toPlanOutput(plan))
			}
			printPlan(cmd, plan)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func toPlanOutput(plan planner.Plan) planOutput {
	out := planOutput{RunID: plan.RunID, Assignments: []planAssignment{}}
	for _, a := range plan.Assignments {
		out.Assignments = append(out.Assignments, planAssignment{
			Case:           a.Case.Metadata.FullName(),
			Environment:    a.Environment,
			NewEnvironment: a.NewEnvironment,
			MinCapability:  a.MinCapability,
		})
	}
	for _, u := range plan.Unassigned {
		out.Unassigned = append(out.Unassigned, planUnassigned{Case: u.Case.Metadata.FullName(), Reasons: u.Reasons})
	}
	return out
}

func printPlan(cmd *cobra.Command, plan planner.Plan) {
	t := newTable(cmd)
	t.SetTitle("run " + plan.RunID)
	t.AppendHeader(table.Row{"#", "Case", "Environment", "New", "Nodes"})
	for i, a := range plan.Assignments {
		nodes := make([]string, 0, len(a.MinCapability.Nodes))
		for _, n := range a.MinCapability.Nodes {
			nodes = append(nodes, fmt.Sprintf("cores=%s mem=%s", n.CoreCount, n.MemoryMB))
		}
		t.AppendRow(table.Row{i + 1, a.Case.Metadata.FullName(), a.Environment, a.NewEnvironment, strings.Join(nodes, "\n")})
	}
	t.Render()

	if len(plan.Unassigned) == 0 {
		return
	}
	u := newTable(cmd)
	u.SetTitle("unassigned")
	u.AppendHeader(table.Row{"Case", "Reasons"})
	for _, c := range plan.Unassigned {
		u.AppendRow(table.Row{c.Case.Metadata.FullName(), strings.Join(c.Reasons, "\n")})
	}
	u.Render()
}
