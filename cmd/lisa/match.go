package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

type matchFlags struct {
	requirement string
	capability  string
}

func (f *matchFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.requirement, "requirement", "r", "", "file holding the required environment or node")
	cmd.Flags().StringVarP(&f.capability, "capability", "c", "", "file holding the offered environment or node")
	_ = cmd.MarkFlagRequired("requirement")
	_ = cmd.MarkFlagRequired("capability")
}

func (f *matchFlags) load() (schema.EnvironmentSpace, schema.EnvironmentSpace, error) {
	requirement, err := readEnvironment(f.requirement)
	if err != nil {
		return schema.EnvironmentSpace{}, schema.EnvironmentSpace{}, fmt.Errorf("requirement: %w", err)
	}
	capability, err := readEnvironment(f.capability)
	if err != nil {
		return schema.EnvironmentSpace{}, schema.EnvironmentSpace{}, fmt.Errorf("capability: %w", err)
	}
	return requirement, capability, nil
}

type checkOutput struct {
	Result  bool     `json:"result"`
	Reasons []string `json:"reasons,omitempty"`
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	flags := &matchFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a capability satisfies a requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd)
			requirement, capability, err := flags.load()
			if err != nil {
				return err
			}
			log.V(1).Info("checking", "requirement", requirement.String(), "capability", capability.String())
			log.V(1).Info("node matching", "mode", requirement.MatchModeFor(capability))

			result := requirement.Check(capability)
			if err := printCheck(cmd, opts, result); err != nil {
				return err
			}
			if !result.Result() {
				return errNotMatched
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func printCheck(cmd *cobra.Command, opts *rootOptions, result searchspace.ResultReason) error {
	if opts.output == outputYAML {
		return writeYAML(cmd, checkOutput{Result: result.Result(), Reasons: result.Reasons()})
	}
	if result.Result() {
		fmt.Fprintln(cmd.OutOrStdout(), "matched")
		return nil
	}
	t := newTable(cmd)
	t.AppendHeader(table.Row{"#", "Reason"})
	for i, reason := range result.Reasons() {
		t.AppendRow(table.Row{i + 1, reason})
	}
	t.SetTitle("not matched")
	t.Render()
	return nil
}

func newMinCapCmd(opts *rootOptions) *cobra.Command {
	flags := &matchFlags{}
	cmd := &cobra.Command{
		Use:   "mincap",
		Short: "Print the smallest environment inside the capability that satisfies the requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requirement, capability, err := flags.load()
			if err != nil {
				return err
			}
			result := requirement.Check(capability)
			if !result.Result() {
				if err := printCheck(cmd, opts, result); err != nil {
					return err
				}
				return errNotMatched
			}
			minCapability, err := requirement.GenerateMinCapability(capability)
			if err != nil {
				return err
			}
			if opts.output == outputYAML {
				return writeYAML(cmd, minCapability)
			}
			printNodes(cmd, minCapability)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func printNodes(cmd *cobra.Command, env schema.EnvironmentSpace) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"#", "Nodes", "Cores", "Memory (MB)", "NICs", "GPUs", "Features"})
	for i, n := range env.Nodes {
		features := "-"
		if n.Features != nil && n.Features.Len() > 0 {
			features = n.Features.String()
		}
		t.AppendRow(table.Row{i, n.NodeCount, n.CoreCount, n.MemoryMB, n.NICCount, n.GPUCount, features})
	}
	t.Render()
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	return t
}
