package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/yaml"

	"github.com/lisa-platform/lisa/internal/schema"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errNotMatched makes check and mincap exit non-zero after printing reasons.
var errNotMatched = errors.New("not matched")

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

type rootOptions struct {
	verbose bool
	output  string
}

func (o *rootOptions) logger(cmd *cobra.Command) logr.Logger {
	return zap.New(zap.UseDevMode(o.verbose), zap.WriteTo(cmd.ErrOrStderr())).WithName("lisa")
}

func (o *rootOptions) validate() error {
	switch o.output {
	case outputTable, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, use %s or %s", o.output, outputTable, outputYAML)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "lisa",
		Short: "Match test requirements to environments",
		Long: `lisa checks environment requirements against capabilities, computes the
smallest environment that satisfies a requirement, and plans which
environment each selected test case runs on.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table or yaml")

	cmd.AddCommand(
		newCheckCmd(opts),
		newMinCapCmd(opts),
		newSelectCmd(opts),
		newPlanCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of lisa",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lisa version %s\n", version)
		},
	}
}

// readEnvironment decodes an EnvironmentSpace from a YAML or JSON file. A
// file holding a single node is accepted as a one-node environment.
func readEnvironment(path string) (schema.EnvironmentSpace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.EnvironmentSpace{}, err
	}
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return schema.EnvironmentSpace{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if _, ok := probe["nodes"]; !ok {
		var node schema.NodeSpace
		if err := yaml.Unmarshal(data, &node); err != nil {
			return schema.EnvironmentSpace{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return schema.NewEnvironmentSpace(node), nil
	}
	var env schema.EnvironmentSpace
	if err := yaml.Unmarshal(data, &env); err != nil {
		return schema.EnvironmentSpace{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Topology == "" {
		env.Topology = schema.TopologySubnet
	}
	return env, nil
}

func writeYAML(cmd *cobra.Command, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
