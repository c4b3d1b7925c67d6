package cli

import (
	"context"
	"io"
	"os"

	"github.com/harun/taskpilot/internal/bootstrap"
	"github.com/harun/taskpilot/internal/options"
	"github.com/harun/taskpilot/internal/task"
	"github.com/harun/taskpilot/pkg/agent"
	"github.com/harun/taskpilot/pkg/llm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// ClientFactory builds the model client for a run
type ClientFactory func(opts llm.Options) (llm.Client, error)

// Deps are the collaborators the commands run against.
// Zero fields are filled by DefaultDeps.
type Deps struct {
	Registry    *agent.Registry
	NewClient   ClientFactory
	Runner      bootstrap.Runner
	Fs          afero.Fs
	Stdin       io.Reader
	Interactive func() bool
	Out         io.Writer
	Err         io.Writer
}

// DefaultDeps wires the built-in agents, real providers and process stdio
func DefaultDeps() Deps {
	return Deps{
		Registry:    agent.Builtin(),
		NewClient:   llm.New,
		Fs:          afero.NewOsFs(),
		Stdin:       os.Stdin,
		Interactive: func() bool { return task.IsTerminal(os.Stdin) },
		Out:         os.Stdout,
		Err:         os.Stderr,
	}
}

func (d Deps) withDefaults() Deps {
	def := DefaultDeps()
	if d.Registry == nil {
		d.Registry = def.Registry
	}
	if d.NewClient == nil {
		d.NewClient = def.NewClient
	}
	if d.Fs == nil {
		d.Fs = def.Fs
	}
	if d.Stdin == nil {
		d.Stdin = def.Stdin
	}
	if d.Interactive == nil {
		d.Interactive = def.Interactive
	}
	if d.Out == nil {
		d.Out = def.Out
	}
	if d.Err == nil {
		d.Err = def.Err
	}
	return d
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	cfgFile     string
	logLevel    string
	metricsFile string
}

// NewRootCmd builds the command tree. The root command runs one agent session.
func NewRootCmd(deps Deps) *cobra.Command {
	deps = deps.withDefaults()
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "taskpilot",
		Short: "Taskpilot - run an autonomous agent on a single task",
		Long: `Taskpilot runs one autonomous agent on one task and exits.
The task comes from a file (-f), inline text (-t), or piped stdin, in that order.`,
		Version:            version,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	opts := options.Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runSession(cmd, deps, g, opts)
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default is $HOME/.taskpilot/taskpilot.json)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); default from config")
	cmd.Flags().StringVar(&g.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Out)
	cmd.SetErr(deps.Err)

	// Version template
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	cmd.AddCommand(newAgentsCmd(deps))
	cmd.AddCommand(newConfigureCmd(deps, g))

	return cmd
}

// Execute runs the command tree with the process arguments
func Execute(ctx context.Context) error {
	return NewRootCmd(DefaultDeps()).ExecuteContext(ctx)
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}
