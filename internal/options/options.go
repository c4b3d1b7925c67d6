// Package options turns command-line flags and configuration into the
// validated parameters of one run.
package options

import (
	"fmt"
	"strings"

	"github.com/harun/taskpilot/internal/config"
	"github.com/spf13/pflag"
)

// Flag names of the run surface
const (
	FlagDirectory     = "directory"
	FlagTask          = "task"
	FlagFile          = "file"
	FlagAgent         = "agent-cls"
	FlagModel         = "model-name"
	FlagMaxIterations = "max-iterations"
	FlagMaxChars      = "max-chars"
)

// Options is the resolved parameter set of one run
type Options struct {
	Directory     string
	TaskText      string
	TaskFile      string
	AgentName     string
	ModelName     string
	MaxIterations int
	MaxChars      int
}

// UsageError reports an invalid invocation
type UsageError struct {
	Flag   string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid --%s: %s", e.Flag, e.Reason)
}

// Bind registers the run flags on flags and returns the Options they fill.
// Defaults are zero here; Resolve applies configuration to unset flags.
func Bind(flags *pflag.FlagSet) *Options {
	o := &Options{}
	flags.StringVarP(&o.Directory, FlagDirectory, "d", "", "The working directory for the agent")
	flags.StringVarP(&o.TaskText, FlagTask, "t", "", "The task for the agent to perform")
	flags.StringVarP(&o.TaskFile, FlagFile, "f", "", "Path to a file containing the task. Overrides -t if both are provided.")
	flags.StringVarP(&o.AgentName, FlagAgent, "c", "", fmt.Sprintf("The agent class to use (default %q)", config.DefaultAgent))
	flags.StringVarP(&o.ModelName, FlagModel, "m", "", "The model name to use (default from config llm.model)")
	flags.IntVarP(&o.MaxIterations, FlagMaxIterations, "i", 0, "The maximum number of iterations to run the agent (default from config agent.max_iterations)")
	flags.IntVarP(&o.MaxChars, FlagMaxChars, "n", 0, "The maximum number of characters to send to and receive from the model per task (default from config agent.max_chars)")
	return o
}

// Resolve fills every flag the user did not set from cfg and validates the result
func (o *Options) Resolve(flags *pflag.FlagSet, cfg *config.Config) error {
	if !flags.Changed(FlagAgent) {
		o.AgentName = cfg.Agent.Default
	}
	if !flags.Changed(FlagModel) {
		o.ModelName = cfg.LLM.Model
	}
	if !flags.Changed(FlagMaxIterations) {
		o.MaxIterations = cfg.Agent.MaxIterations
	}
	if !flags.Changed(FlagMaxChars) {
		o.MaxChars = cfg.Agent.MaxChars
	}
	if !flags.Changed(FlagDirectory) {
		o.Directory = cfg.WorkspaceDir
	}

	return o.Validate()
}

// Validate checks the invariants every resolved Options satisfies
func (o *Options) Validate() error {
	if strings.TrimSpace(o.AgentName) == "" {
		return &UsageError{Flag: FlagAgent, Reason: "agent name must not be empty"}
	}
	if strings.TrimSpace(o.ModelName) == "" {
		return &UsageError{Flag: FlagModel, Reason: "model name must not be empty"}
	}
	if o.MaxIterations <= 0 {
		return &UsageError{Flag: FlagMaxIterations, Reason: fmt.Sprintf("must be a positive integer, got %d", o.MaxIterations)}
	}
	if o.MaxChars <= 0 {
		return &UsageError{Flag: FlagMaxChars, Reason: fmt.Sprintf("must be a positive integer, got %d", o.MaxChars)}
	}
	return nil
}

// NewFlagSet returns a flag set with the run flags bound. Unknown flags are
// ignored so newer invocations keep working against older binaries.
func NewFlagSet(name string) (*pflag.FlagSet, *Options) {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	return flags, Bind(flags)
}

// Parse builds Options from raw arguments and cfg
func Parse(args []string, cfg *config.Config) (*Options, error) {
	flags, o := NewFlagSet("taskpilot")
	if err := flags.Parse(args); err != nil {
		return nil, &UsageError{Flag: "args", Reason: err.Error()}
	}
	if err := o.Resolve(flags, cfg); err != nil {
		return nil, err
	}
	return o, nil
}
