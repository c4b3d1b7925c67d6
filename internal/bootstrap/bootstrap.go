// Package bootstrap announces and starts one agent session.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/harun/taskpilot/internal/options"
	"github.com/harun/taskpilot/internal/tracing"
	"github.com/harun/taskpilot/pkg/agent"
	"github.com/harun/taskpilot/pkg/controller"
	"github.com/rs/zerolog"
)

// ErrSessionConsumed is returned when a session is missing or has already run
var ErrSessionConsumed = errors.New("session is nil or has already been run")

// Session is everything one run needs. It is created once, run once and discarded.
type Session struct {
	ID            string
	AgentName     string
	ModelName     string
	Directory     string
	Task          string
	MaxIterations int
	MaxChars      int
	Agent         agent.Agent

	consumed atomic.Bool
}

// Runner executes a prepared session
type Runner interface {
	Run(ctx context.Context, session *Session) (*controller.Outcome, error)
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, session *Session) (*controller.Outcome, error)

// Run calls f
func (f RunnerFunc) Run(ctx context.Context, session *Session) (*controller.Outcome, error) {
	return f(ctx, session)
}

// Config holds bootstrapper configuration
type Config struct {
	Runner Runner
	Out    io.Writer
	Logger zerolog.Logger
}

// Bootstrapper turns resolved inputs into a running session
type Bootstrapper struct {
	runner Runner
	out    io.Writer
	logger zerolog.Logger
}

// New creates a bootstrapper. Out defaults to stdout.
func New(cfg Config) (*Bootstrapper, error) {
	if cfg.Runner == nil {
		return nil, errors.New("runner is required")
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return &Bootstrapper{runner: cfg.Runner, out: out, logger: cfg.Logger}, nil
}

// Bootstrap builds the session for opts, the resolved task and the constructed agent
func (b *Bootstrapper) Bootstrap(opts *options.Options, task string, a agent.Agent) *Session {
	return &Session{
		ID:            tracing.NewID(),
		AgentName:     opts.AgentName,
		ModelName:     opts.ModelName,
		Directory:     opts.Directory,
		Task:          task,
		MaxIterations: opts.MaxIterations,
		MaxChars:      opts.MaxChars,
		Agent:         a,
	}
}

// StatusLine is the one-line announcement printed before a session starts
func StatusLine(s *Session) string {
	dir := s.Directory
	if dir == "" {
		dir = "none"
	}
	return fmt.Sprintf("Running agent %s (model: %s, directory: %s) with task: %q", s.AgentName, s.ModelName, dir, s.Task)
}

// Run prints the status line and hands the session to the runner. The
// runner's outcome and error are returned unmodified.
func (b *Bootstrapper) Run(ctx context.Context, s *Session) (*controller.Outcome, error) {
	if s == nil || !s.consumed.CompareAndSwap(false, true) {
		return nil, ErrSessionConsumed
	}

	ctx = tracing.WithSessionID(ctx, s.ID)
	ctx = tracing.WithAgent(ctx, s.AgentName)
	logger := tracing.LoggerFromContext(ctx, b.logger)

	if _, err := fmt.Fprintln(b.out, StatusLine(s)); err != nil {
		return nil, fmt.Errorf("failed to write status line: %w", err)
	}

	logger.Debug().
		Str("model", s.ModelName).
		Int("max_iterations", s.MaxIterations).
		Int("max_chars", s.MaxChars).
		Msg("Session starting")

	return b.runner.Run(ctx, s)
}
