// Package controller drives an agent through a bounded sequence of steps.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/harun/taskpilot/internal/tracing"
	"github.com/harun/taskpilot/pkg/agent"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Reason explains why a run stopped without error
type Reason string

const (
	ReasonFinished      Reason = "finished"
	ReasonMaxIterations Reason = "max_iterations"
)

// Outcome summarises a completed run
type Outcome struct {
	Iterations   int            `json:"iterations"`
	CharsUsed    int            `json:"chars_used"`
	Finished     bool           `json:"finished"`
	Reason       Reason         `json:"reason"`
	FinalMessage string         `json:"final_message,omitempty"`
	History      []agent.Action `json:"-"`
}

// Config holds controller configuration
type Config struct {
	Agent         agent.Agent
	MaxIterations int
	MaxChars      int
	WorkingDir    string
	Logger        zerolog.Logger
}

// Controller runs one agent over one task
type Controller struct {
	agent         agent.Agent
	maxIterations int
	maxChars      int
	workingDir    string
	logger        zerolog.Logger
}

// New creates a controller; caps must be positive
func New(cfg Config) (*Controller, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", cfg.MaxIterations)
	}
	if cfg.MaxChars <= 0 {
		return nil, fmt.Errorf("max chars must be positive, got %d", cfg.MaxChars)
	}

	return &Controller{
		agent:         cfg.Agent,
		maxIterations: cfg.MaxIterations,
		maxChars:      cfg.MaxChars,
		workingDir:    cfg.WorkingDir,
		logger:        cfg.Logger,
	}, nil
}

// Run steps the agent until it finishes, the iteration cap is reached,
// the character budget is overrun, the agent fails, or ctx is done.
// The outcome is returned alongside any error so callers can report progress.
func (c *Controller) Run(ctx context.Context, task string) (out *Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "controller.run",
		attribute.String("agent", c.agent.Name()),
		attribute.Int("max_iterations", c.maxIterations),
		attribute.Int("max_chars", c.maxChars),
	)
	defer func() { tracing.EndSpan(span, err) }()

	logger := tracing.LoggerFromContext(ctx, c.logger)
	state := agent.NewState(task, c.workingDir, c.maxIterations, c.maxChars)
	out = &Outcome{}

	defer func() {
		out.CharsUsed = state.CharsUsed()
		out.History = state.History
	}()

	for state.Iteration < c.maxIterations {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		action, err := c.agent.Step(ctx, state)
		state.Iteration++
		out.Iterations = state.Iteration
		if err != nil {
			if errors.Is(err, agent.ErrCharBudgetExceeded) {
				logger.Warn().Int("iteration", state.Iteration).Err(err).Msg("Character budget exhausted")
				return out, err
			}
			return out, fmt.Errorf("agent step %d failed: %w", state.Iteration, err)
		}

		state.Record(action)
		logger.Debug().
			Int("iteration", state.Iteration).
			Str("action", string(action.Type)).
			Msg("Agent step")

		switch action.Type {
		case agent.ActionMessage:
			logger.Info().Int("iteration", state.Iteration).Msg(action.Content)
		case agent.ActionFinish:
			out.Finished = true
			out.Reason = ReasonFinished
			out.FinalMessage = action.Content
			return out, nil
		}
	}

	out.Reason = ReasonMaxIterations
	logger.Warn().Int("max_iterations", c.maxIterations).Msg("Iteration cap reached before the agent finished")
	return out, nil
}
