package bootstrap

import (
	"context"

	"github.com/harun/taskpilot/internal/tracing"
	"github.com/harun/taskpilot/pkg/controller"
	"github.com/rs/zerolog"
)

// ControllerRunner runs sessions through the step controller
type ControllerRunner struct {
	Logger zerolog.Logger
}

// Run drives the session's agent until it finishes or a cap is reached
func (r *ControllerRunner) Run(ctx context.Context, s *Session) (*controller.Outcome, error) {
	logger := tracing.LoggerFromContext(ctx, r.Logger)

	ctrl, err := controller.New(controller.Config{
		Agent:         s.Agent,
		MaxIterations: s.MaxIterations,
		MaxChars:      s.MaxChars,
		WorkingDir:    s.Directory,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	out, err := ctrl.Run(ctx, s.Task)
	if err != nil {
		return out, err
	}

	logger.Info().
		Str("reason", string(out.Reason)).
		Int("iterations", out.Iterations).
		Int("chars_used", out.CharsUsed).
		Msg("Session completed")
	return out, nil
}
