package cli

import (
	"context"
	"time"

	"github.com/harun/taskpilot/internal/bootstrap"
	"github.com/harun/taskpilot/internal/config"
	"github.com/harun/taskpilot/internal/metrics"
	"github.com/harun/taskpilot/pkg/controller"
	"github.com/harun/taskpilot/pkg/session"
	"github.com/rs/zerolog"
)

// recordTranscript stores the session as JSONL. Failures are logged and never fail the run.
func recordTranscript(ctx context.Context, deps Deps, cfg *config.Config, sess *bootstrap.Session, out *controller.Outcome, runErr error, logger zerolog.Logger) {
	dir := cfg.SessionsDir()
	if !cfg.Sessions.Record || dir == "" {
		return
	}

	store, err := session.NewStore(deps.Fs, dir)
	if err != nil {
		logger.Warn().Err(err).Msg("Transcript disabled")
		return
	}

	entries := []session.Entry{{
		Kind:    session.EntryTask,
		Content: sess.Task,
		Metadata: map[string]interface{}{
			"agent":          sess.AgentName,
			"model":          sess.ModelName,
			"directory":      sess.Directory,
			"max_iterations": sess.MaxIterations,
			"max_chars":      sess.MaxChars,
		},
	}}

	result := session.Entry{
		Kind: session.EntryOutcome,
		Metadata: map[string]interface{}{
			"status": metrics.Status(out, runErr),
		},
	}
	if out != nil {
		for _, a := range out.History {
			entries = append(entries, session.Entry{Kind: session.EntryAction, Type: string(a.Type), Content: a.Content})
		}
		result.Content = out.FinalMessage
		result.Metadata["iterations"] = out.Iterations
		result.Metadata["chars_used"] = out.CharsUsed
	}
	if runErr != nil {
		result.Metadata["error"] = runErr.Error()
	}
	entries = append(entries, result)

	if err := store.Append(ctx, sess.ID, entries...); err != nil {
		logger.Warn().Err(err).Msg("Failed to write transcript")
		return
	}
	logger.Debug().Str("dir", dir).Int("entries", len(entries)).Msg("Transcript written")

	maxAge := time.Duration(cfg.Sessions.MaxAge) * 24 * time.Hour
	if removed, err := store.Prune(maxAge, time.Now()); err != nil {
		logger.Warn().Err(err).Msg("Failed to prune transcripts")
	} else if removed > 0 {
		logger.Debug().Int("removed", removed).Msg("Old transcripts pruned")
	}
}
