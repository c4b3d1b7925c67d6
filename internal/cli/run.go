package cli

import (
	"fmt"
	"time"

	"github.com/harun/taskpilot/internal/bootstrap"
	"github.com/harun/taskpilot/internal/config"
	"github.com/harun/taskpilot/internal/logger"
	"github.com/harun/taskpilot/internal/metrics"
	"github.com/harun/taskpilot/internal/options"
	"github.com/harun/taskpilot/internal/task"
	"github.com/harun/taskpilot/internal/tracing"
	"github.com/harun/taskpilot/pkg/agent"
	"github.com/harun/taskpilot/pkg/llm"
	"github.com/spf13/cobra"
)

// runSession drives parsing, task resolution, agent construction and the session run.
// Any failure stops the pipeline before a session starts.
func runSession(cmd *cobra.Command, deps Deps, g *globalFlags, opts *options.Options) error {
	if g.logLevel != "" {
		if err := config.NewValidator().ValidateLogLevel(g.logLevel); err != nil {
			return &options.UsageError{Flag: "log-level", Reason: err.Error()}
		}
	}

	cfg, err := config.Load(g.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.FromConfig(cfg.Logging, g.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	ctx := tracing.NewRunContext(cmd.Context())
	l := tracing.LoggerFromContext(ctx, log.GetZerolog())

	if err := opts.Resolve(cmd.Flags(), cfg); err != nil {
		l.Error().Err(err).Msg("Invalid options")
		return err
	}
	l.Debug().
		Str("agent", opts.AgentName).
		Str("model", opts.ModelName).
		Int("max_iterations", opts.MaxIterations).
		Int("max_chars", opts.MaxChars).
		Msg("Options resolved")

	resolver := &task.Resolver{
		Fs:          deps.Fs,
		Stdin:       cmd.InOrStdin(),
		Interactive: deps.Interactive(),
	}
	text, src, err := resolver.Resolve(opts.TaskFile, opts.TaskText)
	if err != nil {
		l.Error().Err(err).Msg("Failed to resolve task")
		return err
	}
	l.Debug().Str("source", src.Kind.String()).Int("task_chars", len(text)).Msg("Task resolved")

	factory := agent.NewFactory(deps.Registry)
	if _, err := factory.Lookup(opts.AgentName); err != nil {
		l.Error().Err(err).Msg("Failed to resolve agent")
		return err
	}

	client, err := deps.NewClient(llm.Options{
		Model:      opts.ModelName,
		Profiles:   authProfiles(cfg.LLM.Profiles),
		MaxRetries: cfg.LLM.MaxRetries,
		Logger:     l,
	})
	if err != nil {
		l.Error().Err(err).Msg("Failed to create model client")
		return fmt.Errorf("failed to create model client: %w", err)
	}

	a, err := factory.Create(opts.AgentName, client)
	if err != nil {
		l.Error().Err(err).Msg("Failed to construct agent")
		return err
	}
	l.Debug().Str("agent", a.Name()).Str("provider", client.Provider()).Msg("Agent constructed")

	runner := deps.Runner
	if runner == nil {
		runner = &bootstrap.ControllerRunner{Logger: l}
	}
	b, err := bootstrap.New(bootstrap.Config{
		Runner: runner,
		Out:    cmd.OutOrStdout(),
		Logger: l,
	})
	if err != nil {
		return err
	}

	sess := b.Bootstrap(opts, text, a)
	start := time.Now()
	outcome, err := b.Run(ctx, sess)
	elapsed := time.Since(start)

	recordTranscript(ctx, deps, cfg, sess, outcome, err, l)
	if g.metricsFile != "" {
		m := metrics.NewMetrics()
		m.ObserveSession(sess.AgentName, outcome, err, elapsed)
		if werr := m.WriteTextfile(g.metricsFile); werr != nil {
			l.Warn().Err(werr).Str("path", g.metricsFile).Msg("Failed to write metrics")
		}
	}

	if err != nil {
		l.Error().Err(err).Msg("Session failed")
		return err
	}
	if outcome != nil && outcome.FinalMessage != "" {
		fmt.Fprintln(cmd.OutOrStdout(), outcome.FinalMessage)
	}
	return nil
}

func authProfiles(profiles []config.AIProfile) []llm.AuthProfile {
	result := make([]llm.AuthProfile, len(profiles))
	for i, p := range profiles {
		result[i] = llm.AuthProfile{
			ID:       p.ID,
			Provider: p.Provider,
			APIKey:   p.APIKey,
			BaseURL:  p.BaseURL,
			Priority: p.Priority,
		}
	}
	return result
}
