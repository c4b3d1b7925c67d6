package cli

import (
	"fmt"
	"strings"

	"github.com/harun/taskpilot/internal/config"
	"github.com/spf13/cobra"
)

type configureFlags struct {
	model         string
	agent         string
	maxIterations int
	maxChars      int
	workspace     string
	anthropicKey  string
	openaiKey     string
	show          bool
}

func newConfigureCmd(deps Deps, g *globalFlags) *cobra.Command {
	f := &configureFlags{}

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Write the configuration file",
		Long: `Write the taskpilot configuration file.
Values not given as flags keep their current setting, or the default when no file exists.
Keys exported as ANTHROPIC_API_KEY or OPENAI_API_KEY are never written to the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigure(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.model, "model", "", "default model name")
	cmd.Flags().StringVar(&f.agent, "agent", "", "default agent class")
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", 0, "default iteration cap")
	cmd.Flags().IntVar(&f.maxChars, "max-chars", 0, "default character budget")
	cmd.Flags().StringVar(&f.workspace, "workspace", "", "default working directory")
	cmd.Flags().StringVar(&f.anthropicKey, "anthropic-key", "", "Anthropic API key to store")
	cmd.Flags().StringVar(&f.openaiKey, "openai-key", "", "OpenAI API key to store")
	cmd.Flags().BoolVar(&f.show, "show", false, "print the effective configuration instead of writing it")

	return cmd
}

func runConfigure(cmd *cobra.Command, g *globalFlags, f *configureFlags) error {
	loader := config.NewLoader(g.cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if f.show {
		fmt.Fprintln(cmd.OutOrStdout(), redactedConfig(cfg))
		return nil
	}

	// Environment-derived profiles stay in the environment
	stored := cfg.LLM.Profiles[:0]
	for _, p := range cfg.LLM.Profiles {
		if !strings.HasPrefix(p.ID, "env-") {
			stored = append(stored, p)
		}
	}
	cfg.LLM.Profiles = stored

	flags := cmd.Flags()
	v := config.NewValidator()

	if flags.Changed("model") {
		if err := v.ValidateModel(f.model); err != nil {
			return err
		}
		cfg.LLM.Model = f.model
	}
	if flags.Changed("agent") {
		cfg.Agent.Default = f.agent
	}
	if flags.Changed("max-iterations") {
		if err := v.ValidatePositive("max-iterations", f.maxIterations); err != nil {
			return err
		}
		cfg.Agent.MaxIterations = f.maxIterations
	}
	if flags.Changed("max-chars") {
		if err := v.ValidatePositive("max-chars", f.maxChars); err != nil {
			return err
		}
		cfg.Agent.MaxChars = f.maxChars
	}
	if flags.Changed("workspace") {
		cfg.WorkspaceDir = f.workspace
	}
	keys := []struct{ provider, key string }{
		{"anthropic", f.anthropicKey},
		{"openai", f.openaiKey},
	}
	for _, k := range keys {
		if k.key == "" {
			continue
		}
		if err := v.ValidateAPIKey(k.key, k.provider); err != nil {
			return err
		}
		cfg.LLM.Profiles = upsertProfile(cfg.LLM.Profiles, k.provider, k.key)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", loader.GetConfigPath())
	return nil
}

// upsertProfile replaces the key of the first profile for provider or appends a new one
func upsertProfile(profiles []config.AIProfile, provider, key string) []config.AIProfile {
	for i := range profiles {
		if profiles[i].Provider == provider {
			profiles[i].APIKey = key
			return profiles
		}
	}
	return append(profiles, config.AIProfile{
		ID:       provider + "-default",
		Provider: provider,
		APIKey:   key,
		Priority: len(profiles) + 1,
	})
}

func redactedConfig(cfg *config.Config) string {
	c := *cfg
	c.LLM.Profiles = make([]config.AIProfile, len(cfg.LLM.Profiles))
	for i, p := range cfg.LLM.Profiles {
		if p.APIKey != "" {
			p.APIKey = "[REDACTED]"
		}
		c.LLM.Profiles[i] = p
	}
	return c.String()
}
