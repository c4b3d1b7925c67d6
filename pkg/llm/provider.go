package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ProviderCreator creates a provider client for one model and profile
type ProviderCreator interface {
	NewProvider(model string, profile AuthProfile) (Client, error)
}

// ProviderFactory creates SDK-backed providers
type ProviderFactory struct{}

// NewProvider creates a new LLM provider based on auth profile
func (f *ProviderFactory) NewProvider(model string, profile AuthProfile) (Client, error) {
	switch profile.Provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(model, profile), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(model, profile), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}
}

// ProviderForModel infers the provider serving a model name
func ProviderForModel(model string) string {
	m := strings.ToLower(model)
	if strings.HasPrefix(m, "claude") || strings.HasPrefix(m, "anthropic/") {
		return ProviderAnthropic
	}
	return ProviderOpenAI
}

// Options configures New
type Options struct {
	Model      string
	Profiles   []AuthProfile
	MaxRetries int
	Factory    ProviderCreator
	Logger     zerolog.Logger
}

// New builds the model client for opts.Model: one provider per matching
// profile in priority order, each retried, chained for failover.
func New(opts Options) (Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("model name is required")
	}
	model := strings.TrimPrefix(opts.Model, "anthropic/")
	provider := ProviderForModel(opts.Model)

	factory := opts.Factory
	if factory == nil {
		factory = &ProviderFactory{}
	}

	profiles := make([]AuthProfile, 0, len(opts.Profiles))
	for _, p := range opts.Profiles {
		if p.Provider == provider {
			profiles = append(profiles, p)
		}
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s (model %s)", ErrNoCredentials, provider, opts.Model)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Priority < profiles[j].Priority
	})

	clients := make([]Client, 0, len(profiles))
	for _, profile := range profiles {
		c, err := factory.NewProvider(model, profile)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", profile.ID, err)
		}
		clients = append(clients, NewRetryingClient(c, opts.MaxRetries, opts.Logger.With().Str("profile", profile.ID).Logger()))
	}

	if len(clients) == 1 {
		return clients[0], nil
	}
	return NewFailoverClient(clients, opts.Logger), nil
}
