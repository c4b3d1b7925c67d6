package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harun/taskpilot/pkg/llm"
)

// ErrUnknownAgentClass matches any *UnknownAgentError
var ErrUnknownAgentClass = errors.New("unknown agent class")

// UnknownAgentError reports a name absent from the registry
type UnknownAgentError struct {
	Name  string
	Known []Kind
}

func (e *UnknownAgentError) Error() string {
	known := make([]string, len(e.Known))
	for i, k := range e.Known {
		known[i] = string(k)
	}
	return fmt.Sprintf("unknown agent class %q (registered: %s)", e.Name, strings.Join(known, ", "))
}

// Is lets errors.Is(err, ErrUnknownAgentClass) match
func (e *UnknownAgentError) Is(target error) bool {
	return target == ErrUnknownAgentClass
}

// Factory instantiates registered agents
type Factory struct {
	registry *Registry
}

// NewFactory creates a factory over registry
func NewFactory(registry *Registry) *Factory {
	return &Factory{registry: registry}
}

// Lookup returns the registration for name without constructing anything
func (f *Factory) Lookup(name string) (Registration, error) {
	reg, ok := f.registry.Lookup(Kind(name))
	if !ok {
		return Registration{}, &UnknownAgentError{Name: name, Known: f.registry.Kinds()}
	}
	return reg, nil
}

// Create looks name up once and constructs the agent bound to client
func (f *Factory) Create(name string, client llm.Client) (Agent, error) {
	reg, err := f.Lookup(name)
	if err != nil {
		return nil, err
	}

	a, err := reg.New(client)
	if err != nil {
		return nil, fmt.Errorf("failed to construct agent %s: %w", name, err)
	}
	return a, nil
}

// Registry returns the registry backing the factory
func (f *Factory) Registry() *Registry {
	return f.registry
}
