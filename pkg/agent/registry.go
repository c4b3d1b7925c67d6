package agent

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Registration declares one agent kind and how to build it
type Registration struct {
	Kind        Kind
	Description string
	New         Constructor
}

// Registry maps agent kinds to constructors. It is read-only after NewRegistry.
type Registry struct {
	entries map[Kind]Registration
}

// NewRegistry builds a registry from explicit registrations
func NewRegistry(regs ...Registration) (*Registry, error) {
	entries := make(map[Kind]Registration, len(regs))
	for _, reg := range regs {
		if strings.TrimSpace(string(reg.Kind)) == "" {
			return nil, errors.New("agent registration with empty kind")
		}
		if reg.New == nil {
			return nil, fmt.Errorf("agent %s: constructor is required", reg.Kind)
		}
		if _, dup := entries[reg.Kind]; dup {
			return nil, fmt.Errorf("agent %s registered twice", reg.Kind)
		}
		entries[reg.Kind] = reg
	}
	return &Registry{entries: entries}, nil
}

// MustRegistry is NewRegistry for static registration lists
func MustRegistry(regs ...Registration) *Registry {
	r, err := NewRegistry(regs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Builtin returns the registry of agents shipped with taskpilot
func Builtin() *Registry {
	return MustRegistry(
		Registration{
			Kind:        KindMonologue,
			Description: "keeps a running monologue and asks the model for one action per step",
			New:         NewMonologueAgent,
		},
		Registration{
			Kind:        KindDummy,
			Description: "finishes immediately by echoing the task, no model calls",
			New:         NewDummyAgent,
		},
	)
}

// Lookup returns the registration for kind
func (r *Registry) Lookup(kind Kind) (Registration, bool) {
	reg, ok := r.entries[kind]
	return reg, ok
}

// Kinds returns the registered kinds in sorted order
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Registrations returns every registration ordered by kind
func (r *Registry) Registrations() []Registration {
	out := make([]Registration, 0, len(r.entries))
	for _, k := range r.Kinds() {
		out = append(out, r.entries[k])
	}
	return out
}
