package agent

import (
	"context"

	"github.com/harun/taskpilot/pkg/llm"
)

// DummyAgent finishes on its first step by echoing the task
type DummyAgent struct{}

// NewDummyAgent ignores client; it exists to exercise the session pipeline
func NewDummyAgent(_ llm.Client) (Agent, error) {
	return &DummyAgent{}, nil
}

// Name returns the agent kind
func (a *DummyAgent) Name() string { return string(KindDummy) }

// Step finishes immediately
func (a *DummyAgent) Step(_ context.Context, state *State) (Action, error) {
	return Action{Type: ActionFinish, Content: state.Task}, nil
}
