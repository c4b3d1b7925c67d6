package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/harun/taskpilot/pkg/llm"
)

// Kind names a registered agent implementation
type Kind string

const (
	KindMonologue Kind = "MonologueAgent"
	KindDummy     Kind = "DummyAgent"
)

func (k Kind) String() string { return string(k) }

// Agent decides the next action of a session
type Agent interface {
	Name() string
	Step(ctx context.Context, state *State) (Action, error)
}

// Constructor binds a new agent instance to a model client
type Constructor func(client llm.Client) (Agent, error)

// ActionType classifies what an agent did in one step
type ActionType string

const (
	ActionThink   ActionType = "think"
	ActionMessage ActionType = "message"
	ActionFinish  ActionType = "finish"
)

// Action is the outcome of one agent step
type Action struct {
	Type    ActionType `json:"action"`
	Content string     `json:"content"`
}

// ErrCharBudgetExceeded means a step would exceed the run's character budget
var ErrCharBudgetExceeded = errors.New("character budget exceeded")

// State is the per-session view an agent steps over. It is owned by the
// controller and only mutated from the session goroutine.
type State struct {
	Task          string
	WorkingDir    string
	Iteration     int
	MaxIterations int
	MaxChars      int
	History       []Action

	charsUsed int
}

// NewState creates the state of a fresh session
func NewState(task, workingDir string, maxIterations, maxChars int) *State {
	return &State{
		Task:          task,
		WorkingDir:    workingDir,
		MaxIterations: maxIterations,
		MaxChars:      maxChars,
	}
}

// CharsUsed returns the characters spent so far
func (s *State) CharsUsed() int { return s.charsUsed }

// Remaining returns the characters left in the budget
func (s *State) Remaining() int { return s.MaxChars - s.charsUsed }

// Consume spends n characters; spending past MaxChars records the overrun and fails
func (s *State) Consume(n int) error {
	s.charsUsed += n
	if s.MaxChars > 0 && s.charsUsed > s.MaxChars {
		return fmt.Errorf("%w: used %d of %d", ErrCharBudgetExceeded, s.charsUsed, s.MaxChars)
	}
	return nil
}

// Record appends a completed action to the history
func (s *State) Record(a Action) {
	s.History = append(s.History, a)
}
