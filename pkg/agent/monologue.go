package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harun/taskpilot/pkg/llm"
)

const monologueSystemPrompt = `You are an autonomous agent working through a task one step at a time.
Each reply must be exactly one JSON object and nothing else:
{"action": "think" | "message" | "finish", "content": "<text>"}
Use "think" to reason, "message" to report progress to the user,
and "finish" with a final summary once the task is complete.`

// monologueWindow bounds how many past actions are replayed to the model
const monologueWindow = 20

// MonologueAgent keeps a running monologue and asks the model for one action per step
type MonologueAgent struct {
	client llm.Client
}

// NewMonologueAgent binds a monologue agent to client
func NewMonologueAgent(client llm.Client) (Agent, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	return &MonologueAgent{client: client}, nil
}

// Name returns the agent kind
func (a *MonologueAgent) Name() string { return string(KindMonologue) }

// Step asks the model for the next action given the monologue so far
func (a *MonologueAgent) Step(ctx context.Context, state *State) (Action, error) {
	req := llm.Request{
		System:   monologueSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(a.prompt(state))},
	}

	if sent := req.Chars(); state.MaxChars > 0 && sent > state.Remaining() {
		return Action{}, fmt.Errorf("%w: step needs %d, %d left", ErrCharBudgetExceeded, sent, state.Remaining())
	}

	resp, err := a.client.Call(ctx, req)
	if err != nil {
		return Action{}, fmt.Errorf("model call failed: %w", err)
	}

	if err := state.Consume(req.Chars() + len(resp.Content)); err != nil {
		return Action{}, err
	}

	return parseAction(resp.Content), nil
}

func (a *MonologueAgent) prompt(state *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TASK:\n%s\n", state.Task)
	if state.WorkingDir != "" {
		fmt.Fprintf(&b, "\nWORKING DIRECTORY: %s\n", state.WorkingDir)
	}

	history := state.History
	if skipped := len(history) - monologueWindow; skipped > 0 {
		fmt.Fprintf(&b, "\n[%d earlier steps omitted]\n", skipped)
		history = history[skipped:]
	}
	if len(history) > 0 {
		b.WriteString("\nYOUR MONOLOGUE SO FAR:\n")
		for _, act := range history {
			fmt.Fprintf(&b, "- %s: %s\n", act.Type, act.Content)
		}
	}

	fmt.Fprintf(&b, "\nThis is step %d of at most %d. What is your next action?", state.Iteration+1, state.MaxIterations)
	return b.String()
}

// parseAction extracts the JSON action from a reply; anything unparseable becomes a thought
func parseAction(reply string) Action {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		var act Action
		if err := json.Unmarshal([]byte(reply[start:end+1]), &act); err == nil {
			switch act.Type {
			case ActionThink, ActionMessage, ActionFinish:
				return act
			}
		}
	}
	return Action{Type: ActionThink, Content: strings.TrimSpace(reply)}
}
