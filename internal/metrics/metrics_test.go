package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harun/taskpilot/pkg/agent"
	"github.com/harun/taskpilot/pkg/controller"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if m.Registry() == nil {
		t.Error("Registry is nil")
	}
	if m.SessionsTotal == nil || m.SessionDuration == nil || m.SessionIterations == nil || m.ModelCharsTotal == nil {
		t.Error("metric vector is nil")
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		out  *controller.Outcome
		err  error
		want string
	}{
		{&controller.Outcome{Reason: controller.ReasonFinished}, nil, StatusFinished},
		{&controller.Outcome{Reason: controller.ReasonMaxIterations}, nil, StatusMaxIterations},
		{nil, fmt.Errorf("step: %w", agent.ErrCharBudgetExceeded), StatusBudget},
		{nil, context.Canceled, StatusCancelled},
		{nil, errors.New("boom"), StatusError},
	}

	for _, tt := range tests {
		if got := Status(tt.out, tt.err); got != tt.want {
			t.Errorf("Status(%v, %v) = %q, want %q", tt.out, tt.err, got, tt.want)
		}
	}
}

func TestObserveSessionAndWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveSession("DummyAgent", &controller.Outcome{Iterations: 3, CharsUsed: 120, Reason: controller.ReasonFinished}, nil, 2*time.Second)
	m.ObserveSession("DummyAgent", nil, errors.New("boom"), time.Second)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) != 4 {
		t.Errorf("expected 4 metric families, got %d", len(families))
	}

	path := filepath.Join(t.TempDir(), "taskpilot.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	body := string(data)

	for _, want := range []string{
		`taskpilot_sessions_total{agent="DummyAgent",status="finished"} 1`,
		`taskpilot_sessions_total{agent="DummyAgent",status="error"} 1`,
		`taskpilot_model_chars_total{agent="DummyAgent"} 120`,
		`taskpilot_session_iterations_count{agent="DummyAgent"} 1`,
		`taskpilot_session_duration_seconds_count{agent="DummyAgent"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
