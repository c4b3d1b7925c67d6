package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harun/taskpilot/internal/bootstrap"
	"github.com/harun/taskpilot/internal/options"
	"github.com/harun/taskpilot/internal/task"
	"github.com/harun/taskpilot/pkg/agent"
	"github.com/harun/taskpilot/pkg/controller"
	"github.com/harun/taskpilot/pkg/llm"
	"github.com/harun/taskpilot/pkg/session"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTaskFromFile(t *testing.T) {
	cfgPath := testEnv(t)
	deps := testDeps("from stdin", false)
	require.NoError(t, afero.WriteFile(deps.Fs, "plan.txt", []byte("build X"), 0o644))

	out, _, err := execute(t, deps, "--config", cfgPath, "-c", "DummyAgent", "-f", "plan.txt", "-t", "ignored", "-d", "/work")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `Running agent DummyAgent (model: claude-sonnet-4-20250514, directory: /work) with task: "build X"`, lines[0])
	assert.Equal(t, "build X", lines[1])
}

func TestRunTaskFromStdin(t *testing.T) {
	cfgPath := testEnv(t)

	out, _, err := execute(t, testDeps("do Y", false), "--config", cfgPath, "-c", "DummyAgent")

	require.NoError(t, err)
	assert.Contains(t, out, `directory: none) with task: "do Y"`)
}

func TestRunInlineTaskIgnoresStdin(t *testing.T) {
	cfgPath := testEnv(t)

	out, _, err := execute(t, testDeps("piped", false), "--config", cfgPath, "-c", "DummyAgent", "-t", "do Z")

	require.NoError(t, err)
	assert.Contains(t, out, `with task: "do Z"`)
	assert.NotContains(t, out, "piped")
}

func TestRunNoTaskProvided(t *testing.T) {
	cfgPath := testEnv(t)

	out, _, err := execute(t, testDeps("", true), "--config", cfgPath)

	assert.ErrorIs(t, err, task.ErrNoTaskProvided)
	assert.Empty(t, out)
}

func TestRunUnreadableTaskFile(t *testing.T) {
	cfgPath := testEnv(t)

	out, _, err := execute(t, testDeps("", false), "--config", cfgPath, "-f", "missing.txt", "-t", "fallback")

	var unreadable *task.FileUnreadableError
	require.True(t, errors.As(err, &unreadable))
	assert.Equal(t, "missing.txt", unreadable.Path)
	assert.Empty(t, out)
}

func TestRunUnknownAgent(t *testing.T) {
	cfgPath := testEnv(t)
	deps := testDeps("", true)
	clientCalls := 0
	deps.NewClient = func(llm.Options) (llm.Client, error) {
		clientCalls++
		return &stubClient{}, nil
	}

	out, _, err := execute(t, deps, "--config", cfgPath, "-c", "Nonexistent", "-t", "anything")

	assert.ErrorIs(t, err, agent.ErrUnknownAgentClass)
	assert.Contains(t, err.Error(), "Nonexistent")
	assert.Equal(t, 0, clientCalls)
	assert.Empty(t, out)
}

func TestRunMissingCredentials(t *testing.T) {
	cfgPath := testEnv(t)
	deps := testDeps("", true)
	deps.NewClient = llm.New

	out, _, err := execute(t, deps, "--config", cfgPath, "-t", "anything")

	assert.ErrorIs(t, err, llm.ErrNoCredentials)
	assert.Empty(t, out)
}

func TestRunPassesResolvedOptionsToRunner(t *testing.T) {
	cfgPath := testEnv(t)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
  "llm": {"model": "gpt-4o"},
  "agent": {"max_iterations": 12, "max_chars": 3456},
  "workspace_dir": "/from/config"
}`), 0o600))

	var seen *bootstrap.Session
	var seenOpts llm.Options
	deps := testDeps("", true)
	deps.NewClient = func(opts llm.Options) (llm.Client, error) {
		seenOpts = opts
		return &stubClient{}, nil
	}
	deps.Runner = bootstrap.RunnerFunc(func(_ context.Context, s *bootstrap.Session) (*controller.Outcome, error) {
		seen = s
		return &controller.Outcome{Reason: controller.ReasonMaxIterations}, nil
	})

	out, _, err := execute(t, deps, "--config", cfgPath, "-t", "fix it", "-i", "3", "--unknown-flag", "stray-positional")

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "MonologueAgent", seen.AgentName)
	assert.Equal(t, "gpt-4o", seen.ModelName)
	assert.Equal(t, "/from/config", seen.Directory)
	assert.Equal(t, "fix it", seen.Task)
	assert.Equal(t, 3, seen.MaxIterations)
	assert.Equal(t, 3456, seen.MaxChars)
	assert.NotEmpty(t, seen.ID)
	require.NotNil(t, seen.Agent)
	assert.Equal(t, "MonologueAgent", seen.Agent.Name())
	assert.Equal(t, "gpt-4o", seenOpts.Model)
	assert.Equal(t, `Running agent MonologueAgent (model: gpt-4o, directory: /from/config) with task: "fix it"`+"\n", out)
}

func TestRunMonologueWithStubModel(t *testing.T) {
	cfgPath := testEnv(t)

	out, _, err := execute(t, testDeps("", true), "--config", cfgPath, "-t", "say done")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "done\n"))
}

func TestRunRunnerErrorPassesThrough(t *testing.T) {
	cfgPath := testEnv(t)
	boom := errors.New("runner failed")
	deps := testDeps("", true)
	deps.Runner = bootstrap.RunnerFunc(func(context.Context, *bootstrap.Session) (*controller.Outcome, error) {
		return nil, boom
	})

	_, _, err := execute(t, deps, "--config", cfgPath, "-t", "x")

	assert.Same(t, boom, err)
}

func TestRunUsageErrors(t *testing.T) {
	cfgPath := testEnv(t)

	t.Run("non-positive cap", func(t *testing.T) {
		_, _, err := execute(t, testDeps("", true), "--config", cfgPath, "-t", "x", "-n", "0")

		var usage *options.UsageError
		require.True(t, errors.As(err, &usage))
		assert.Equal(t, options.FlagMaxChars, usage.Flag)
	})

	t.Run("bad log level", func(t *testing.T) {
		_, _, err := execute(t, testDeps("", true), "--config", cfgPath, "--log-level", "loud", "-t", "x")

		var usage *options.UsageError
		require.True(t, errors.As(err, &usage))
		assert.Equal(t, "log-level", usage.Flag)
	})
}

func TestRunDebugLogsGoToStderr(t *testing.T) {
	cfgPath := testEnv(t)

	out, errOut, err := execute(t, testDeps("", true), "--config", cfgPath, "--log-level", "debug", "-c", "DummyAgent", "-t", "x")

	require.NoError(t, err)
	assert.Contains(t, errOut, "Task resolved")
	assert.NotContains(t, out, "Task resolved")
}

func TestAuthProfiles(t *testing.T) {
	assert.Empty(t, authProfiles(nil))
}

func TestRunRecordsTranscript(t *testing.T) {
	cfgPath := testEnv(t)
	deps := testDeps("", true)

	_, _, err := execute(t, deps, "--config", cfgPath, "-c", "DummyAgent", "-t", "keep a record")
	require.NoError(t, err)

	store, err := session.NewStore(deps.Fs, filepath.Join(filepath.Dir(cfgPath), "sessions"))
	require.NoError(t, err)
	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)

	entries, err := store.Load(infos[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, session.EntryTask, entries[0].Kind)
	assert.Equal(t, "keep a record", entries[0].Content)
	assert.Equal(t, "DummyAgent", entries[0].Metadata["agent"])
	assert.Equal(t, session.EntryAction, entries[1].Kind)
	assert.Equal(t, "finish", entries[1].Type)
	assert.Equal(t, session.EntryOutcome, entries[2].Kind)
	assert.Equal(t, "finished", entries[2].Metadata["status"])
}

func TestRunTranscriptDisabled(t *testing.T) {
	cfgPath := testEnv(t)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"sessions": {"record": false}}`), 0o600))
	deps := testDeps("", true)

	_, _, err := execute(t, deps, "--config", cfgPath, "-c", "DummyAgent", "-t", "x")
	require.NoError(t, err)

	exists, err := afero.DirExists(deps.Fs, filepath.Join(filepath.Dir(cfgPath), "sessions"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunWritesMetricsFile(t *testing.T) {
	cfgPath := testEnv(t)
	metricsPath := filepath.Join(t.TempDir(), "run.prom")

	_, _, err := execute(t, testDeps("", true), "--config", cfgPath, "--metrics-file", metricsPath, "-c", "DummyAgent", "-t", "x")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `taskpilot_sessions_total{agent="DummyAgent",status="finished"} 1`)
}
