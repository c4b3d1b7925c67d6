package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harun/taskpilot/pkg/llm"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply string
}

func (c *stubClient) Call(_ context.Context, _ llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: c.reply}, nil
}

func (c *stubClient) Provider() string { return "stub" }
func (c *stubClient) Model() string    { return "stub-model" }

// testEnv isolates a command from the developer's config and provider keys
func testEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_BASE_URL", "OPENAI_BASE_URL"} {
		t.Setenv(key, "")
	}
	return filepath.Join(t.TempDir(), "taskpilot.json")
}

func testDeps(stdin string, interactive bool) Deps {
	return Deps{
		NewClient: func(llm.Options) (llm.Client, error) {
			return &stubClient{reply: `{"action":"finish","content":"done"}`}, nil
		},
		Fs:          afero.NewMemMapFs(),
		Stdin:       strings.NewReader(stdin),
		Interactive: func() bool { return interactive },
	}
}

func execute(t *testing.T, deps Deps, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	deps.Out = out
	deps.Err = errOut

	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Run("version flag", func(t *testing.T) {
		out, _, err := execute(t, testDeps("", true), "--version")
		require.NoError(t, err)

		assert.Contains(t, out, "taskpilot version")
		assert.Contains(t, out, GetVersion())
	})

	t.Run("help flag", func(t *testing.T) {
		out, _, err := execute(t, testDeps("", true), "--help")
		require.NoError(t, err)

		for _, flag := range []string{"--directory", "--task", "--file", "--agent-cls", "--model-name", "--max-iterations", "--max-chars"} {
			assert.Contains(t, out, flag)
		}
		assert.Contains(t, out, "agents")
	})

	t.Run("global flags", func(t *testing.T) {
		cmd := NewRootCmd(testDeps("", true))

		configFlag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, configFlag)
		assert.Equal(t, "", configFlag.DefValue)

		logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
		require.NotNil(t, logLevelFlag)
		assert.Equal(t, "", logLevelFlag.DefValue)
	})

	t.Run("fresh tree per call", func(t *testing.T) {
		a := NewRootCmd(testDeps("", true))
		b := NewRootCmd(testDeps("", true))
		assert.NotSame(t, a, b)
	})
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	assert.NotEmpty(t, version)
	assert.True(t, strings.HasPrefix(version, "0."))
}

func TestAgentsCommand(t *testing.T) {
	out, _, err := execute(t, testDeps("", true), "agents")
	require.NoError(t, err)

	assert.Contains(t, out, "DummyAgent")
	assert.Contains(t, out, "MonologueAgent")
	assert.Less(t, strings.Index(out, "DummyAgent"), strings.Index(out, "MonologueAgent"))
}
