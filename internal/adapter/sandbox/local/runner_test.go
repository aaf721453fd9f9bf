package local

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-grader.net/internal/adapter/logging"
	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/domain"
)

const shell domain.Language = "shell"

func newShellRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
	dir := t.TempDir()
	cfg := &config.LocalSandboxConfig{
		ScratchDir: dir,
		Interpreters: map[string]config.Interpreter{
			string(shell): {Command: "sh", Extension: ".sh"},
			"missing":     {Command: "definitely-not-an-interpreter", Extension: ".x"},
		},
	}
	return NewRunner(cfg, logging.NewNopLogger()), dir
}

func assertScratchRemoved(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecuteSuccessWithStdin(t *testing.T) {
	runner, dir := newShellRunner(t)

	res := runner.Execute(t.Context(), domain.NewExecutionRequest(shell, "read x\necho $((x + 1))\n", "41\n", 5*time.Second))

	assert.True(t, res.Succeeded)
	assert.Equal(t, "42\n", res.Stdout)
	assert.Greater(t, res.ElapsedSeconds, 0.0)
	assertScratchRemoved(t, dir)
}

func TestExecuteRuntimeError(t *testing.T) {
	runner, dir := newShellRunner(t)

	res := runner.Execute(t.Context(), domain.NewExecutionRequest(shell, "echo partial\necho boom >&2\nexit 3\n", "", 5*time.Second))
	assert.False(t, res.Succeeded)
	assert.Equal(t, domain.ErrorKindRuntime, res.Kind)
	assert.Equal(t, "boom\n", res.ErrorMessage)
	assert.Equal(t, "partial\n", res.Stdout)

	res = runner.Execute(t.Context(), domain.NewExecutionRequest(shell, "exit 4\n", "", 5*time.Second))
	assert.Equal(t, "Exit code: 4", res.ErrorMessage)
	assertScratchRemoved(t, dir)
}

func TestExecuteWallClockLimit(t *testing.T) {
	runner, dir := newShellRunner(t)

	res := runner.Execute(t.Context(), domain.NewExecutionRequest(shell, "exec sleep 5\n", "", 200*time.Millisecond))

	assert.False(t, res.Succeeded)
	assert.Equal(t, domain.ErrorKindWallTimeExceeded, res.Kind)
	assert.Equal(t, "Execution timeout (>1s)", res.ErrorMessage)
	assert.Less(t, res.ElapsedSeconds, 4.0)
	assertScratchRemoved(t, dir)
}

func TestExecuteSpawnFailure(t *testing.T) {
	runner, dir := newShellRunner(t)

	res := runner.Execute(t.Context(), domain.NewExecutionRequest("missing", "", "", time.Second))

	assert.Equal(t, domain.ErrorKindTransport, res.Kind)
	assertScratchRemoved(t, dir)
}

func TestExecuteUnknownLanguage(t *testing.T) {
	runner, _ := newShellRunner(t)

	res := runner.Execute(t.Context(), domain.NewExecutionRequest("cobol", "", "", time.Second))

	assert.Equal(t, domain.ErrorKindConfiguration, res.Kind)
}

func TestPreloadRunsBeforeVerbatimSource(t *testing.T) {
	runner, dir := newShellRunner(t)
	// $1 is the preload file, $2 the submission
	runner.cfg.Interpreters[string(shell)] = config.Interpreter{
		Command:   "sh",
		Args:      []string{"-c", `. "$1"; . "$2"`, "sh"},
		Extension: ".sh",
		Preload:   "echo preload\n",
	}

	res := runner.Execute(t.Context(), domain.NewExecutionRequest(shell, "echo body\nhead -n 1 \"$2\"\n", "", 5*time.Second))

	require.True(t, res.Succeeded, res.ErrorMessage)
	assert.Equal(t, "preload\nbody\necho body\n", res.Stdout)
	assertScratchRemoved(t, dir)
}

func newNodeRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node is not available")
	}
	cfg := config.NewLocalSandboxConfig()
	cfg.ScratchDir = t.TempDir()
	return NewRunner(cfg, logging.NewNopLogger()), cfg.ScratchDir
}

func TestNodeKeepsProgramSemantics(t *testing.T) {
	runner, dir := newNodeRunner(t)

	tests := []struct {
		name   string
		source string
		want   string
	}{{
		name:   "strict mode directive stays first",
		source: "'use strict';\nconsole.log((function(){ return this === undefined; })());\n",
		want:   "true\n",
	}, {
		name:   "stack lines match the submission",
		source: "console.log(new Error().stack.split('\\n')[1].match(/:(\\d+):\\d+\\)?$/)[1]);\n",
		want:   "1\n",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runner.Execute(t.Context(), domain.NewExecutionRequest(domain.LanguageJavaScript, tt.source, "", 10*time.Second))

			require.True(t, res.Succeeded, res.ErrorMessage)
			assert.Equal(t, tt.want, res.Stdout)
		})
	}
	assertScratchRemoved(t, dir)
}

func TestNodeUncaughtErrorIsRuntimeError(t *testing.T) {
	runner, dir := newNodeRunner(t)

	res := runner.Execute(t.Context(), domain.NewExecutionRequest(domain.LanguageJavaScript,
		"console.log('before');\nthrow new Error('boom');\n", "", 10*time.Second))

	assert.False(t, res.Succeeded)
	assert.Equal(t, domain.ErrorKindRuntime, res.Kind)
	assert.Contains(t, res.ErrorMessage, "boom")
	assert.Equal(t, "before\n", res.Stdout)
	assertScratchRemoved(t, dir)
}
