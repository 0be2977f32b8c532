package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func executeWithBuffers(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	code := execute(args)
	return code, stdout.String(), stderr.String()
}

func TestExecute_PrintsUsageErrors(t *testing.T) {
	code, stdout, stderr := executeWithBuffers(t, "request", "/x", "-q", "novalue")

	assert.Equal(t, ExitUsageError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `Error: invalid --query: expected key=value, got "novalue"`)
}

func TestExecute_PrintsMockErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "routes.yaml")
	code, _, stderr := executeWithBuffers(t, "mock", missing)

	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, stderr, "Error: cannot access")
}

func TestExecute_PrintsUnknownCommand(t *testing.T) {
	code, _, stderr := executeWithBuffers(t, "nope")

	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestExecute_Version(t *testing.T) {
	code, stdout, stderr := executeWithBuffers(t, "version")

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "hitfwd version")
	assert.Empty(t, stderr)
}
