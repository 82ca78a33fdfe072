package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfgFile, debug, elfPath, evalSteps = "", false, "", 0
	serveTCP, serveAddr = false, ""

	var stdout, stderr bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEvalCommand(t *testing.T) {
	out, _, err := execute(t, "eval", "1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, "7 (0x00000007)\n", out)

	out, _, err = execute(t, "eval", "0x10", "<<", "4")
	require.NoError(t, err)
	assert.Equal(t, "256 (0x00000100)\n", out)

	out, _, err = execute(t, "eval", "$sp")
	require.NoError(t, err)
	assert.Equal(t, "2147483632 (0x7ffffff0)\n", out)

	out, _, err = execute(t, "eval", "*$sp")
	require.NoError(t, err)
	assert.Equal(t, "540352565 (0x20352035)\n", out)
}

func TestEvalCommandErrors(t *testing.T) {
	_, stderr, err := execute(t, "eval", "1 + #")
	require.Error(t, err)
	assert.Contains(t, stderr, "1 + #\n    ^\n")

	_, _, err = execute(t, "eval", "main")
	assert.Error(t, err)

	_, _, err = execute(t, "eval")
	assert.Error(t, err)

	_, _, err = execute(t, "eval", "--elf", filepath.Join(t.TempDir(), "missing.elf"), "1")
	assert.Error(t, err)
}

func TestServeRejectsStdoutLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  output: stdout\n"), 0o644))

	_, _, err := execute(t, "--config", path, "serve")
	assert.ErrorIs(t, err, errStdoutLogging)

	config.SetConfig(nil)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("expr:\n  max_tokens: 3\n"), 0o644))
	_, _, err := execute(t, "--config", good, "eval", "1 + 1 + 1")
	require.Error(t, err)
	assert.Equal(t, 3, config.GetConfig().Expr.MaxTokens)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  level: loud\n"), 0o644))
	_, _, err = execute(t, "--config", bad, "eval", "1")
	assert.Error(t, err)

	config.SetConfig(nil)
}
