package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level   string
		debug   bool
		info    bool
		warning bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"", false, true, true},
	}

	for _, c := range cases {
		l := NewLogger(&config.LogConfig{Level: c.level, Output: "stderr"})
		assert.Equal(t, c.debug, l.Core().Enabled(-1), "debug enabled for level %q", c.level)
		assert.Equal(t, c.info, l.Core().Enabled(0), "info enabled for level %q", c.level)
		assert.Equal(t, c.warning, l.Core().Enabled(1), "warn enabled for level %q", c.level)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	l := NewLogger(&config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path, MaxSize: 1})
	l.Info("watchpoint triggered")
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"watchpoint triggered"`)
}

func TestLNeverNil(t *testing.T) {
	assert.NotNil(t, L())
	LogF("trace %d", 1)
}
