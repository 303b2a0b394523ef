package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithoutSinksIsNop(t *testing.T) {
	l := New(Options{Level: zapcore.DebugLevel})
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.log")
	opts := DefaultOptions()
	opts.File = path
	opts.Console = nil
	opts.Compress = false

	l := New(opts)
	l.Debug("hidden")
	l.Info("command committed", zap.String("op", "insertText"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 1, "debug entries are below the info level")
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "command committed", entries[0]["message"])
	assert.Equal(t, "insertText", entries[0]["op"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: zapcore.WarnLevel, Console: &buf})
	l.Info("quiet")
	l.Warn("loud")
	require.NoError(t, l.Sync())

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
