package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "akhor.log")
	l, err := New(&Config{Level: LevelInfo, Format: FormatJSON, Output: "file", FilePath: path, Component: "tui"})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("reloaded", "tokens", 74)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "reloaded", entry["msg"])
	assert.Equal(t, "tui", entry["component"])
	assert.EqualValues(t, 74, entry["tokens"])
}

func TestFileOutputNeedsPath(t *testing.T) {
	_, err := New(&Config{Output: "file"})
	assert.Error(t, err)
	_, err = New(&Config{Output: "syslog"})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)

	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
