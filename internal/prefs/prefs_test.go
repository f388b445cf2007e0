package prefs_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/ymfactory/internal/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileIsEmpty(t *testing.T) {
	s := prefs.Open(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.True(t, s.Bool(prefs.LogPanelExpanded, true))
	assert.False(t, s.Bool(prefs.LogPanelExpanded, false))
}

func TestSetBoolPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	s := prefs.Open(path, nil)
	require.NoError(t, s.SetBool(prefs.LogPanelExpanded, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_panel_expanded: true")

	reopened := prefs.Open(path, nil)
	assert.True(t, reopened.Bool(prefs.LogPanelExpanded, false))
}

func TestCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::\n\t- not yaml ["), 0o644))

	var buf bytes.Buffer
	s := prefs.Open(path, slog.New(slog.NewTextHandler(&buf, nil)))

	assert.False(t, s.Bool(prefs.LogPanelExpanded, false))
	assert.Contains(t, buf.String(), "ignoring corrupt prefs file")

	require.NoError(t, s.SetBool(prefs.LogPanelExpanded, true))
	assert.True(t, prefs.Open(path, nil).Bool(prefs.LogPanelExpanded, false))
}

func TestNonBoolValueFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_panel_expanded: sometimes\n"), 0o644))

	s := prefs.Open(path, nil)
	assert.True(t, s.Bool(prefs.LogPanelExpanded, true))
}

func TestInMemoryStore(t *testing.T) {
	s := prefs.Open("", nil)
	require.NoError(t, s.SetBool("k", true))
	assert.True(t, s.Bool("k", false))
}

func TestDefaultPathFromEnv(t *testing.T) {
	t.Setenv("YMF_PREFS_FILE", "/tmp/custom-prefs.yaml")
	assert.Equal(t, "/tmp/custom-prefs.yaml", prefs.DefaultPath())
}
