package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestApp(t *testing.T) {
	a := NewTestApp()

	require.NotNil(t, a.Config)
	require.NotNil(t, a.Logger)
	require.NotNil(t, a.Parser)
	require.NotNil(t, a.AnalysisService)
	assert.False(t, a.StartupTime.IsZero())
}

func TestNewApp_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stratview.toml")
	content := `
[analysis]
currency = "A$"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "A$", a.Config.Analysis.Currency)
	assert.Equal(t, "A$", a.AnalysisService.Currency())
}

func TestNewApp_MissingConfigUsesDefaults(t *testing.T) {
	a, err := NewApp(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 8080, a.Config.Server.Port)
	assert.Equal(t, "$", a.AnalysisService.Currency())
}
