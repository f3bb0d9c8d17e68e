package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, wd, c.ProjectRoot)
	assert.Equal(t, DefaultProjectMarker, c.ProjectMarker)
	assert.Equal(t, 5*time.Second, c.NotifyTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "none", c.Mirror.Kind)
	assert.NotEmpty(t, c.User)
	assert.NotNil(t, c.Software)
}

func TestDBPath(t *testing.T) {
	c := &Config{ProjectRoot: filepath.FromSlash("/proj")}
	assert.Equal(t, filepath.Join("/proj", "60_config", "data", "project.db"), c.DBPath())

	c.DatabasePath = "/elsewhere/p.db"
	assert.Equal(t, "/elsewhere/p.db", c.DBPath())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"orion"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, DefaultProjectMarker, cfg.ProjectMarker)
	assert.False(t, cfg.AssumeYes)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	jsonPath := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"project_root": "/from/json",
		"user":         "json-user",
		"log_level":    "debug",
	})
	t.Setenv("ORION_USER", "env-user")

	os.Args = []string{"orion", "-c", jsonPath, "-u", "flag-user", "scan"}

	cfg := LoadConfig()

	assert.Equal(t, "/from/json", cfg.ProjectRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "flag-user", cfg.User)
}
