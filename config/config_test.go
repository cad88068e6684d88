package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pevans/dailyarxiv/categories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the caller's environment and any .env file.
func clearEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{EnvCategories, EnvConfigPath, EnvMode, EnvOutput, EnvArchiveDSN, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies defaults when nothing is configured
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "html", cfg.Mode)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, []string{categories.DefaultCategory}, cfg.CategorySet().Codes())
}

// TestLoad_EnvOverridesFile verifies precedence
func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("categories: [cs.CV]\nmode: rss\nlog:\n  level: warn\n"), 0o600))
	t.Setenv(EnvConfigPath, configPath)
	t.Setenv(EnvCategories, "math.RT, math.QA")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "math.RT, math.QA", cfg.Categories)
	assert.Equal(t, []string{"math.QA", "math.RT"}, cfg.CategorySet().Codes())
	assert.Equal(t, "rss", cfg.Mode, "file value kept without env override")
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_DotEnv verifies .env in the working directory is read
func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvCategories)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, os.WriteFile(".env", []byte("CATEGORIES=math.QA\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(EnvCategories) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"math.QA"}, cfg.CategorySet().Codes())
}

// TestApplyFile_InvalidDuration verifies bad durations are reported
func TestApplyFile_InvalidDuration(t *testing.T) {
	cfg := Default()

	err := cfg.ApplyFile(&FileConfig{RateInterval: "often"})
	assert.Error(t, err)

	err = cfg.ApplyFile(&FileConfig{Timeout: "10s"})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

// TestApplyEnv_BlankCategories verifies blank CATEGORIES is ignored
func TestApplyEnv_BlankCategories(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCategories, "   ")

	cfg := Default()
	cfg.Categories = "math.RT"
	cfg.ApplyEnv()

	assert.Equal(t, "math.RT", cfg.Categories)
}

// TestCategorySet_CustomPriorities verifies file priorities replace the
// built-in table
func TestCategorySet_CustomPriorities(t *testing.T) {
	cfg := Default()
	cfg.Categories = "math.QA,cs.LG"
	cfg.Priorities = map[string]int{"cs.LG": 0}

	set := cfg.CategorySet()
	assert.Equal(t, []string{"cs.LG", "math.QA"}, set.Codes())
	assert.Equal(t, categories.DefaultPriority, set.PriorityOf("math.QA"))
}
