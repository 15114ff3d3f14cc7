package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tendo1904/mas-lab/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "maslab.yaml", `
completion:
  base_url: http://localhost:8000/v1
  model: llama3
  timeout: 5s
planner:
  strategy: generative
memory:
  backend: sqlite
  path: data/notes.db
  top_k: 5
executor:
  step_isolation: false
`)

	cfg, err := config.LoadWithEnv(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/v1", cfg.Completion.BaseURL)
	assert.Equal(t, "llama3", cfg.Completion.Model)
	assert.Equal(t, 5*time.Second, cfg.Completion.Timeout)
	assert.Equal(t, "generative", cfg.Planner.Strategy)
	assert.Equal(t, "sqlite", cfg.Memory.Backend)
	assert.Equal(t, 5, cfg.Memory.TopK)
	assert.False(t, cfg.Executor.StepIsolation)

	// Untouched sections keep their defaults
	assert.Equal(t, "simple", cfg.Formatter.Strategy)
	assert.Equal(t, 1024, cfg.Completion.MaxTokens)
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	path := writeFile(t, "maslab.yaml", `
completion:
  temperature: 0
`)

	cfg, err := config.LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Zero(t, cfg.Completion.Temperature)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "maslab.json", `{"formatter": {"strategy": "generative"}, "memory": {"top_k": 7}}`)

	cfg, err := config.LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "generative", cfg.Formatter.Strategy)
	assert.Equal(t, 7, cfg.Memory.TopK)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "maslab.yaml", "completion:\n  model: from-file\n")

	cfg, err := config.LoadWithEnv(path, env(map[string]string{
		"OPENAI_API_BASE": "https://api.example.com/v1",
		"OPENAI_API_KEY":  "sk-test",
		"MODEL_NAME":      "from-env",
		"MASLAB_TOP_K":    "9",
		"MASLAB_OFFLINE":  "true",
		"MASLAB_PLANNER":  "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.Completion.BaseURL)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, "from-env", cfg.Completion.Model)
	assert.Equal(t, 9, cfg.Memory.TopK)
	assert.True(t, cfg.Completion.Offline)
	assert.Equal(t, "static", cfg.Planner.Strategy, "empty variables are ignored")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "Bad YAML", file: "planner: [unclosed"},
		{name: "Unknown strategy", file: "planner:\n  strategy: clever\n"},
		{name: "Bad backend", file: "memory:\n  backend: postgres\n"},
		{name: "Missing path", file: "memory:\n  backend: sqlite\n  path: \"\"\n"},
		{name: "Bad URL", file: "completion:\n  base_url: not a url\n"},
		{name: "Bad top k env", file: "", env: map[string]string{"MASLAB_TOP_K": "many"}},
		{name: "Zero top k env", file: "", env: map[string]string{"MASLAB_TOP_K": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "maslab.yaml", tt.file)
			_, err := config.LoadWithEnv(path, env(tt.env))
			assert.Error(t, err)
		})
	}
}
