package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tendo1904/mas-lab/internal/config"
	"github.com/Tendo1904/mas-lab/internal/logging"
	"github.com/Tendo1904/mas-lab/pkg/adapters/file"
	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/adapters/redis"
	"github.com/Tendo1904/mas-lab/pkg/adapters/sqlite"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Completion.Offline = true
	cfg.Memory.Backend = "memory"
	cfg.Sessions.Backend = "memory"
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_Backends(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		app := newTestApp(t, offlineConfig(t))
		assert.IsType(t, &memory.NoteStore{}, app.Memory)
		assert.IsType(t, &memory.Store{}, app.Sessions.Store())
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		cfg := offlineConfig(t)
		cfg.Memory.Backend = "file"
		cfg.Memory.Path = filepath.Join(dir, "memory.json")
		cfg.Sessions.Backend = "file"
		cfg.Sessions.Path = filepath.Join(dir, "sessions")

		app := newTestApp(t, cfg)
		assert.IsType(t, &file.NoteStore{}, app.Memory)
		assert.IsType(t, &file.Store{}, app.Sessions.Store())

		_, err := app.Sessions.Ask(context.Background(), "s1", "hi")
		require.NoError(t, err)
		assert.FileExists(t, cfg.Memory.Path)
		assert.FileExists(t, filepath.Join(cfg.Sessions.Path, "s1.json"))
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := offlineConfig(t)
		cfg.Memory.Backend = "redis"
		cfg.Sessions.Backend = "redis"
		cfg.Redis.Addr = mr.Addr()

		app := newTestApp(t, cfg)
		assert.IsType(t, &redis.NoteStore{}, app.Memory)
		assert.IsType(t, &redis.Store{}, app.Sessions.Store())

		_, err := app.Sessions.Ask(context.Background(), "s1", "hi")
		require.NoError(t, err)
		assert.True(t, mr.Exists("maslab:session:s1"))
		assert.True(t, mr.Exists("maslab:notes"))
		assert.False(t, mr.Exists("maslab:lock:s1"))
	})

	t.Run("SQLite", func(t *testing.T) {
		cfg := offlineConfig(t)
		cfg.Memory.Backend = "sqlite"
		cfg.Memory.Path = filepath.Join(t.TempDir(), "notes.db")

		app := newTestApp(t, cfg)
		assert.IsType(t, &sqlite.NoteStore{}, app.Memory)
	})

	t.Run("EncryptedAndRedactedSessions", func(t *testing.T) {
		cfg := offlineConfig(t)
		cfg.Sessions.Backend = "file"
		cfg.Sessions.Path = t.TempDir()
		cfg.Sessions.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
		cfg.Sessions.Redact = true

		app := newTestApp(t, cfg)
		_, err := app.Sessions.Ask(context.Background(), "s1", "write to jdoe@example.com")
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(cfg.Sessions.Path, "s1.json"))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "jdoe")
		assert.Contains(t, string(raw), "__encrypted__")

		loaded, err := app.Sessions.Load(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "write to ***", loaded.Query)
	})

	t.Run("InvalidEncryptionKey", func(t *testing.T) {
		cfg := offlineConfig(t)
		cfg.Sessions.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
		_, err := NewApp(cfg, logging.NewNop())
		assert.Error(t, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := offlineConfig(t)
		cfg.Memory.Backend = "tape"
		_, err := NewApp(cfg, logging.NewNop())
		assert.Error(t, err)

		cfg = offlineConfig(t)
		cfg.Sessions.Backend = "tape"
		_, err = NewApp(cfg, logging.NewNop())
		assert.Error(t, err)
	})
}

func TestRunInteractive(t *testing.T) {
	app := newTestApp(t, offlineConfig(t))
	dump := t.TempDir()
	var out bytes.Buffer

	err := RunInteractive(context.Background(), app, InteractiveOptions{
		In:      strings.NewReader("How to implement a function in python?\nhi\nQUIT\nnever asked\n"),
		Out:     &out,
		DumpDir: dump,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, ">>> Agents: router, planner")
	assert.Contains(t, text, ">>> History: 1")
	assert.Contains(t, text, ">>> History: 2")
	assert.Contains(t, text, ">>> Bye!")
	assert.NotContains(t, text, "never asked")

	entries, err := os.ReadDir(dump)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "state_"))

	data, err := os.ReadFile(filepath.Join(dump, entries[1].Name()))
	require.NoError(t, err)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "hi", snap["query"])
}

func TestRunInteractive_ExitConditions(t *testing.T) {
	for name, input := range map[string]string{
		"Empty line": "\nhi\n",
		"Exit":       "Exit\n",
		"EOF":        "",
	} {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(t, offlineConfig(t))
			var out bytes.Buffer
			err := RunInteractive(context.Background(), app, InteractiveOptions{In: strings.NewReader(input), Out: &out})
			require.NoError(t, err)
			assert.NotContains(t, out.String(), "Agents:")
		})
	}
}

func TestRunInteractive_Cancelled(t *testing.T) {
	app := newTestApp(t, offlineConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	err = RunInteractive(ctx, app, InteractiveOptions{In: r, Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunInteractive_Session(t *testing.T) {
	app := newTestApp(t, offlineConfig(t))
	err := RunInteractive(context.Background(), app, InteractiveOptions{
		In:        strings.NewReader("hi\nhello\n"),
		Out:       &bytes.Buffer{},
		SessionID: "cli",
		Quiet:     true,
	})
	require.NoError(t, err)

	state, err := app.Sessions.Load(context.Background(), "cli")
	require.NoError(t, err)
	assert.Len(t, state.SessionHistory, 2)
}

func TestAskOnce(t *testing.T) {
	app := newTestApp(t, offlineConfig(t))

	var out bytes.Buffer
	require.NoError(t, AskOnce(context.Background(), app, &out, "", "hi", true, nil))
	var snap map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "hi", snap["query"])

	out.Reset()
	require.NoError(t, AskOnce(context.Background(), app, &out, "", "hi", false, func(s string) (string, error) {
		return "**" + s + "**\n", nil
	}))
	assert.True(t, strings.HasPrefix(out.String(), "**"))

	assert.Error(t, AskOnce(context.Background(), app, &out, "", "   ", false, nil))
}
