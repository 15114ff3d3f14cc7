package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Tendo1904/mas-lab"
	"github.com/Tendo1904/mas-lab/internal/config"
	"github.com/Tendo1904/mas-lab/pkg/adapters/echo"
	"github.com/Tendo1904/mas-lab/pkg/adapters/file"
	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/adapters/openai"
	"github.com/Tendo1904/mas-lab/pkg/adapters/redis"
	"github.com/Tendo1904/mas-lab/pkg/adapters/sqlite"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/observability"
	"github.com/Tendo1904/mas-lab/pkg/persistence/middleware"
	"github.com/Tendo1904/mas-lab/pkg/ports"
	"github.com/Tendo1904/mas-lab/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// App bundles everything a command needs, built once from the configuration.
type App struct {
	Config   config.Config
	Pipeline *maslab.Pipeline
	Memory   ports.MemoryStore
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Logger   *slog.Logger

	closers []io.Closer
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewApp wires stores, completion service and pipeline according to cfg.
// Extra hooks are merged with the metrics hooks.
func NewApp(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(nil),
	}

	var client *backend.Client
	redisClient := func() *backend.Client {
		if client == nil {
			client = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			app.closers = append(app.closers, client)
		}
		return client
	}

	mem, err := newMemoryStore(cfg, logger, redisClient)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if c, ok := mem.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	app.Memory = mem

	states, locker, err := newStateStore(cfg, redisClient)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	mws, err := stateMiddlewares(cfg.Sessions)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	states = middleware.Chain(states, mws...)

	opts := []maslab.Option{
		maslab.WithCompletionService(newCompletion(cfg, logger)),
		maslab.WithMemoryStore(mem),
		maslab.WithPlanner(cfg.Planner.Strategy),
		maslab.WithFormatter(cfg.Formatter.Strategy),
		maslab.WithTopK(cfg.Memory.TopK),
		maslab.WithStepIsolation(cfg.Executor.StepIsolation),
		maslab.WithMaxQuerySize(cfg.MaxQuerySize),
		maslab.WithLogger(logger),
		maslab.WithLifecycleHooks(app.Metrics.Hooks()),
	}
	for _, h := range hooks {
		opts = append(opts, maslab.WithLifecycleHooks(h))
	}
	app.Pipeline = maslab.New(opts...)

	sessionOpts := []session.Option{
		session.WithRunFunc(app.Pipeline.RunSession),
		session.WithLogger(logger),
	}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(states, sessionOpts...)
	return app, nil
}

func newCompletion(cfg config.Config, logger *slog.Logger) ports.CompletionService {
	if cfg.Completion.Offline {
		return echo.New()
	}
	temperature := cfg.Completion.Temperature
	return openai.New(openai.Config{
		BaseURL:     cfg.Completion.BaseURL,
		APIKey:      cfg.Completion.APIKey,
		Model:       cfg.Completion.Model,
		Temperature: &temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		Timeout:     cfg.Completion.Timeout,
	}, openai.WithLogger(logger))
}

func newMemoryStore(cfg config.Config, logger *slog.Logger, client func() *backend.Client) (ports.MemoryStore, error) {
	switch cfg.Memory.Backend {
	case "memory":
		return memory.NewNoteStore(), nil
	case "file":
		return file.NewNoteStore(cfg.Memory.Path, file.WithLogger(logger)), nil
	case "redis":
		return redis.NewNoteStore(client(),
			redis.WithNotesKey(cfg.Redis.Prefix+"notes"),
			redis.WithLogger(logger),
		), nil
	case "sqlite":
		store, err := sqlite.Open(cfg.Memory.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Memory.Backend)
	}
}

func newStateStore(cfg config.Config, client func() *backend.Client) (ports.StateStore, ports.DistributedLocker, error) {
	switch cfg.Sessions.Backend {
	case "memory":
		return memory.NewStore(), nil, nil
	case "file":
		return file.New(cfg.Sessions.Path), nil, nil
	case "redis":
		c := client()
		store := redis.NewFromClient(c,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Sessions.TTL),
		)
		return store, redis.NewLocker(c, cfg.Redis.Prefix), nil
	default:
		return nil, nil, fmt.Errorf("unknown sessions backend %q", cfg.Sessions.Backend)
	}
}

// stateMiddlewares builds the session store decorators. Redaction runs before encryption.
func stateMiddlewares(cfg config.SessionsConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.Redact {
		patterns := cfg.RedactPatterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultPIIPatterns
		}
		pii, err := middleware.NewPIIMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("sessions.encryption_key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range cfg.FallbackKeys {
			key, err := middleware.DecodeKey(k)
			if err != nil {
				return nil, fmt.Errorf("sessions.fallback_keys[%d]: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}
