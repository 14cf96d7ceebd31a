package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/studybuddy-ai/studybuddy/internal/ai"
	"github.com/studybuddy-ai/studybuddy/internal/content"
	"github.com/studybuddy-ai/studybuddy/internal/platform/cache"
	"github.com/studybuddy-ai/studybuddy/internal/platform/config"
	"github.com/studybuddy-ai/studybuddy/internal/platform/database"
	"github.com/studybuddy-ai/studybuddy/internal/quiz"
	"github.com/studybuddy-ai/studybuddy/internal/syllabus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(newLogHandler(cfg.Log)))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newMux(srv),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogHandler builds the slog handler the config asks for. Unknown levels
// fall back to info, unknown formats to JSON.
func newLogHandler(cfg config.LogConfig) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

// buildServer wires storage, providers, and services from config. The
// returned cleanup closes external connections.
func buildServer(ctx context.Context, cfg *config.Config) (*server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var checks []func(context.Context) error

	persister, err := buildPersister(ctx, cfg, &cleanups, &checks)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	store := content.NewStore(persister)
	if err := store.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("loading content tree: %w", err)
	}

	router := ai.NewRouter()
	if cfg.AI.Google.APIKey != "" {
		router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey))
	}
	if cfg.AI.OpenRouter.APIKey != "" {
		router.Register("openrouter", ai.NewOpenRouterProvider(cfg.AI.OpenRouter.APIKey))
	}

	var quizCache *quiz.Cache
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting cache: %w", err)
		}
		cleanups = append(cleanups, func() { c.Close() })
		checks = append(checks, c.HealthCheck)
		quizCache = quiz.NewCache(c.Client, time.Duration(cfg.Quiz.CacheTTLHours)*time.Hour)
	}

	pipeline, err := quiz.NewPipeline(quiz.PipelineConfig{
		Generator: router,
		Cache:     quizCache,
		Count:     cfg.Quiz.QuestionCount,
		Model:     preferredModel(cfg),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("building quiz pipeline: %w", err)
	}

	quizzes, err := quiz.NewService(quiz.ServiceConfig{
		Store:        store,
		Pipeline:     pipeline,
		AdvanceDelay: time.Duration(cfg.Quiz.AdvanceDelayMs) * time.Millisecond,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("building quiz service: %w", err)
	}

	if cfg.SyllabusPath != "" {
		created, err := syllabus.NewImporter(store).ImportDir(ctx, cfg.SyllabusPath)
		if err != nil {
			slog.Warn("syllabus import failed", "path", cfg.SyllabusPath, "error", err)
		} else if created > 0 {
			slog.Info("syllabus imported", "subjects", created)
		}
	}

	ready := func(r *http.Request) error {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				return err
			}
		}
		return nil
	}

	return &server{store: store, quizzes: quizzes, ready: ready}, cleanup, nil
}

// buildPersister selects the storage backend. In postgres mode readiness
// pings the pool; in file mode the process is ready once it is up.
func buildPersister(ctx context.Context, cfg *config.Config, cleanups *[]func(), checks *[]func(context.Context) error) (content.Persister, error) {
	switch cfg.Storage.Mode {
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		*cleanups = append(*cleanups, db.Close)
		*checks = append(*checks, db.HealthCheck)

		return content.NewPostgresPersister(ctx, db.Pool)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
		return content.NewFilePersister(cfg.Storage.Path), nil
	}
}

func preferredModel(cfg *config.Config) string {
	if cfg.AI.Google.APIKey != "" && cfg.AI.Google.Model != "" {
		return cfg.AI.Google.Model
	}
	if cfg.AI.OpenRouter.APIKey != "" && cfg.AI.OpenRouter.Model != "" {
		return cfg.AI.OpenRouter.Model
	}
	return ""
}
