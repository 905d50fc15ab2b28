// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/api"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/config"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/content"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/services"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/storage"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

const shutdownTimeout = 30 * time.Second

// Options overrides process-wide defaults, mainly for tests
type Options struct {
	// Registry receives the metrics; nil uses the default registry
	Registry *prometheus.Registry
	// Clock drives sessions; nil uses the real clock
	Clock simulation.Clock
	// SkipLoggerInit keeps the current global logger
	SkipLoggerInit bool
}

// App holds the wired service
type App struct {
	config   *config.Config
	logger   *utils.Logger
	metrics  *utils.MetricsCollector
	library  *content.Library
	sessions *services.SessionService
	hub      *api.WebSocketManager
	limiter  *api.RateLimiter
	router   *gin.Engine
	server   *http.Server
}

// New builds every component from cfg
func New(cfg *config.Config, opts Options) (*App, error) {
	if !opts.SkipLoggerInit {
		logCfg := utils.LoggerConfig{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}
		if cfg.LogDir != "" {
			logCfg.File = filepath.Join(cfg.LogDir, "app.log")
		}
		if err := utils.InitLogger(logCfg); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	logger := utils.GetLogger()

	var store *storage.ScenarioStore
	if cfg.ScenarioDir != "" {
		s, err := storage.NewScenarioStore(cfg.ScenarioDir)
		if err != nil {
			return nil, fmt.Errorf("open scenario dir: %w", err)
		}
		store = s
	}
	library, err := content.NewLibrary(store)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}

	var (
		metrics  *utils.MetricsCollector
		gatherer prometheus.Gatherer
	)
	if opts.Registry != nil {
		metrics = utils.NewMetricsCollector(opts.Registry)
		gatherer = opts.Registry
	} else {
		metrics = utils.GetMetricsCollector()
	}

	hub := api.NewWebSocketManager(metrics)
	sessions := services.NewSessionService(library, services.SessionConfig{
		DecisionSeconds:        cfg.DecisionSeconds,
		PacingThresholdSeconds: cfg.PacingThresholdSeconds,
		IdleTTL:                cfg.SessionIdleTTL,
	}, opts.Clock, metrics)
	sessions.Listener = hub
	sessions.AudioFor = func(sessionID string) audio.Player {
		return audio.Multi{
			audio.Logging{Logger: logger},
			audio.Forwarder{Send: hub.SoundSender(sessionID)},
		}
	}

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := api.NewHandler(sessions, library, hub, metrics, cfg.AllowedOrigins, cfg.DebugMode)
	router := api.SetupRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		DebugMode:      cfg.DebugMode,
		Limiter:        limiter,
		Gatherer:       gatherer,
	})

	logger.Info("application initialised", map[string]interface{}{
		"scenarios":        len(library.List()),
		"decision_seconds": cfg.DecisionSeconds,
		"debug":            cfg.DebugMode,
	})

	return &App{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		library:  library,
		sessions: sessions,
		hub:      hub,
		limiter:  limiter,
		router:   router,
		server: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler is the HTTP handler of the app
func (a *App) Handler() http.Handler { return a.router }

// Sessions is the session registry
func (a *App) Sessions() *services.SessionService { return a.sessions }

// Config is the loaded configuration
func (a *App) Config() *config.Config { return a.config }

// StartBackground starts the hub and the sweepers; they stop with ctx
func (a *App) StartBackground(ctx context.Context) {
	go a.hub.Run(ctx)
	a.sessions.StartCleanup(ctx)
	a.limiter.StartCleanup(ctx)
}

// Run serves HTTP until ctx is done and then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.StartBackground(bgCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", map[string]interface{}{"addr": a.server.Addr})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.sessions.CloseAll()
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the server and closes every session
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down", nil)
	err := a.server.Shutdown(ctx)
	a.sessions.CloseAll()
	_ = a.logger.Sync()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
