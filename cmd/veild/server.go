package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/veil-social/veil/accounts"
	"github.com/veil-social/veil/automod/classifier"
	"github.com/veil-social/veil/automod/completion"
	"github.com/veil-social/veil/automod/countstore"
	"github.com/veil-social/veil/automod/engine"
	"github.com/veil-social/veil/automod/planner"
	"github.com/veil-social/veil/automod/rules"
	"github.com/veil-social/veil/transport"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	logger  *slog.Logger
	echo    *echo.Echo
	handler *transport.SubmissionHandler
	rules   *rules.Manager

	bind          string
	metricsListen string
}

type Config struct {
	Logger                *slog.Logger
	RulesDir              string
	ModerationEnabled     bool
	OpenAIHost            string
	OpenAIAPIKey          string
	ClassifierModel       string
	CompletionModel       string
	Backends              []string
	PlanMaxRetries        int
	ModerationChatIDs     []int64
	PublicationChannelIDs []int64
	ForwardingTypes       []string
	ThrottleDelay         time.Duration
	MediaGroupDelay       time.Duration
	DatabaseURL           string
	RedisURL              string
	Bind                  string
	MetricsListen         string
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ruleMgr := rules.NewManager(logger, config.RulesDir)
	if err := ruleMgr.Reload(); err != nil {
		return nil, fmt.Errorf("loading moderation rules: %w", err)
	}

	pl := planner.NewPlanner(logger, ruleMgr)
	pl.Enabled = config.ModerationEnabled
	if config.PlanMaxRetries > 0 {
		pl.MaxRetries = config.PlanMaxRetries
	}
	for _, backend := range config.Backends {
		switch backend {
		case "omni":
			logger.Info("configuring omni classifier backend", "model", config.ClassifierModel)
			pl.Classifier = classifier.NewOmniClient(config.OpenAIHost, config.OpenAIAPIKey, config.ClassifierModel)
		case "gpt":
			logger.Info("configuring completion planner backend", "model", config.CompletionModel)
			pl.Completer = completion.NewOpenAIClient(config.OpenAIHost, config.OpenAIAPIKey, config.CompletionModel)
		default:
			return nil, fmt.Errorf("unknown planner backend: %s", backend)
		}
	}

	var counters countstore.CountStore
	if config.RedisURL != "" {
		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %w", err)
		}
		counters = cnt
	} else {
		counters = countstore.NewMemCountStore()
	}

	db, err := accounts.OpenDatabase(logger, config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	users := accounts.NewUserService(logger, db, 1024, time.Minute)
	mods := accounts.NewModeratorService(logger, db)
	if err := mods.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("bootstrapping moderators: %w", err)
	}

	eng := engine.NewEngine(logger, pl)
	eng.Counters = counters
	eng.Fetcher = engine.NewHTTPImageFetcher()

	router := transport.NewRouter(logger, &logDelivery{logger: logger}, users, config.ModerationChatIDs, config.PublicationChannelIDs)

	handler := transport.NewSubmissionHandler(logger, router, eng, transport.SubmissionHandlerConfig{
		ModerationEnabled: config.ModerationEnabled,
		ForwardingTypes:   config.ForwardingTypes,
		MediaGroupDelay:   config.MediaGroupDelay,
	})
	handler.Users = users
	if config.ThrottleDelay > 0 {
		handler.Limiter = transport.NewUserThrottle(config.ThrottleDelay)
	}

	s := &Server{
		logger:        logger,
		handler:       handler,
		rules:         ruleMgr,
		bind:          config.Bind,
		metricsListen: config.MetricsListen,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger.With("subsystem", "echo")))
	e.GET("/_health", s.handleHealthCheck)
	e.POST("/submit", s.handleSubmit)
	e.POST("/rules/reload", s.handleRulesReload)
	s.echo = e

	return s, nil
}

type healthStatus struct {
	Status string `json:"status"`
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, healthStatus{Status: "ok"})
}

// handleSubmit accepts a message over HTTP and runs it through the full
// inbound pipeline. Intended for development and integration testing; real
// deployments feed messages from a chat transport.
func (s *Server) handleSubmit(c echo.Context) error {
	var msg transport.Message
	if err := c.Bind(&msg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.handler.HandleMessage(c.Request().Context(), &msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleRulesReload(c echo.Context) error {
	if err := s.rules.Reload(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"rules": len(s.rules.GetRules())})
}

func (s *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

// RunAll runs the API and metrics listeners until the context is canceled or
// a SIGTERM arrives, then shuts the API server down gracefully.
func (s *Server) RunAll(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.logger.Info("starting API server", "bind", s.bind)
		err := s.echo.Start(s.bind)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	eg.Go(func() error {
		s.logger.Info("starting metrics server", "listen", s.metricsListen)
		return s.RunMetrics(s.metricsListen)
	})

	eg.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
