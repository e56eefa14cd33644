package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	mem "scorewatch/adapters/memory"
	redisAdapter "scorewatch/adapters/redis"
	"scorewatch/api/httpapi"
	"scorewatch/config"
	"scorewatch/core"
	"scorewatch/engine"
	"scorewatch/integrations/webhook"
	"scorewatch/osuapi"
	"scorewatch/realtime"
	"scorewatch/search"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Bus     *engine.EventBus
	Tracker *engine.Tracker
	Search  *search.Engine
	Webhook *webhook.Sink
	Handler http.Handler
	Server  *http.Server
}

// Start bridges pipeline events to the live hub and webhook sink, then
// launches the ingestion loop. It returns immediately.
func (a *App) Start(ctx context.Context) {
	a.Bus.Subscribe(core.EventNewScores, a.Hub.Broadcast)
	a.Bus.Subscribe(core.EventNewSuspicious, a.Hub.Broadcast)
	a.Bus.Subscribe(core.EventNewSuspicious, func(_ context.Context, ev core.Event) {
		a.Webhook.OnEvent(ev)
	})
	go a.Tracker.Run(ctx)
}

// Stop drains the async event bus.
func (a *App) Stop() {
	a.Bus.Close()
}

func provideConfig(_ context.Context) (*config.Config, error) {
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideBus() *engine.EventBus {
	return engine.NewEventBus(engine.DispatchAsync)
}

func provideCache(cfg *config.Config) (engine.UserCache, error) {
	switch cfg.Cache.Adapter {
	case "memory":
		return mem.New(cfg.Cache.MaxEntries), nil
	case "redis":
		return redisAdapter.New(cfg.Cache.Redis)
	default:
		return nil, fmt.Errorf("unknown cache adapter: %s", cfg.Cache.Adapter)
	}
}

func provideOsuClient(cfg *config.Config) *osuapi.Client {
	return osuapi.NewClient(cfg.Osu.ClientID, cfg.Osu.ClientSecret,
		osuapi.WithBaseURL(cfg.Osu.BaseURL),
		osuapi.WithTimeout(cfg.Osu.Timeout))
}

func provideEnricher(client *osuapi.Client, cache engine.UserCache) *engine.Enricher {
	return engine.NewEnricher(engine.NewFetcher(client, cache))
}

func provideRecent(cfg *config.Config) *engine.RecentList {
	return engine.NewRecentList(cfg.Tracker.RecentCapacity)
}

func provideSuspicious() *engine.SuspiciousList {
	return engine.NewSuspiciousList()
}

func provideClassifier(cfg *config.Config, list *engine.SuspiciousList, bus *engine.EventBus) *engine.Classifier {
	return engine.NewClassifier(cfg.Tracker.SuspiciousMod, cfg.Tracker.SuspiciousPP, list, bus)
}

func provideTracker(client *osuapi.Client, enricher *engine.Enricher, classifier *engine.Classifier, recent *engine.RecentList, suspicious *engine.SuspiciousList, bus *engine.EventBus, cfg *config.Config) *engine.Tracker {
	return engine.NewTracker(client, enricher, classifier, recent, suspicious, bus, engine.TrackerOptions{
		Ruleset:       cfg.Tracker.Ruleset,
		PageSize:      cfg.Tracker.PageSize,
		PollInterval:  cfg.Tracker.PollInterval,
		BackfillPages: cfg.Tracker.BackfillPages,
		BackfillDelay: cfg.Tracker.BackfillDelay,
	})
}

func provideSearch(cfg *config.Config, cache engine.UserCache) *search.Engine {
	factory := func(clientID, clientSecret string) search.Source {
		return osuapi.NewClient(clientID, clientSecret,
			osuapi.WithBaseURL(cfg.Osu.BaseURL),
			osuapi.WithTimeout(cfg.Osu.Timeout))
	}
	return search.New(factory, cache, search.Options{
		Ruleset:    cfg.Tracker.Ruleset,
		PageSize:   cfg.Tracker.PageSize,
		Budget:     cfg.Tracker.SearchBudget,
		MaxScanned: cfg.Tracker.SearchMaxScanned,
	})
}

func provideWebhook(cfg *config.Config) *webhook.Sink {
	return webhook.New(cfg.Tracker.WebhookEndpoints)
}

func provideHandler(searcher *search.Engine, tracker *engine.Tracker, hub *realtime.Hub, cfg *config.Config) http.Handler {
	return httpapi.NewMux(searcher, tracker, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var out *os.File
	switch cfg.Logging.Output {
	case "stderr":
		out = os.Stderr
	default:
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
