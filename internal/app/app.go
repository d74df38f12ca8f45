package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qsl-cards-backend/internal/observability"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	svc "github.com/yungbote/qsl-cards-backend/internal/services/cards"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Cards   *CardStore
	Service svc.Service
	Metrics *observability.Metrics
	Router  *gin.Engine

	server       *httpServer
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseOtelHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})

	metrics := observability.NewMetrics()

	cards, err := resolveCardStore(ctx, log, cfg, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}

	service := svc.NewService(log, cards.Store, svc.Keys{
		Sent:     cfg.SentCardsKey,
		Received: cfg.ReceivedCardsKey,
	})

	if strings.EqualFold(cfg.Environment, "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	handlerset := wireHandlers(log, service, cards)
	server := wireServer(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Cards:        cards,
		Service:      service,
		Metrics:      metrics,
		Router:       server.Engine,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + strings.TrimPrefix(a.Cfg.Port, ":")
	a.Log.Info("HTTP server listening", "addr", addr, "backend", a.Cards.Backend)
	return a.server.Run(addr)
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Cards != nil {
		if err := a.Cards.Close(); err != nil {
			a.Log.Warn("Closing card store failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
