package app

import (
	qslhttp "github.com/yungbote/qsl-cards-backend/internal/http"
	httpH "github.com/yungbote/qsl-cards-backend/internal/http/handlers"
	"github.com/yungbote/qsl-cards-backend/internal/observability"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	svc "github.com/yungbote/qsl-cards-backend/internal/services/cards"
)

type httpServer = qslhttp.Server

type Handlers struct {
	Health *httpH.HealthHandler
	Action *httpH.ActionHandler
	Card   *httpH.CardHandler
}

func wireHandlers(log *logger.Logger, service svc.Service, cards *CardStore) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(cards.Health),
		Action: httpH.NewActionHandler(service),
		Card:   httpH.NewCardHandler(service),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *httpServer {
	return qslhttp.NewServer(qslhttp.RouterConfig{
		Log:           log.With("component", "http"),
		Metrics:       metrics,
		ServiceName:   cfg.Otel.ServiceName,
		CORSOrigins:   cfg.CORSAllowOrigins,
		Tracing:       cfg.Otel.Enabled,
		ActionHandler: handlers.Action,
		CardHandler:   handlers.Card,
		HealthHandler: handlers.Health,
	})
}
