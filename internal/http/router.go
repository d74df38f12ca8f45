package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/qsl-cards-backend/internal/http/handlers"
	httpMW "github.com/yungbote/qsl-cards-backend/internal/http/middleware"
	"github.com/yungbote/qsl-cards-backend/internal/observability"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	Tracing     bool

	ActionHandler *httpH.ActionHandler
	CardHandler   *httpH.CardHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Single-endpoint dispatcher
		if cfg.ActionHandler != nil {
			api.POST("", cfg.ActionHandler.Dispatch)
			api.GET("", cfg.ActionHandler.Dispatch)
		}

		if cfg.CardHandler != nil {
			api.GET("/ping", cfg.CardHandler.Ping)
			api.GET("/stats", cfg.CardHandler.GetStats)
			api.GET("/chart", cfg.CardHandler.GetChartData)
			api.GET("/cards/:role", cfg.CardHandler.ListCards)
			api.POST("/cards/:role", cfg.CardHandler.SaveCard)
			api.PUT("/cards/:role", cfg.CardHandler.ImportCards)
			api.DELETE("/cards/:role/:id", cfg.CardHandler.DeleteCard)
		}
	}

	return r
}
