package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultAllowOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the given origins, or the local dev origins when none are set.
// A single "*" opens the API to any origin without credentials.
func CORS(allowOrigins ...string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Requested-With", "X-Request-Id", "X-Trace-Id"},
		ExposeHeaders: []string{"X-Request-Id", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}
	switch {
	case len(allowOrigins) == 1 && allowOrigins[0] == "*":
		cfg.AllowAllOrigins = true
	case len(allowOrigins) > 0:
		cfg.AllowOrigins = allowOrigins
		cfg.AllowCredentials = true
	default:
		cfg.AllowOrigins = defaultAllowOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
