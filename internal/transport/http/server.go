package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/config"
	"github.com/vovakirdan/linechat-server/internal/core"
	"github.com/vovakirdan/linechat-server/internal/metrics"
	"github.com/vovakirdan/linechat-server/internal/transport"
)

// NewServer builds the HTTP server: health, WebSocket chat, roster and metrics.
// m may be nil, in which case /metrics is not registered.
// /ws sits on the outer mux; gin's response writer refuses to hijack after the upgrade status.
func NewServer(hub *core.Hub, bridge *transport.Bridge, m *metrics.Metrics, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	httpLogger := logger.With().Str("component", "http").Logger()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(&httpLogger))

	router.GET("/health", healthHandler)

	api := NewAPIHandlers(hub)
	router.GET("/api/roster", api.Roster)

	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(bridge, cfg.MaxLineLength, &httpLogger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
