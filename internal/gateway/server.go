// Package gateway assembles the owned server-context value spec.md §9's
// re-architecture note calls for: a single constructed value holding the
// engine and both wire-surface dispatchers, threaded through handlers
// instead of the teacher's package-level globals.
package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2a402/gateway/internal/engine"
	"github.com/a2a402/gateway/internal/metrics"
	"github.com/a2a402/gateway/internal/restapi"
	"github.com/a2a402/gateway/internal/rpcapi"
)

// Server owns the gin router and every collaborator it dispatches to.
type Server struct {
	Router *gin.Engine
	Engine *engine.Engine

	httpServer *http.Server
}

// New assembles a Server: JSON-RPC mounted at "/" and "/a2a", the REST x402
// and discovery routes, and /metrics.
func New(e *engine.Engine, rpc *rpcapi.Dispatcher, rest *restapi.API, mx *metrics.Collector, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(slogMiddleware(log))
	r.Use(corsAndExtensions())

	r.POST("/", rpc.Handle)
	r.POST("/a2a", rpc.Handle)
	rest.Register(r)
	r.GET("/metrics", gin.WrapH(mx.Handler()))

	return &Server{Router: r, Engine: e}
}

// Run starts the HTTP server on addr and blocks until it stops.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Router}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func slogMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
