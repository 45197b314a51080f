// Package restapi implements the REST x402 dispatcher (C9) and the
// discovery/introspection endpoints (C10), both mounted by internal/gateway.
package restapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/engine"
)

// API holds everything the REST handlers need: the engine, the payee
// address, and a handful of read-only display fields.
type API struct {
	Engine      *engine.Engine
	PayTo       string
	PublicURL   string
	StatsAPIKey string
	StartedAt   time.Time
}

// New creates a restapi.API.
func New(e *engine.Engine, payTo, publicURL, statsAPIKey string, startedAt time.Time) *API {
	return &API{Engine: e, PayTo: payTo, PublicURL: publicURL, StatsAPIKey: statsAPIKey, StartedAt: startedAt}
}

// Register mounts every REST route onto r.
func (a *API) Register(r gin.IRouter) {
	for _, s := range catalog.Skills {
		s := s
		if s.RequiresPayment() {
			r.GET("/x402/"+s.ID, a.handleGet(s))
		}
		r.POST("/x402/"+s.ID, a.handlePost(s))
	}

	r.GET("/.well-known/agent-card.json", a.agentCard)
	r.GET("/x402", a.serviceCatalogue)
	r.GET("/x402/bazaar", a.bazaar)
	r.GET("/x402/chains", a.chains)
	r.GET("/a2a-x402-compat", a.compat)
	r.GET("/a2a-x402-test", a.selfTest)
	r.GET("/stats", a.stats)
	r.GET("/health", a.health)
}
