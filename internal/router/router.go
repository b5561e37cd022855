package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/whoamid/backend/api/handler"
)

type Handlers struct {
	Whoami *apiHandler.WhoamiHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session introspection. Anonymous callers are serviced too, so the
	// handler resolves the session itself instead of sitting behind an
	// auth middleware.
	r.GET("/whoami", handlers.Whoami.Whoami)
	r.GET("/api/v1/whoami", handlers.Whoami.Whoami)

	return r
}
