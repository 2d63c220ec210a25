package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	SLA          *handlers.SLAHandler
	Sync         *handlers.SyncHandler
	OperatorAuth fiber.Handler
}

// RegisterRoutes wires HTTP routes. Batch endpoints that rewrite the whole
// record store sit behind the operator service-token middleware.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	slaGroup := app.Group("/sla")
	slaGroup.Get("/chamado/:id/status", cfg.SLA.GetStatus)
	slaGroup.Post("/chamado/:id/recompute", cfg.SLA.Recompute)
	slaGroup.Get("/config", cfg.SLA.ListPolicies)

	operator := slaGroup.Group("", cfg.OperatorAuth)
	operator.Post("/sync/todos-chamados", cfg.Sync.SyncAll)
	operator.Post("/recalcular/painel", cfg.Sync.RecalculateAll)
	operator.Post("/maintenance/populate-primeira-resposta", cfg.Sync.PopulateFirstResponse)
}
