package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/service"
)

// SyncHandler exposes the operator batch endpoints.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler constructs handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: syncService}
}

// SyncAll POST /sla/sync/todos-chamados.
func (h *SyncHandler) SyncAll(c *fiber.Ctx) error {
	stats, err := h.sync.InitialSync(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.SyncResponse{
		TotalChamados: stats.TotalChamados,
		Sincronizados: stats.Sincronizados,
		EmDia:         stats.EmDia,
		Vencidos:      stats.Vencidos,
		EmAndamento:   stats.EmAndamento,
		Congelados:    stats.Congelados,
		Erros:         stats.Erros,
	})
}

// RecalculateAll POST /sla/recalcular/painel.
func (h *SyncHandler) RecalculateAll(c *fiber.Ctx) error {
	stats, err := h.sync.RecalculateAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.RecalcResponse{
		TotalRecalculados: stats.TotalRecalculados,
		EmDia:             stats.EmDia,
		Vencidos:          stats.Vencidos,
		EmAndamento:       stats.EmAndamento,
		Congelados:        stats.Congelados,
		Erros:             stats.Erros,
	})
}

// PopulateFirstResponse POST /sla/maintenance/populate-primeira-resposta.
func (h *SyncHandler) PopulateFirstResponse(c *fiber.Ctx) error {
	stats, err := h.sync.BackfillFirstResponse(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.BackfillResponse{
		OK:               true,
		Message:          "dados de primeira resposta populados",
		TotalAtualizados: stats.Atualizados,
		TotalPulados:     stats.Pulados,
		Erros:            stats.Erros,
		CacheInvalidado:  true,
	})
}
