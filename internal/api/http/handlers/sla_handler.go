package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// SLAHandler serves the live SLA query path and the update hook.
type SLAHandler struct {
	live       *service.LiveStatusService
	resolver   *service.PolicyResolver
	dispatcher events.Dispatcher
}

// NewSLAHandler constructs handler.
func NewSLAHandler(live *service.LiveStatusService, resolver *service.PolicyResolver, dispatcher events.Dispatcher) *SLAHandler {
	return &SLAHandler{live: live, resolver: resolver, dispatcher: dispatcher}
}

// GetStatus GET /sla/chamado/:id/status.
func (h *SLAHandler) GetStatus(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	status, err := h.live.GetStatus(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(toStatusResponse(status))
}

// Recompute POST /sla/chamado/:id/recompute.
// Update hook for the ticket-management collaborator: a ticket mutation
// lands here and the background worker refreshes the persisted record.
func (h *SLAHandler) Recompute(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRecomputeRequested,
		ChamadoID: ticketID,
		Timestamp: time.Now(),
		Payload:   events.RecomputeRequestedPayload{Reason: c.Query("motivo")},
	}
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true, "chamado_id": ticketID})
}

// ListPolicies GET /sla/config.
func (h *SLAHandler) ListPolicies(c *fiber.Ctx) error {
	policies, err := h.resolver.ListPolicies(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		items = append(items, dto.PolicyResponse{
			ID:                  p.ID,
			Prioridade:          string(p.Prioridade),
			Categoria:           p.Categoria,
			TempoRespostaHoras:  p.TempoRespostaHoras,
			TempoResolucaoHoras: p.TempoResolucaoHoras,
			Ativo:               p.Ativo,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ticketID <= 0 {
		return 0, apperrors.NewValidationError("invalid chamado id", nil)
	}
	return ticketID, nil
}

func toStatusResponse(status *service.TicketSLAStatus) dto.SLAStatusResponse {
	abertura := status.DataAbertura
	return dto.SLAStatusResponse{
		ChamadoID:            status.ChamadoID,
		Prioridade:           string(status.Prioridade),
		StatusChamado:        string(status.StatusChamado),
		RespostaMetric:       toMetricResponse(status.Resposta),
		ResolucaoMetric:      toMetricResponse(status.Resolucao),
		StatusGeral:          string(status.StatusGeral),
		DataAbertura:         &abertura,
		DataPrimeiraResposta: status.DataPrimeiraResposta,
		DataConclusao:        status.DataConclusao,
	}
}

func toMetricResponse(metric *domain.SLAMetric) *dto.SLAMetricResponse {
	if metric == nil {
		return nil
	}
	return &dto.SLAMetricResponse{
		TempoDecorridoHoras: metric.TempoDecorridoHoras,
		TempoLimiteHoras:    metric.TempoLimiteHoras,
		PercentualConsumido: metric.PercentualConsumido,
		Status:              string(metric.Status),
		DataInicio:          metric.DataInicio,
		DataFim:             metric.DataFim,
	}
}
