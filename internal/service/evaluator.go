package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/sla"
)

// Evaluation is the full SLA picture for one ticket at one instant.
type Evaluation struct {
	Resposta    *domain.SLAMetric
	Resolucao   *domain.SLAMetric
	StatusGeral domain.SLAStatus
}

// Evaluate computes both SLA metrics and the aggregate status for a ticket.
// Every code path that produces an SLA status (the live query endpoint, the
// batch jobs, the event-driven recompute) goes through this function, so the
// pull and push paths cannot drift apart.
func Evaluate(ticket *domain.Ticket, policy domain.SLAPolicy, now time.Time, warningRatio float64, logger *zap.Logger) Evaluation {
	paused := ticket.IsPaused()

	resposta := buildMetric(
		ticket, policy.TempoRespostaHoras, ticket.DataPrimeiraResposta, now, paused, warningRatio, logger,
	)
	resolucao := buildMetric(
		ticket, policy.TempoResolucaoHoras, ticket.DataConclusao, now, paused, warningRatio, logger,
	)

	return Evaluation{
		Resposta:    resposta,
		Resolucao:   resolucao,
		StatusGeral: domain.MoreSevere(resposta.Status, resolucao.Status),
	}
}

// buildMetric evaluates one clock. freeze is the metric's stop timestamp
// (first response or resolution); while nil the clock runs against now.
func buildMetric(ticket *domain.Ticket, limit *float64, freeze *time.Time, now time.Time, paused bool, warningRatio float64, logger *zap.Logger) *domain.SLAMetric {
	start := ticket.DataAbertura
	end := now
	if freeze != nil {
		end = *freeze
	}

	if end.Before(start) && logger != nil {
		// inconsistent timestamps are clamped to zero by the clock, never fatal
		logger.Warn("sla clock end before start",
			zap.Int64("chamado_id", ticket.ID),
			zap.Time("start", start),
			zap.Time("end", end),
		)
	}

	elapsed := sla.ElapsedHours(start, end, ticket.HoldIntervals)
	status := sla.Classify(sla.ClassifyInput{
		Limit:        limit,
		Elapsed:      elapsed,
		Frozen:       freeze != nil,
		Paused:       paused,
		WarningRatio: warningRatio,
	})

	return &domain.SLAMetric{
		TempoDecorridoHoras: elapsed,
		TempoLimiteHoras:    limit,
		PercentualConsumido: sla.PercentConsumed(elapsed, limit),
		Status:              status,
		DataInicio:          start,
		DataFim:             freeze,
	}
}

// NewRecord snapshots an evaluation into the persisted SLA record shape.
func NewRecord(ticketID int64, eval Evaluation, computedAt time.Time) *domain.SLARecord {
	return &domain.SLARecord{
		ChamadoID:      ticketID,
		Resposta:       eval.Resposta,
		Resolucao:      eval.Resolucao,
		StatusGeral:    eval.StatusGeral,
		LastComputedAt: computedAt,
	}
}
