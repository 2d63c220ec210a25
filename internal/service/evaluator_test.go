package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

var opened = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func altaPolicy() domain.SLAPolicy {
	return domain.SLAPolicy{
		ID:                  1,
		Prioridade:          domain.TicketPriorityAlta,
		TempoRespostaHoras:  hoursPtr(4),
		TempoResolucaoHoras: hoursPtr(24),
		Ativo:               true,
	}
}

func TestEvaluateApproachingDeadline(t *testing.T) {
	ticket := &domain.Ticket{
		ID:                   7,
		Prioridade:           domain.TicketPriorityAlta,
		Status:               domain.TicketStatusEmAndamento,
		DataAbertura:         opened,
		DataPrimeiraResposta: timePtr(opened.Add(1 * time.Hour)),
	}

	eval := Evaluate(ticket, altaPolicy(), opened.Add(20*time.Hour), 0.8, zap.NewNop())

	require.NotNil(t, eval.Resposta)
	assert.Equal(t, domain.SLAStatusCumprido, eval.Resposta.Status)
	assert.InDelta(t, 1.0, eval.Resposta.TempoDecorridoHoras, 1e-9)

	require.NotNil(t, eval.Resolucao)
	assert.Equal(t, domain.SLAStatusProximoVencer, eval.Resolucao.Status)
	assert.InDelta(t, 20.0, eval.Resolucao.TempoDecorridoHoras, 1e-9)
	require.NotNil(t, eval.Resolucao.PercentualConsumido)
	assert.InDelta(t, 83.333, *eval.Resolucao.PercentualConsumido, 0.001)

	assert.Equal(t, domain.SLAStatusProximoVencer, eval.StatusGeral)
}

func TestEvaluatePastDeadlineStillOpen(t *testing.T) {
	ticket := &domain.Ticket{
		ID:           7,
		Prioridade:   domain.TicketPriorityAlta,
		Status:       domain.TicketStatusEmAndamento,
		DataAbertura: opened,
	}

	eval := Evaluate(ticket, altaPolicy(), opened.Add(25*time.Hour), 0.8, zap.NewNop())

	assert.Equal(t, domain.SLAStatusVencidoAtivo, eval.Resolucao.Status)
	assert.Equal(t, domain.SLAStatusVencidoAtivo, eval.StatusGeral)
}

func TestEvaluateResolvedLateIsFrozenViolation(t *testing.T) {
	resolved := opened.Add(25 * time.Hour)
	ticket := &domain.Ticket{
		ID:                   7,
		Prioridade:           domain.TicketPriorityAlta,
		Status:               domain.TicketStatusResolvido,
		DataAbertura:         opened,
		DataPrimeiraResposta: timePtr(opened.Add(2 * time.Hour)),
		DataConclusao:        timePtr(resolved),
	}

	// evaluated well after resolution: the frozen clock must not keep running
	eval := Evaluate(ticket, altaPolicy(), opened.Add(100*time.Hour), 0.8, zap.NewNop())

	assert.Equal(t, domain.SLAStatusViolado, eval.Resolucao.Status)
	assert.InDelta(t, 25.0, eval.Resolucao.TempoDecorridoHoras, 1e-9)
	require.NotNil(t, eval.Resolucao.DataFim)
	assert.True(t, eval.Resolucao.DataFim.Equal(resolved))
	assert.Equal(t, domain.SLAStatusViolado, eval.StatusGeral)
}

func TestEvaluateSubtractsHoldIntervals(t *testing.T) {
	policy := domain.SLAPolicy{
		Prioridade:          domain.TicketPriorityNormal,
		TempoResolucaoHoras: hoursPtr(10),
		Ativo:               true,
	}
	ticket := &domain.Ticket{
		ID:           8,
		Prioridade:   domain.TicketPriorityNormal,
		Status:       domain.TicketStatusEmAndamento,
		DataAbertura: opened,
		HoldIntervals: []domain.HoldInterval{
			{Start: opened.Add(5 * time.Hour), End: timePtr(opened.Add(10 * time.Hour))},
		},
	}

	eval := Evaluate(ticket, policy, opened.Add(12*time.Hour), 0.8, zap.NewNop())

	assert.InDelta(t, 7.0, eval.Resolucao.TempoDecorridoHoras, 1e-9)
	require.NotNil(t, eval.Resolucao.PercentualConsumido)
	assert.InDelta(t, 70.0, *eval.Resolucao.PercentualConsumido, 1e-9)
	assert.Equal(t, domain.SLAStatusDentroPrazo, eval.Resolucao.Status)
}

func TestEvaluateOpenHoldMeansPaused(t *testing.T) {
	ticket := &domain.Ticket{
		ID:           9,
		Prioridade:   domain.TicketPriorityAlta,
		Status:       domain.TicketStatusPausado,
		DataAbertura: opened,
		HoldIntervals: []domain.HoldInterval{
			{Start: opened.Add(2 * time.Hour)},
		},
	}

	eval := Evaluate(ticket, altaPolicy(), opened.Add(6*time.Hour), 0.8, zap.NewNop())

	assert.Equal(t, domain.SLAStatusPausado, eval.Resposta.Status)
	assert.Equal(t, domain.SLAStatusPausado, eval.Resolucao.Status)
	assert.Equal(t, domain.SLAStatusPausado, eval.StatusGeral)
	// only active time counts
	assert.InDelta(t, 2.0, eval.Resolucao.TempoDecorridoHoras, 1e-9)
}

func TestEvaluateWithoutLimitsIsSemSLA(t *testing.T) {
	ticket := &domain.Ticket{
		ID:           10,
		Prioridade:   domain.TicketPriorityBaixa,
		Status:       domain.TicketStatusAberto,
		DataAbertura: opened,
	}
	policy := domain.SLAPolicy{Prioridade: domain.TicketPriorityBaixa}

	eval := Evaluate(ticket, policy, opened.Add(500*time.Hour), 0.8, zap.NewNop())

	assert.Equal(t, domain.SLAStatusSemSLA, eval.Resposta.Status)
	assert.Equal(t, domain.SLAStatusSemSLA, eval.Resolucao.Status)
	assert.Equal(t, domain.SLAStatusSemSLA, eval.StatusGeral)
	assert.Nil(t, eval.Resposta.PercentualConsumido)
	assert.Nil(t, eval.Resolucao.PercentualConsumido)
}

func TestEvaluateMixedMetricsTakeWorst(t *testing.T) {
	// response answered in time, resolution already blown
	ticket := &domain.Ticket{
		ID:                   11,
		Prioridade:           domain.TicketPriorityAlta,
		Status:               domain.TicketStatusEmAndamento,
		DataAbertura:         opened,
		DataPrimeiraResposta: timePtr(opened.Add(3 * time.Hour)),
	}

	eval := Evaluate(ticket, altaPolicy(), opened.Add(30*time.Hour), 0.8, zap.NewNop())

	assert.Equal(t, domain.SLAStatusCumprido, eval.Resposta.Status)
	assert.Equal(t, domain.SLAStatusVencidoAtivo, eval.Resolucao.Status)
	assert.Equal(t, domain.SLAStatusVencidoAtivo, eval.StatusGeral)
}

func TestNewRecordSnapshotsEvaluation(t *testing.T) {
	ticket := &domain.Ticket{
		ID:           12,
		Prioridade:   domain.TicketPriorityAlta,
		Status:       domain.TicketStatusEmAndamento,
		DataAbertura: opened,
	}
	now := opened.Add(2 * time.Hour)

	eval := Evaluate(ticket, altaPolicy(), now, 0.8, zap.NewNop())
	record := NewRecord(ticket.ID, eval, now)

	assert.Equal(t, ticket.ID, record.ChamadoID)
	assert.Equal(t, eval.StatusGeral, record.StatusGeral)
	assert.Equal(t, eval.Resposta, record.Resposta)
	assert.Equal(t, eval.Resolucao, record.Resolucao)
	assert.True(t, record.LastComputedAt.Equal(now))
}
