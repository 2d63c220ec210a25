package sla

import "github.com/spec-kit/sla-service/internal/domain"

// DefaultWarningRatio is the elapsed/limit ratio at which an active metric
// becomes proximo_vencer. Overridable via SLA_WARNING_RATIO.
const DefaultWarningRatio = 0.8

// ClassifyInput carries everything Classify needs. Elapsed must already be
// computed against the freeze timestamp when Frozen is true, which is what
// makes reclassification of a frozen metric idempotent.
type ClassifyInput struct {
	Limit        *float64
	Elapsed      float64
	Frozen       bool
	Paused       bool
	WarningRatio float64
}

// Classify maps a metric's inputs to one of the seven SLA statuses.
// Pure function; live queries and batch recomputation share it so the two
// paths can never disagree. First matching rule wins:
//
//  1. no limit            -> sem_sla
//  2. clock frozen        -> cumprido / violado (terminal)
//  3. currently paused    -> pausado
//  4. elapsed > limit     -> vencido_ativo
//  5. elapsed >= ratio*limit -> proximo_vencer
//  6. otherwise           -> dentro_prazo
func Classify(in ClassifyInput) domain.SLAStatus {
	if in.Limit == nil {
		return domain.SLAStatusSemSLA
	}
	limit := *in.Limit
	if in.Frozen {
		if in.Elapsed > limit {
			return domain.SLAStatusViolado
		}
		return domain.SLAStatusCumprido
	}
	if in.Paused {
		return domain.SLAStatusPausado
	}
	if in.Elapsed > limit {
		return domain.SLAStatusVencidoAtivo
	}
	ratio := in.WarningRatio
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultWarningRatio
	}
	if in.Elapsed >= ratio*limit {
		return domain.SLAStatusProximoVencer
	}
	return domain.SLAStatusDentroPrazo
}

// PercentConsumed returns elapsed/limit*100, or nil when no limit applies.
func PercentConsumed(elapsed float64, limit *float64) *float64 {
	if limit == nil || *limit <= 0 {
		return nil
	}
	pct := elapsed / *limit * 100
	return &pct
}
