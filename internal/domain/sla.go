package domain

import "time"

// SLAStatus classifies one SLA metric (or the whole ticket).
type SLAStatus string

const (
	SLAStatusSemSLA        SLAStatus = "sem_sla"
	SLAStatusDentroPrazo   SLAStatus = "dentro_prazo"
	SLAStatusCumprido      SLAStatus = "cumprido"
	SLAStatusPausado       SLAStatus = "pausado"
	SLAStatusProximoVencer SLAStatus = "proximo_vencer"
	SLAStatusVencidoAtivo  SLAStatus = "vencido_ativo"
	SLAStatusViolado       SLAStatus = "violado"
)

// statusSeverity orders statuses for status_geral aggregation. Higher wins.
var statusSeverity = map[SLAStatus]int{
	SLAStatusSemSLA:        0,
	SLAStatusDentroPrazo:   1,
	SLAStatusCumprido:      1,
	SLAStatusPausado:       2,
	SLAStatusProximoVencer: 3,
	SLAStatusVencidoAtivo:  4,
	SLAStatusViolado:       4,
}

// MoreSevere returns the more severe of two statuses. Ties keep a.
func MoreSevere(a, b SLAStatus) SLAStatus {
	if statusSeverity[b] > statusSeverity[a] {
		return b
	}
	return a
}

// MetricKind distinguishes the two SLA clocks tracked per ticket.
type MetricKind string

const (
	MetricResposta  MetricKind = "resposta"
	MetricResolucao MetricKind = "resolucao"
)

// SLAMetric is one tracked clock for a ticket: elapsed active time, the
// configured limit and the resulting classification. PercentualConsumido is
// only defined when a limit exists.
type SLAMetric struct {
	TempoDecorridoHoras float64    `json:"tempo_decorrido_horas"`
	TempoLimiteHoras    *float64   `json:"tempo_limite_horas"`
	PercentualConsumido *float64   `json:"percentual_consumido,omitempty"`
	Status              SLAStatus  `json:"status"`
	DataInicio          time.Time  `json:"data_inicio"`
	DataFim             *time.Time `json:"data_fim"`
}

// SLARecord is the persisted per-ticket SLA snapshot, the single source of
// truth shared by live queries and batch recomputation.
type SLARecord struct {
	ChamadoID      int64
	Resposta       *SLAMetric
	Resolucao      *SLAMetric
	StatusGeral    SLAStatus
	LastComputedAt time.Time
}

// SLAPolicy maps a priority (optionally narrowed by problem category) to
// response/resolution limits in hours. Nil limits mean no SLA applies.
type SLAPolicy struct {
	ID                  int64
	Prioridade          TicketPriority
	Categoria           *string
	TempoRespostaHoras  *float64
	TempoResolucaoHoras *float64
	Ativo               bool
}

// HasLimits reports whether at least one SLA clock applies.
func (p SLAPolicy) HasLimits() bool {
	return p.TempoRespostaHoras != nil || p.TempoResolucaoHoras != nil
}
