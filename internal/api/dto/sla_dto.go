package dto

import "time"

// SLAMetricResponse is the wire shape of one SLA clock.
type SLAMetricResponse struct {
	TempoDecorridoHoras float64    `json:"tempo_decorrido_horas"`
	TempoLimiteHoras    *float64   `json:"tempo_limite_horas"`
	PercentualConsumido *float64   `json:"percentual_consumido,omitempty"`
	Status              string     `json:"status"`
	DataInicio          time.Time  `json:"data_inicio"`
	DataFim             *time.Time `json:"data_fim"`
}

// SLAStatusResponse is the live-status payload polled by the UI.
type SLAStatusResponse struct {
	ChamadoID            int64              `json:"chamado_id"`
	Prioridade           string             `json:"prioridade"`
	StatusChamado        string             `json:"status_chamado"`
	RespostaMetric       *SLAMetricResponse `json:"resposta_metric"`
	ResolucaoMetric      *SLAMetricResponse `json:"resolucao_metric"`
	StatusGeral          string             `json:"status_geral"`
	DataAbertura         *time.Time         `json:"data_abertura"`
	DataPrimeiraResposta *time.Time         `json:"data_primeira_resposta"`
	DataConclusao        *time.Time         `json:"data_conclusao"`
}

// SyncResponse reports an initial sync run.
type SyncResponse struct {
	TotalChamados int `json:"total_chamados"`
	Sincronizados int `json:"sincronizados"`
	EmDia         int `json:"em_dia"`
	Vencidos      int `json:"vencidos"`
	EmAndamento   int `json:"em_andamento"`
	Congelados    int `json:"congelados"`
	Erros         int `json:"erros"`
}

// RecalcResponse reports a full recalculation run.
type RecalcResponse struct {
	TotalRecalculados int `json:"total_recalculados"`
	EmDia             int `json:"em_dia"`
	Vencidos          int `json:"vencidos"`
	EmAndamento       int `json:"em_andamento"`
	Congelados        int `json:"congelados"`
	Erros             int `json:"erros"`
}

// BackfillResponse reports a first-response backfill run.
type BackfillResponse struct {
	OK               bool   `json:"ok"`
	Message          string `json:"message"`
	TotalAtualizados int    `json:"total_atualizados"`
	TotalPulados     int    `json:"total_pulados"`
	Erros            int    `json:"erros"`
	CacheInvalidado  bool   `json:"cache_invalidado"`
}

// PolicyResponse lists one SLA policy tier.
type PolicyResponse struct {
	ID                  int64    `json:"id"`
	Prioridade          string   `json:"prioridade"`
	Categoria           *string  `json:"categoria"`
	TempoRespostaHoras  *float64 `json:"tempo_resposta_horas"`
	TempoResolucaoHoras *float64 `json:"tempo_resolucao_horas"`
	Ativo               bool     `json:"ativo"`
}
