package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// TicketSLAStatus is the point-in-time answer for one ticket's SLA state.
type TicketSLAStatus struct {
	ChamadoID            int64                 `json:"chamado_id"`
	Prioridade           domain.TicketPriority `json:"prioridade"`
	StatusChamado        domain.TicketStatus   `json:"status_chamado"`
	Resposta             *domain.SLAMetric     `json:"resposta_metric"`
	Resolucao            *domain.SLAMetric     `json:"resolucao_metric"`
	StatusGeral          domain.SLAStatus      `json:"status_geral"`
	DataAbertura         time.Time             `json:"data_abertura"`
	DataPrimeiraResposta *time.Time            `json:"data_primeira_resposta"`
	DataConclusao        *time.Time            `json:"data_conclusao"`
}

// LiveStatusService answers the live SLA query the UI polls every ~10s.
// It recomputes from scratch on every call and never writes the record
// store, so polls cause no write amplification.
type LiveStatusService struct {
	tickets  repository.TicketRepository
	resolver *PolicyResolver
	cache    StatusCache
	slaCfg   config.SLAConfig
	logger   *zap.Logger
}

// LiveStatusDependencies bundles collaborators for the live query path.
type LiveStatusDependencies struct {
	TicketRepo repository.TicketRepository
	Resolver   *PolicyResolver
	Cache      StatusCache
}

// NewLiveStatusService constructs the service. Cache may be nil.
func NewLiveStatusService(slaCfg config.SLAConfig, deps LiveStatusDependencies, logger *zap.Logger) *LiveStatusService {
	return &LiveStatusService{
		tickets:  deps.TicketRepo,
		resolver: deps.Resolver,
		cache:    deps.Cache,
		slaCfg:   slaCfg,
		logger:   logger,
	}
}

// GetStatus computes the current SLA status for a ticket. A ticket without
// applicable limits yields a fully sem_sla response, not an error.
func (s *LiveStatusService) GetStatus(ctx context.Context, ticketID int64) (*TicketSLAStatus, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetStatus(ctx, ticketID); ok {
			return cached, nil
		}
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	policy, err := s.resolver.Resolve(ctx, ticket.Prioridade, ticket.Categoria)
	if err != nil {
		return nil, err
	}

	eval := Evaluate(ticket, policy, time.Now(), s.slaCfg.WarningRatio, s.logger)

	status := &TicketSLAStatus{
		ChamadoID:            ticket.ID,
		Prioridade:           ticket.Prioridade,
		StatusChamado:        ticket.Status,
		Resposta:             eval.Resposta,
		Resolucao:            eval.Resolucao,
		StatusGeral:          eval.StatusGeral,
		DataAbertura:         ticket.DataAbertura,
		DataPrimeiraResposta: ticket.DataPrimeiraResposta,
		DataConclusao:        ticket.DataConclusao,
	}

	if s.cache != nil {
		s.cache.SetStatus(ctx, ticketID, status)
	}
	return status, nil
}

func (s *LiveStatusService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.slaCfg.IOTimeout())
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chamado", map[string]any{"chamado_id": ticketID})
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewTransient("ticket store timed out", err)
		}
		return nil, err
	}
	return ticket, nil
}
