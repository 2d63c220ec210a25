package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// TicketRepository is the read-side boundary to the ticket-management
// collaborator. Tickets are owned externally; the only write this service
// performs is backfilling a missing first-response timestamp.
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ListIDsWithoutFirstResponse(ctx context.Context) ([]int64, error)
	GetStatusHistory(ctx context.Context, id int64) ([]domain.StatusChange, error)
	SetFirstResponse(ctx context.Context, id int64, at time.Time) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, prioridade, categoria, status, data_abertura, data_primeira_resposta, data_conclusao
        FROM chamados WHERE id=$1 AND deletado_em IS NULL`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Prioridade,
		&ticket.Categoria,
		&ticket.Status,
		&ticket.DataAbertura,
		&ticket.DataPrimeiraResposta,
		&ticket.DataConclusao,
	); err != nil {
		return nil, err
	}

	holds, err := r.getHoldIntervals(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.HoldIntervals = holds
	return &ticket, nil
}

// getHoldIntervals derives pause windows from the lifecycle history: every
// stay in "Pausado" is one hold interval, open-ended while still paused.
func (r *ticketRepository) getHoldIntervals(ctx context.Context, id int64) ([]domain.HoldInterval, error) {
	const query = `
        SELECT data_inicio, data_fim
        FROM historico_status
        WHERE chamado_id=$1 AND status=$2 AND data_inicio IS NOT NULL
        ORDER BY data_inicio ASC`
	rows, err := r.pool.Query(ctx, query, id, domain.TicketStatusPausado)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []domain.HoldInterval
	for rows.Next() {
		var hold domain.HoldInterval
		if err := rows.Scan(&hold.Start, &hold.End); err != nil {
			return nil, err
		}
		holds = append(holds, hold)
	}
	return holds, rows.Err()
}

func (r *ticketRepository) ListIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT id FROM chamados WHERE deletado_em IS NULL ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *ticketRepository) ListIDsWithoutFirstResponse(ctx context.Context) ([]int64, error) {
	const query = `
        SELECT id FROM chamados
        WHERE data_primeira_resposta IS NULL AND deletado_em IS NULL
        ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *ticketRepository) GetStatusHistory(ctx context.Context, id int64) ([]domain.StatusChange, error) {
	const query = `
        SELECT status, data_inicio
        FROM historico_status
        WHERE chamado_id=$1 AND data_inicio IS NOT NULL
        ORDER BY data_inicio ASC`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(&change.Status, &change.At); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}

// SetFirstResponse records the first-response timestamp only when none is
// set yet. Returns false when the ticket already had one (never overwrites).
func (r *ticketRepository) SetFirstResponse(ctx context.Context, id int64, at time.Time) (bool, error) {
	const query = `
        UPDATE chamados SET data_primeira_resposta=$1
        WHERE id=$2 AND data_primeira_resposta IS NULL`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}
