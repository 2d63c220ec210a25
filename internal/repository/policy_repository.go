package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// PolicyRepository exposes the externally managed SLA policy configuration.
// Policies are read per evaluation, never cached indefinitely, so limit
// changes take effect on the next recomputation.
type PolicyRepository interface {
	ListActive(ctx context.Context) ([]domain.SLAPolicy, error)
}

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository builds repository.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

func (r *policyRepository) ListActive(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, prioridade, categoria, tempo_resposta_horas, tempo_resolucao_horas, ativo
        FROM sla_politicas WHERE ativo ORDER BY prioridade ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.Prioridade,
			&policy.Categoria,
			&policy.TempoRespostaHoras,
			&policy.TempoResolucaoHoras,
			&policy.Ativo,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
