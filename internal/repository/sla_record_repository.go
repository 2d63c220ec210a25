package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// SLARecordRepository is the persisted per-ticket SLA history store.
// Upsert replaces the full snapshot; partial merges are deliberately not
// offered to avoid stale-field bugs.
type SLARecordRepository interface {
	Get(ctx context.Context, ticketID int64) (*domain.SLARecord, error)
	Upsert(ctx context.Context, record *domain.SLARecord) error
	Delete(ctx context.Context, ticketID int64) error
}

const lockStripes = 64

type slaRecordRepository struct {
	pool  *pgxpool.Pool
	locks [lockStripes]sync.Mutex
}

// NewSLARecordRepository builds repository.
func NewSLARecordRepository(pool *pgxpool.Pool) SLARecordRepository {
	return &slaRecordRepository{pool: pool}
}

// lockFor serializes concurrent writes for the same ticket. Writes for
// different tickets proceed independently (modulo stripe collisions).
func (r *slaRecordRepository) lockFor(ticketID int64) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(ticketID, 10)))
	return &r.locks[h.Sum32()%lockStripes]
}

func (r *slaRecordRepository) Get(ctx context.Context, ticketID int64) (*domain.SLARecord, error) {
	const query = `
        SELECT chamado_id, resposta_metric, resolucao_metric, status_geral, last_computed_at
        FROM sla_registros WHERE chamado_id=$1`
	var (
		record        domain.SLARecord
		respostaJSON  []byte
		resolucaoJSON []byte
	)
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&record.ChamadoID,
		&respostaJSON,
		&resolucaoJSON,
		&record.StatusGeral,
		&record.LastComputedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if record.Resposta, err = decodeMetric(respostaJSON); err != nil {
		return nil, fmt.Errorf("decode resposta metric: %w", err)
	}
	if record.Resolucao, err = decodeMetric(resolucaoJSON); err != nil {
		return nil, fmt.Errorf("decode resolucao metric: %w", err)
	}
	return &record, nil
}

func (r *slaRecordRepository) Upsert(ctx context.Context, record *domain.SLARecord) error {
	respostaJSON, err := encodeMetric(record.Resposta)
	if err != nil {
		return fmt.Errorf("encode resposta metric: %w", err)
	}
	resolucaoJSON, err := encodeMetric(record.Resolucao)
	if err != nil {
		return fmt.Errorf("encode resolucao metric: %w", err)
	}

	lock := r.lockFor(record.ChamadoID)
	lock.Lock()
	defer lock.Unlock()

	const query = `
        INSERT INTO sla_registros (chamado_id, resposta_metric, resolucao_metric, status_geral, last_computed_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (chamado_id) DO UPDATE SET
            resposta_metric=EXCLUDED.resposta_metric,
            resolucao_metric=EXCLUDED.resolucao_metric,
            status_geral=EXCLUDED.status_geral,
            last_computed_at=EXCLUDED.last_computed_at`
	_, err = r.pool.Exec(ctx, query,
		record.ChamadoID,
		respostaJSON,
		resolucaoJSON,
		record.StatusGeral,
		record.LastComputedAt,
	)
	return err
}

func (r *slaRecordRepository) Delete(ctx context.Context, ticketID int64) error {
	lock := r.lockFor(ticketID)
	lock.Lock()
	defer lock.Unlock()

	_, err := r.pool.Exec(ctx, `DELETE FROM sla_registros WHERE chamado_id=$1`, ticketID)
	return err
}

func encodeMetric(metric *domain.SLAMetric) ([]byte, error) {
	if metric == nil {
		return nil, nil
	}
	return json.Marshal(metric)
}

func decodeMetric(raw []byte) (*domain.SLAMetric, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var metric domain.SLAMetric
	if err := json.Unmarshal(raw, &metric); err != nil {
		return nil, err
	}
	return &metric, nil
}
