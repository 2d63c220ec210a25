package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/repository"
)

// SyncStats reports an InitialSync run.
type SyncStats struct {
	TotalChamados int
	Sincronizados int
	EmDia         int
	Vencidos      int
	EmAndamento   int
	Congelados    int
	Erros         int
}

// RecalcStats reports a RecalculateAll run.
type RecalcStats struct {
	TotalRecalculados int
	EmDia             int
	Vencidos          int
	EmAndamento       int
	Congelados        int
	Erros             int
}

// BackfillStats reports a BackfillFirstResponse run.
type BackfillStats struct {
	Atualizados int
	Pulados     int
	Erros       int
}

// SyncService runs the batch side of the SLA engine: initial backfill of
// records, full recalculation after policy changes, and first-response
// backfill from the status history. All operations are idempotent, tolerate
// per-ticket failures and honor cancellation between tickets.
type SyncService struct {
	tickets    repository.TicketRepository
	records    repository.SLARecordRepository
	resolver   *PolicyResolver
	cache      StatusCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	slaCfg     config.SLAConfig
	logger     *zap.Logger
}

// SyncDependencies bundles collaborators for the batch jobs.
type SyncDependencies struct {
	TicketRepo repository.TicketRepository
	RecordRepo repository.SLARecordRepository
	Resolver   *PolicyResolver
	Cache      StatusCache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// NewSyncService constructs the service. Cache, dispatcher and metrics may be nil.
func NewSyncService(slaCfg config.SLAConfig, deps SyncDependencies, logger *zap.Logger) *SyncService {
	return &SyncService{
		tickets:    deps.TicketRepo,
		records:    deps.RecordRepo,
		resolver:   deps.Resolver,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		slaCfg:     slaCfg,
		logger:     logger,
	}
}

// InitialSync creates SLA records for tickets that lack one. Existing
// records are left untouched, so re-running is safe.
func (s *SyncService) InitialSync(ctx context.Context) (*SyncStats, error) {
	ids, err := s.tickets.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	stats := &SyncStats{TotalChamados: len(ids)}
	var mu sync.Mutex

	err = s.forEachTicket(ctx, ids, func(ctx context.Context, id int64) {
		if _, err := s.records.Get(ctx, id); err == nil {
			return // already synchronized
		} else if !errors.Is(err, pgx.ErrNoRows) {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}

		record, err := s.computeRecord(ctx, id)
		if err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}
		if err := s.records.Upsert(ctx, record); err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}

		mu.Lock()
		stats.Sincronizados++
		bumpBreakdown(record.StatusGeral, &stats.EmDia, &stats.Vencidos, &stats.EmAndamento, &stats.Congelados)
		mu.Unlock()
	})
	if err != nil {
		return stats, err
	}

	s.metrics.RecordBatchRun("initial_sync", stats.Sincronizados, stats.Erros)
	s.logger.Info("initial sync finished",
		zap.Int("total", stats.TotalChamados),
		zap.Int("sincronizados", stats.Sincronizados),
		zap.Int("erros", stats.Erros),
	)
	return stats, nil
}

// RecalculateAll recomputes every ticket's record from current policy,
// overwriting existing snapshots. Run after policy changes.
func (s *SyncService) RecalculateAll(ctx context.Context) (*RecalcStats, error) {
	ids, err := s.tickets.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	stats := &RecalcStats{}
	var mu sync.Mutex

	err = s.forEachTicket(ctx, ids, func(ctx context.Context, id int64) {
		record, err := s.computeRecord(ctx, id)
		if err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}
		if err := s.records.Upsert(ctx, record); err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}

		mu.Lock()
		stats.TotalRecalculados++
		bumpBreakdown(record.StatusGeral, &stats.EmDia, &stats.Vencidos, &stats.EmAndamento, &stats.Congelados)
		mu.Unlock()
	})
	if err != nil {
		return stats, err
	}

	s.invalidateCache(ctx, "recalculate_all")
	s.metrics.RecordBatchRun("recalculate_all", stats.TotalRecalculados, stats.Erros)
	s.logger.Info("full recalculation finished",
		zap.Int("total_recalculados", stats.TotalRecalculados),
		zap.Int("erros", stats.Erros),
	)
	return stats, nil
}

// BackfillFirstResponse fills data_primeira_resposta for tickets whose
// history shows a transition out of Aberto, then refreshes their records.
// Tickets that already have a first response are never overwritten.
func (s *SyncService) BackfillFirstResponse(ctx context.Context) (*BackfillStats, error) {
	ids, err := s.tickets.ListIDsWithoutFirstResponse(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BackfillStats{}
	var mu sync.Mutex

	err = s.forEachTicket(ctx, ids, func(ctx context.Context, id int64) {
		history, err := s.tickets.GetStatusHistory(ctx, id)
		if err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}

		firstResponse := firstTransitionOutOfAberto(history)
		if firstResponse == nil {
			mu.Lock()
			stats.Pulados++
			mu.Unlock()
			return
		}

		updated, err := s.tickets.SetFirstResponse(ctx, id, *firstResponse)
		if err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}
		if !updated {
			// raced with a concurrent write; the field is already set
			mu.Lock()
			stats.Pulados++
			mu.Unlock()
			return
		}

		if _, err := s.RecomputeTicket(ctx, id); err != nil {
			s.countError(&mu, &stats.Erros, id, err)
			return
		}
		mu.Lock()
		stats.Atualizados++
		mu.Unlock()
	})
	if err != nil {
		return stats, err
	}

	s.invalidateCache(ctx, "backfill_first_response")
	s.metrics.RecordBatchRun("backfill_first_response", stats.Atualizados, stats.Erros)
	s.logger.Info("first-response backfill finished",
		zap.Int("atualizados", stats.Atualizados),
		zap.Int("pulados", stats.Pulados),
		zap.Int("erros", stats.Erros),
	)
	return stats, nil
}

// RecomputeTicket refreshes one ticket's record and invalidates its cached
// live status. This is the write path behind the update hook.
func (s *SyncService) RecomputeTicket(ctx context.Context, ticketID int64) (*domain.SLARecord, error) {
	record, err := s.computeRecord(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateTicket(ctx, ticketID)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRecordUpdated,
		ChamadoID: ticketID,
		Payload:   events.RecordUpdatedPayload{StatusGeral: record.StatusGeral},
	})
	return record, nil
}

// computeRecord evaluates a ticket through the same path the live query
// uses, so batch and live results can never disagree.
func (s *SyncService) computeRecord(ctx context.Context, ticketID int64) (*domain.SLARecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.slaCfg.IOTimeout())
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	policy, err := s.resolver.Resolve(ctx, ticket.Prioridade, ticket.Categoria)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return NewRecord(ticketID, Evaluate(ticket, policy, now, s.slaCfg.WarningRatio, s.logger), now), nil
}

// forEachTicket fans ids out over a bounded worker pool. Per-ticket failures
// are the callback's to count; only cancellation aborts the batch, and since
// each ticket's write is atomic an abort leaves no partial record behind.
func (s *SyncService) forEachTicket(ctx context.Context, ids []int64, fn func(context.Context, int64)) error {
	workers := s.slaCfg.SyncWorkers
	if workers <= 0 {
		workers = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, id := range ids {
		id := id
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		group.Go(func() error {
			fn(ctx, id)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *SyncService) countError(mu *sync.Mutex, counter *int, ticketID int64, err error) {
	mu.Lock()
	*counter++
	mu.Unlock()
	s.logger.Warn("ticket failed during batch run", zap.Int64("chamado_id", ticketID), zap.Error(err))
}

// invalidateCache flushes the live-status cache after a batch rewrite and
// announces the flush for interested subscribers.
func (s *SyncService) invalidateCache(ctx context.Context, operation string) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateAll(ctx)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCacheInvalidated,
		Payload: events.CacheInvalidatedPayload{Operation: operation},
	})
}

func (s *SyncService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// bumpBreakdown folds a record's status_geral into the operator-facing
// counters: em_dia, vencidos, em_andamento, congelados. sem_sla counts nowhere.
func bumpBreakdown(status domain.SLAStatus, emDia, vencidos, emAndamento, congelados *int) {
	switch status {
	case domain.SLAStatusCumprido, domain.SLAStatusDentroPrazo:
		*emDia++
	case domain.SLAStatusViolado, domain.SLAStatusVencidoAtivo:
		*vencidos++
	case domain.SLAStatusProximoVencer:
		*emAndamento++
	case domain.SLAStatusPausado:
		*congelados++
	}
}

// firstTransitionOutOfAberto returns the timestamp of the first history
// entry whose status differs from Aberto, or nil when none qualifies.
func firstTransitionOutOfAberto(history []domain.StatusChange) *time.Time {
	for _, change := range history {
		if change.Status != domain.TicketStatusAberto {
			at := change.At
			return &at
		}
	}
	return nil
}
