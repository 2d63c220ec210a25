package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

func newSyncService(tickets *fakeTicketRepo, records *fakeRecordRepo, cache *fakeStatusCache) *SyncService {
	deps := SyncDependencies{
		TicketRepo: tickets,
		RecordRepo: records,
		Resolver:   resolverFixture(),
	}
	if cache != nil {
		deps.Cache = cache
	}
	return NewSyncService(testSLAConfig(), deps, zap.NewNop())
}

func TestInitialSyncSkipsExistingRecords(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 1, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
		&domain.Ticket{ID: 2, Prioridade: domain.TicketPriorityNormal, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
	)
	records := newFakeRecordRepo()
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, records.Upsert(context.Background(), &domain.SLARecord{
		ChamadoID: 1, StatusGeral: domain.SLAStatusDentroPrazo, LastComputedAt: stale,
	}))
	records.upserts = 0

	svc := newSyncService(tickets, records, nil)
	stats, err := svc.InitialSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalChamados)
	assert.Equal(t, 1, stats.Sincronizados)
	assert.Equal(t, 0, stats.Erros)
	assert.Equal(t, 1, records.upserts)

	// pre-existing snapshot untouched
	existing, err := records.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, existing.LastComputedAt.Equal(stale))
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 1, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusEmAndamento, DataAbertura: time.Now().Add(-30 * time.Hour)},
		&domain.Ticket{ID: 2, Prioridade: domain.TicketPriorityNormal, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
		&domain.Ticket{ID: 3, Prioridade: domain.TicketPriorityBaixa, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
	)
	cache := newFakeStatusCache()
	records := newFakeRecordRepo()
	svc := newSyncService(tickets, records, cache)

	first, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	second, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, second.TotalRecalculados)
	assert.Equal(t, 1, second.Vencidos)
	assert.Equal(t, 1, second.EmDia)
	assert.Equal(t, 0, second.Erros)
	assert.Equal(t, 2, cache.invalidatedAll)

	// sem_sla counts in no breakdown bucket
	assert.Equal(t, second.EmDia+second.Vencidos+second.EmAndamento+second.Congelados, 2)
}

func TestBatchCountsPerTicketFailures(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 1, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
		&domain.Ticket{ID: 2, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
	)
	tickets.getErr[2] = errors.New("row deserialization failed")
	records := newFakeRecordRepo()
	svc := newSyncService(tickets, records, nil)

	stats, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalRecalculados)
	assert.Equal(t, 1, stats.Erros)
	_, err = records.Get(context.Background(), 1)
	assert.NoError(t, err)
}

func TestBatchHonorsCancellation(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 1, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusAberto, DataAbertura: time.Now().Add(-time.Hour)},
	)
	svc := newSyncService(tickets, newFakeRecordRepo(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.InitialSync(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackfillFirstResponseFromHistory(t *testing.T) {
	openedAt := time.Now().Add(-10 * time.Hour)
	answeredAt := openedAt.Add(2 * time.Hour)

	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 1, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusEmAndamento, DataAbertura: openedAt},
		&domain.Ticket{ID: 2, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusAberto, DataAbertura: openedAt},
	)
	tickets.history[1] = []domain.StatusChange{
		{Status: domain.TicketStatusAberto, At: openedAt},
		{Status: domain.TicketStatusEmAndamento, At: answeredAt},
	}
	tickets.history[2] = []domain.StatusChange{
		{Status: domain.TicketStatusAberto, At: openedAt},
	}

	cache := newFakeStatusCache()
	records := newFakeRecordRepo()
	svc := newSyncService(tickets, records, cache)

	stats, err := svc.BackfillFirstResponse(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Atualizados)
	assert.Equal(t, 1, stats.Pulados)
	assert.Equal(t, 0, stats.Erros)

	ticket, err := tickets.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, ticket.DataPrimeiraResposta)
	assert.True(t, ticket.DataPrimeiraResposta.Equal(answeredAt))

	// the refreshed record reflects the frozen response clock
	record, err := records.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, record.Resposta)
	assert.Equal(t, domain.SLAStatusCumprido, record.Resposta.Status)
	assert.InDelta(t, 2.0, record.Resposta.TempoDecorridoHoras, 0.01)

	assert.Equal(t, 1, cache.invalidatedAll)
}

func TestBackfillNeverOverwritesExistingFirstResponse(t *testing.T) {
	openedAt := time.Now().Add(-10 * time.Hour)
	already := openedAt.Add(time.Hour)

	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 1, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusEmAndamento, DataAbertura: openedAt, DataPrimeiraResposta: &already},
	)
	svc := newSyncService(tickets, newFakeRecordRepo(), nil)

	stats, err := svc.BackfillFirstResponse(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Atualizados)
	assert.Equal(t, 0, stats.Pulados)

	ticket, err := tickets.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ticket.DataPrimeiraResposta.Equal(already))
}

func TestRecomputeTicketRefreshesRecordAndCache(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: 7, Prioridade: domain.TicketPriorityAlta, Status: domain.TicketStatusEmAndamento, DataAbertura: time.Now().Add(-30 * time.Hour)},
	)
	cache := newFakeStatusCache()
	cache.SetStatus(context.Background(), 7, &TicketSLAStatus{ChamadoID: 7})
	records := newFakeRecordRepo()
	svc := newSyncService(tickets, records, cache)

	record, err := svc.RecomputeTicket(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStatusVencidoAtivo, record.StatusGeral)

	stored, err := records.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, record.StatusGeral, stored.StatusGeral)

	_, ok := cache.GetStatus(context.Background(), 7)
	assert.False(t, ok)
	assert.Equal(t, 1, cache.invalidatedByID[7])
}
