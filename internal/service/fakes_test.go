package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[int64]*domain.Ticket
	history map[int64][]domain.StatusChange
	getErr  map[int64]error

	getCalls int
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{
		tickets: make(map[int64]*domain.Ticket),
		history: make(map[int64][]domain.StatusChange),
		getErr:  make(map[int64]error),
	}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if err, ok := r.getErr[id]; ok {
		return nil, err
	}
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListIDs(context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.tickets))
	for id := range r.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeTicketRepo) ListIDsWithoutFirstResponse(context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0)
	for id, t := range r.tickets {
		if t.DataPrimeiraResposta == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeTicketRepo) GetStatusHistory(_ context.Context, id int64) ([]domain.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[id], nil
}

func (r *fakeTicketRepo) SetFirstResponse(_ context.Context, id int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if ticket.DataPrimeiraResposta != nil {
		return false, nil
	}
	ticket.DataPrimeiraResposta = &at
	return true, nil
}

type fakePolicyRepo struct {
	policies []domain.SLAPolicy
	err      error
}

func (r *fakePolicyRepo) ListActive(context.Context) ([]domain.SLAPolicy, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.policies, nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[int64]*domain.SLARecord
	upserts int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[int64]*domain.SLARecord)}
}

func (r *fakeRecordRepo) Get(_ context.Context, ticketID int64) (*domain.SLARecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRecordRepo) Upsert(_ context.Context, record *domain.SLARecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records[record.ChamadoID] = &copied
	r.upserts++
	return nil
}

func (r *fakeRecordRepo) Delete(_ context.Context, ticketID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, ticketID)
	return nil
}

type fakeStatusCache struct {
	mu              sync.Mutex
	entries         map[int64]*TicketSLAStatus
	invalidatedAll  int
	invalidatedByID map[int64]int
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{
		entries:         make(map[int64]*TicketSLAStatus),
		invalidatedByID: make(map[int64]int),
	}
}

func (c *fakeStatusCache) GetStatus(_ context.Context, ticketID int64) (*TicketSLAStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.entries[ticketID]
	return status, ok
}

func (c *fakeStatusCache) SetStatus(_ context.Context, ticketID int64, status *TicketSLAStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticketID] = status
}

func (c *fakeStatusCache) InvalidateTicket(_ context.Context, ticketID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ticketID)
	c.invalidatedByID[ticketID]++
}

func (c *fakeStatusCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]*TicketSLAStatus)
	c.invalidatedAll++
}

func hoursPtr(h float64) *float64 { return &h }

func timePtr(t time.Time) *time.Time { return &t }
