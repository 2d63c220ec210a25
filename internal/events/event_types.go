package events

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventRecomputeRequested asks the background worker to refresh one
	// ticket's SLA record (the update hook for external ticket mutations).
	EventRecomputeRequested EventType = "sla_recompute_requested"
	// EventRecordUpdated is emitted after an SLA record upsert.
	EventRecordUpdated EventType = "sla_record_updated"
	// EventCacheInvalidated is emitted after a batch job flushes the
	// live-status cache.
	EventCacheInvalidated EventType = "sla_cache_invalidated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChamadoID int64       `json:"chamado_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RecomputeRequestedPayload payload.
type RecomputeRequestedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// RecordUpdatedPayload payload.
type RecordUpdatedPayload struct {
	StatusGeral domain.SLAStatus `json:"status_geral"`
}

// CacheInvalidatedPayload payload.
type CacheInvalidatedPayload struct {
	Operation string `json:"operation"`
}
