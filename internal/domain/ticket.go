package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusAberto      TicketStatus = "Aberto"
	TicketStatusEmAndamento TicketStatus = "Em Andamento"
	TicketStatusPausado     TicketStatus = "Pausado"
	TicketStatusResolvido   TicketStatus = "Resolvido"
	TicketStatusFechado     TicketStatus = "Fechado"
	TicketStatusCancelado   TicketStatus = "Cancelado"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityBaixa   TicketPriority = "Baixa"
	TicketPriorityNormal  TicketPriority = "Normal"
	TicketPriorityAlta    TicketPriority = "Alta"
	TicketPriorityCritica TicketPriority = "Crítica"
)

// HoldInterval is a window during which the SLA clock does not advance.
// A nil End means the ticket is still paused.
type HoldInterval struct {
	Start time.Time
	End   *time.Time
}

// StatusChange is a single entry of a ticket's lifecycle history.
type StatusChange struct {
	Status TicketStatus
	At     time.Time
}

// Ticket is the read-side snapshot consumed from the ticket-management
// collaborator. This service never mutates tickets except for backfilling
// a missing first-response timestamp.
type Ticket struct {
	ID                   int64
	Prioridade           TicketPriority
	Categoria            string
	Status               TicketStatus
	DataAbertura         time.Time
	DataPrimeiraResposta *time.Time
	DataConclusao        *time.Time
	HoldIntervals        []HoldInterval
}

// IsPaused reports whether the SLA clock is currently stopped.
func (t *Ticket) IsPaused() bool {
	if t.Status == TicketStatusPausado {
		return true
	}
	for _, h := range t.HoldIntervals {
		if h.End == nil {
			return true
		}
	}
	return false
}
