package service

import "context"

// StatusCache holds live-status responses for the client poll window.
// Implementations are best-effort: a miss or a failed set only costs a
// recomputation on the next poll.
type StatusCache interface {
	GetStatus(ctx context.Context, ticketID int64) (*TicketSLAStatus, bool)
	SetStatus(ctx context.Context, ticketID int64, status *TicketSLAStatus)
	InvalidateTicket(ctx context.Context, ticketID int64)
	InvalidateAll(ctx context.Context)
}
