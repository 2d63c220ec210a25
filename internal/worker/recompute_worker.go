package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/service"
)

// StartRecomputeWorker subscribes the synchronizer to recompute requests so
// external ticket mutations (status changes, first response, resolution)
// refresh the persisted SLA record through the shared computation path.
func StartRecomputeWorker(dispatcher events.Dispatcher, sync *service.SyncService, logger *zap.Logger) {
	if dispatcher == nil || sync == nil {
		return
	}
	dispatcher.Subscribe(events.EventRecomputeRequested, func(ctx context.Context, event events.Event) error {
		record, err := sync.RecomputeTicket(ctx, event.ChamadoID)
		if err != nil {
			logger.Warn("sla recompute failed",
				zap.Int64("chamado_id", event.ChamadoID),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("sla record recomputed",
			zap.Int64("chamado_id", event.ChamadoID),
			zap.String("status_geral", string(record.StatusGeral)),
		)
		return nil
	})
}
