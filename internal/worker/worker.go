package worker

import (
	"context"

	"storefront-orders/internal/broker"
	"storefront-orders/internal/models"
	"storefront-orders/internal/store"
	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// AuditWorker consumes order events and appends them to the order
// audit trail. Delivery is at-least-once, so every event is checked
// against the processed-events table before an entry is written.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        store.OrderStore
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, st store.OrderStore) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderRecorded(w.handleOrderRecorded)
	eventHandler.OnCaptureReplayed(w.handleCaptureReplayed)
	eventHandler.OnStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) handleOrderRecorded(ctx context.Context, event *models.OrderRecordedEvent) error {
	return w.appendEntry(ctx, &models.AuditEntry{
		OrderID:   event.OrderID,
		EventID:   event.EventID,
		EventType: event.EventType,
		ToStatus:  event.Status,
	})
}

func (w *AuditWorker) handleCaptureReplayed(ctx context.Context, event *models.CaptureReplayedEvent) error {
	return w.appendEntry(ctx, &models.AuditEntry{
		OrderID:   event.OrderID,
		EventID:   event.EventID,
		EventType: event.EventType,
	})
}

func (w *AuditWorker) handleStatusChanged(ctx context.Context, event *models.StatusChangedEvent) error {
	return w.appendEntry(ctx, &models.AuditEntry{
		OrderID:    event.OrderID,
		EventID:    event.EventID,
		EventType:  event.EventType,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
	})
}

// appendEntry writes one audit row unless the event was already seen
func (w *AuditWorker) appendEntry(ctx context.Context, entry *models.AuditEntry) error {
	processed, err := w.store.IsEventProcessed(ctx, entry.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Skipping already-processed event",
			zap.String("event_id", entry.EventID))
		return nil
	}

	if err := w.store.InsertAuditEntry(ctx, entry); err != nil {
		return err
	}

	if err := w.store.MarkEventProcessed(ctx, entry.EventID, entry.EventType); err != nil {
		return err
	}

	util.AuditEntriesTotal.Inc()
	w.logger.Info("Audit entry recorded",
		zap.Int64("order_id", entry.OrderID),
		zap.String("event_type", entry.EventType))
	return nil
}
