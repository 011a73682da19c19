package worker

import (
	"context"

	"ledger-service/internal/broker"
	"ledger-service/internal/models"
	"ledger-service/internal/refcache"
	"ledger-service/internal/util"

	"go.uber.org/zap"
)

// RefreshWorker keeps the reference cache warm across replicas. Every
// ledger event, whichever instance produced it, invalidates the local
// cache and triggers a re-fetch so stale aggregates are not served.
type RefreshWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *refcache.Cache
	logger       *zap.Logger
}

// NewRefreshWorker creates a new refresh worker.
func NewRefreshWorker(consumer *broker.Consumer, cache *refcache.Cache) *RefreshWorker {
	w := &RefreshWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.NamedLogger("refresh-worker"),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnLedgerEntry(w.handleLedgerEntry)
	eventHandler.OnCatalogChanged(w.handleCatalogChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.logger.Info("starting refresh worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker.
func (w *RefreshWorker) Stop() error {
	w.logger.Info("stopping refresh worker")
	return w.consumer.Close()
}

func (w *RefreshWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	w.logger.Info("order created, refreshing reference data",
		zap.String("kind", event.Kind),
		zap.String("order_id", event.OrderID))
	return w.refresh(ctx)
}

func (w *RefreshWorker) handleLedgerEntry(ctx context.Context, event *models.LedgerEntryEvent) error {
	w.logger.Info("ledger entry recorded, refreshing reference data",
		zap.String("trx_id", event.TrxID),
		zap.String("order_id", event.OrderID))
	return w.refresh(ctx)
}

func (w *RefreshWorker) handleCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error {
	w.logger.Info("catalog changed, refreshing reference data",
		zap.String("entity", event.Entity),
		zap.String("entity_id", event.EntityID),
		zap.String("action", event.Action))
	return w.refresh(ctx)
}

func (w *RefreshWorker) refresh(ctx context.Context) error {
	w.cache.Invalidate(ctx)
	if err := w.cache.RefreshAll(ctx); err != nil {
		w.logger.Error("cache refresh failed", zap.Error(err))
		return err
	}
	return nil
}
