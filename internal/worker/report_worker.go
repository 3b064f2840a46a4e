package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// ReportWorker runs scheduled summary reports. Each run aggregates ticket and
// inventory counters, logs the digest and publishes a report event for the
// notification pipeline.
type ReportWorker struct {
	tickets   repository.TicketRepository
	inventory repository.InventoryRepository
	dispatch  events.Dispatcher
	logger    *zap.Logger
	cfg       config.ReportConfig
	cron      *cron.Cron
}

// NewReportWorker constructs the worker without starting it.
func NewReportWorker(tickets repository.TicketRepository, inventory repository.InventoryRepository, dispatch events.Dispatcher, logger *zap.Logger, cfg config.ReportConfig) *ReportWorker {
	return &ReportWorker{
		tickets:   tickets,
		inventory: inventory,
		dispatch:  dispatch,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(),
	}
}

// Start registers the schedules and begins the cron loop. A disabled config
// is a no-op so callers do not need to branch.
func (w *ReportWorker) Start() error {
	if !w.cfg.Enabled {
		w.logger.Info("report worker disabled")
		return nil
	}
	if _, err := w.cron.AddFunc(w.cfg.DailySchedule, func() { w.run("daily") }); err != nil {
		return fmt.Errorf("daily report schedule: %w", err)
	}
	if _, err := w.cron.AddFunc(w.cfg.WeeklySchedule, func() { w.run("weekly") }); err != nil {
		return fmt.Errorf("weekly report schedule: %w", err)
	}
	w.cron.Start()
	w.logger.Info("report worker started",
		zap.String("daily", w.cfg.DailySchedule),
		zap.String("weekly", w.cfg.WeeklySchedule))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (w *ReportWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *ReportWorker) run(kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	byStatus, err := w.tickets.CountByStatus(ctx)
	if err != nil {
		w.logger.Error("report ticket aggregation failed",
			zap.String("kind", kind), zap.Error(err))
		return
	}
	lowStock, err := w.inventory.CountLowStock(ctx)
	if err != nil {
		w.logger.Error("report inventory aggregation failed",
			zap.String("kind", kind), zap.Error(err))
		return
	}

	open := byStatus[domain.TicketStatusOpen] + byStatus[domain.TicketStatusAssigned] +
		byStatus[domain.TicketStatusInProgress] + byStatus[domain.TicketStatusPendingApproval] +
		byStatus[domain.TicketStatusReopened]
	summary := fmt.Sprintf("%d open tickets, %d resolved, %d closed, %d items low on stock",
		open, byStatus[domain.TicketStatusResolved], byStatus[domain.TicketStatusClosed], lowStock)

	w.logger.Info("report generated",
		zap.String("kind", kind), zap.String("summary", summary))

	if w.dispatch != nil {
		_ = w.dispatch.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReportGenerated,
			EntityID:  kind,
			Timestamp: time.Now(),
			Payload:   events.ReportPayload{Kind: kind, Summary: summary},
		})
	}
}
