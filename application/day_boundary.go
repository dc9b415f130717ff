package application

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"phlock/domain/entities"
	"phlock/domain/services"
	"phlock/infrastructure/observability"
)

// DayBoundaryWorker applies due pending swaps when the UTC day rolls over.
// Runs are idempotent: a swap is applied at most once no matter how many
// times the same date is processed, so a crashed run can simply be repeated.
type DayBoundaryWorker struct {
	uowFactory UnitOfWorkFactory
	cron       *cron.Cron
}

// NewDayBoundaryWorker creates a new day-boundary worker
func NewDayBoundaryWorker(uowFactory UnitOfWorkFactory) *DayBoundaryWorker {
	return &DayBoundaryWorker{
		uowFactory: uowFactory,
		cron:       cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules the boundary run at the given UTC hour every day
func (w *DayBoundaryWorker) Start(hour int) error {
	spec := fmt.Sprintf("0 %d * * *", hour)
	if _, err := w.cron.AddFunc(spec, func() {
		result, err := w.RunDayBoundary(context.Background(), time.Now().UTC())
		if err != nil {
			log.WithError(err).Error("Day-boundary run failed")
			return
		}
		log.WithFields(log.Fields{
			"date":    result.Date.Format(entities.DateLayout),
			"applied": result.Applied,
			"skipped": result.Skipped,
			"failed":  result.Failed,
		}).Info("Day-boundary run finished")
	}); err != nil {
		return fmt.Errorf("failed to schedule day-boundary job: %w", err)
	}

	w.cron.Start()
	log.WithField("hour", hour).Info("Day-boundary worker started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (w *DayBoundaryWorker) Stop() {
	<-w.cron.Stop().Done()
	log.Info("Day-boundary worker stopped")
}

// RunDayBoundary applies every pending swap due on or before the date of now.
// Each swap runs in its own transaction so one failing row cannot block the
// rest; failures stay pending and the next run picks them up again.
func (w *DayBoundaryWorker) RunDayBoundary(ctx context.Context, now time.Time) (*entities.BoundaryResult, error) {
	date := entities.DateOf(now)
	result := &entities.BoundaryResult{Date: date}

	var due []*entities.PendingSwap
	err := RunInUnitOfWork(ctx, w.uowFactory, func(uow UnitOfWork) error {
		var err error
		due, err = uow.PendingSwapRepository().ListDue(ctx, date)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list due swaps: %w", err)
	}

	if len(due) == 0 {
		return result, nil
	}

	log.WithFields(log.Fields{
		"date":  date.Format(entities.DateLayout),
		"count": len(due),
	}).Info("Applying due pending swaps")

	for _, swap := range due {
		applied, err := w.applyOne(ctx, swap)

		outcome := observability.OutcomeSkipped
		switch {
		case err != nil:
			outcome = observability.OutcomeFailed
			result.Failed++
			log.WithFields(log.Fields{
				"swapId":  swap.ID,
				"ownerId": swap.OwnerID,
				"error":   err,
			}).Error("Failed to apply pending swap")
		case applied:
			outcome = observability.OutcomeApplied
			result.Applied++
		default:
			result.Skipped++
		}

		if metrics := observability.GetMetrics(); metrics != nil {
			metrics.RecordBoundarySwap(outcome)
		}
	}

	return result, nil
}

func (w *DayBoundaryWorker) applyOne(ctx context.Context, swap *entities.PendingSwap) (bool, error) {
	var applied bool
	err := RunInUnitOfWork(ctx, w.uowFactory, func(uow UnitOfWork) error {
		scheduler := services.NewSwapScheduler(
			uow.UserRepository(),
			uow.RosterRepository(),
			uow.DailyPickRepository(),
			uow.PendingSwapRepository(),
			uow.SwapLedgerRepository(),
			uow.EventBus(),
		)

		var err error
		applied, err = scheduler.ApplyPendingSwap(ctx, swap)
		return err
	})
	return applied, err
}
