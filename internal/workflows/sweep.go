package workflows

import (
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/activities"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

type SweepResult struct {
	Reminded  int `json:"reminded"`
	Cancelled int `json:"cancelled"`
}

// ReservationSweepWorkflow reminds passengers of unpaid reservations and
// cancels the ones left unpaid past the window. Both steps use the
// workflow's start time. A failed reminder step does not stop the
// cancellation.
func ReservationSweepWorkflow(ctx workflow.Context) (*SweepResult, error) {
	logger := workflow.GetLogger(ctx)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	input := activities.SweepInput{Now: workflow.Now(ctx).UTC()}
	var result SweepResult

	if err := workflow.ExecuteActivity(ctx, activities.SendPaymentRemindersName, input).Get(ctx, &result.Reminded); err != nil {
		logger.Error("Payment reminders failed", "error", err)
	}

	if err := workflow.ExecuteActivity(ctx, activities.CancelUnpaidReservationsName, input).Get(ctx, &result.Cancelled); err != nil {
		logger.Error("Unpaid cancellation failed", "error", err)
		return &result, err
	}

	logger.Info("Reservation sweep finished", "reminded", result.Reminded, "cancelled", result.Cancelled)
	return &result, nil
}
