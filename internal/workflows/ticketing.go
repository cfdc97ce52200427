// Package workflows runs deferred reservation work on Temporal: ticketing
// after payment, and the periodic sweep of unpaid reservations.
package workflows

import (
	"errors"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/activities"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// PaymentTimeout bounds one payment capture and ticket issue.
	PaymentTimeout = 30 * time.Second
	// MaxPaymentAttempts caps retries of transient failures.
	MaxPaymentAttempts = 5
)

type TicketingInput struct {
	ReservationID uuid.UUID          `json:"reservationId"`
	Payment       models.PaymentInfo `json:"payment"`
}

type TicketingResult struct {
	Success       bool   `json:"success"`
	FailureReason string `json:"failureReason,omitempty"`
}

// TicketingWorkflow captures payment for a reservation and issues its
// ticket. A declined card or a reservation that is gone ends the workflow
// without retries.
func TicketingWorkflow(ctx workflow.Context, input TicketingInput) (*TicketingResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Ticketing workflow started", "reservationId", input.ReservationID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: PaymentTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    MaxPaymentAttempts,
			NonRetryableErrorTypes: []string{
				activities.ErrTypeDeclined,
				activities.ErrTypeNotFound,
				activities.ErrTypeClosed,
			},
		},
	})

	err := workflow.ExecuteActivity(ctx, activities.ProcessPaymentName, activities.ProcessPaymentInput{
		ReservationID: input.ReservationID,
		Payment:       input.Payment,
	}).Get(ctx, nil)
	if err != nil {
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) && appErr.NonRetryable() {
			logger.Info("Ticketing abandoned", "reservationId", input.ReservationID, "reason", appErr.Type())
			return &TicketingResult{FailureReason: appErr.Type()}, nil
		}
		logger.Error("Ticketing failed", "reservationId", input.ReservationID, "error", err)
		return nil, err
	}

	logger.Info("Reservation ticketed", "reservationId", input.ReservationID)
	return &TicketingResult{Success: true}, nil
}
