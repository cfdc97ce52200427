// Package activities exposes the reservation use cases to Temporal.
package activities

import (
	"context"
	"errors"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/payment"
	"github.com/Victoradukwu/FlightsHub/internal/service"
	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Registered activity names.
const (
	ProcessPaymentName           = "ProcessPayment"
	SendPaymentRemindersName     = "SendPaymentReminders"
	CancelUnpaidReservationsName = "CancelUnpaidReservations"
)

// Application error types that are never retried.
const (
	ErrTypeDeclined = "PaymentDeclined"
	ErrTypeNotFound = "ReservationNotFound"
	ErrTypeClosed   = "ReservationClosed"
)

// Reservations is the part of the service the activities drive.
type Reservations interface {
	ProcessPayment(ctx context.Context, id uuid.UUID, info models.PaymentInfo) error
	SendPaymentReminders(ctx context.Context, now time.Time) (int, error)
	CancelUnpaidReservations(ctx context.Context, now time.Time) (int, error)
}

type ProcessPaymentInput struct {
	ReservationID uuid.UUID          `json:"reservationId"`
	Payment       models.PaymentInfo `json:"payment"`
}

// SweepInput carries the workflow time so reruns see the same cutoff.
type SweepInput struct {
	Now time.Time `json:"now"`
}

type Activities struct {
	svc Reservations
}

func NewActivities(svc Reservations) *Activities {
	return &Activities{svc: svc}
}

// ProcessPayment captures the payment and tickets the reservation.
func (a *Activities) ProcessPayment(ctx context.Context, input ProcessPaymentInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing payment", "reservationId", input.ReservationID, "card", input.Payment.MaskedCard())

	err := a.svc.ProcessPayment(ctx, input.ReservationID, input.Payment)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, payment.ErrDeclined):
		logger.Warn("Payment declined", "reservationId", input.ReservationID, "error", err)
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeDeclined, err)
	case errors.Is(err, database.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case errors.Is(err, service.ErrReservationClosed):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeClosed, err)
	}
	logger.Error("Payment processing failed", "reservationId", input.ReservationID, "error", err)
	return err
}

func (a *Activities) SendPaymentReminders(ctx context.Context, input SweepInput) (int, error) {
	sent, err := a.svc.SendPaymentReminders(ctx, input.Now)
	if err != nil {
		return 0, err
	}
	activity.GetLogger(ctx).Info("Payment reminders sent", "count", sent)
	return sent, nil
}

func (a *Activities) CancelUnpaidReservations(ctx context.Context, input SweepInput) (int, error) {
	cancelled, err := a.svc.CancelUnpaidReservations(ctx, input.Now)
	if err != nil {
		return 0, err
	}
	activity.GetLogger(ctx).Info("Unpaid reservations cancelled", "count", cancelled)
	return cancelled, nil
}
