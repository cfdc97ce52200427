package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
	"github.com/sirupsen/logrus"
)

// PaymentDeadline is the latest time a reservation can be paid: the end of
// the unpaid window, or the same margin before departure if that is sooner.
func PaymentDeadline(v models.ReservationView, window time.Duration) time.Time {
	byCreation := v.CreatedAt.Add(window)
	byDeparture := v.DateTime.Add(-window)
	if byDeparture.Before(byCreation) {
		return byDeparture
	}
	return byCreation
}

// SendPaymentReminders emails every unpaid reservation older than the unpaid
// window that has not been reminded yet. It returns how many were sent.
func (s *Service) SendPaymentReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListUnpaidReservations(ctx, now.Add(-s.unpaidAfter))
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid reservations: %w", err)
	}

	sent := 0
	for _, v := range due {
		if v.RemindedAt != nil {
			continue
		}
		view := v
		log := s.log.WithFields(logrus.Fields{"reservation_id": v.ID, "job": "payment_reminder"})
		deadline := PaymentDeadline(view, s.unpaidAfter)

		if !s.sendEmail(ctx, log, func() (notify.Email, error) { return notify.ReminderEmail(view, deadline) }) {
			continue
		}
		if err := s.store.MarkReminded(ctx, v.ID, now); err != nil {
			log.WithError(err).Error("failed to mark reservation reminded")
			continue
		}
		sent++
	}

	s.log.WithFields(logrus.Fields{"due": len(due), "sent": sent}).Info("payment reminders sent")
	return sent, nil
}

var errSkip = errors.New("skip")

// CancelUnpaidReservations cancels reservations left unpaid past the window,
// frees their seats and tells the passenger. Running it again cancels nothing
// new. It returns how many were cancelled.
func (s *Service) CancelUnpaidReservations(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListUnpaidReservations(ctx, now.Add(-s.unpaidAfter))
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid reservations: %w", err)
	}

	cancelled := 0
	for _, v := range due {
		view := v
		log := s.log.WithFields(logrus.Fields{"reservation_id": v.ID, "job": "unpaid_cancellation"})

		err := s.store.InTx(ctx, func(q database.Queries) error {
			err := cancelAndRelease(ctx, q, &view)
			if errors.Is(err, database.ErrConflict) {
				return errSkip
			}
			return err
		})
		if errors.Is(err, errSkip) {
			log.Debug("reservation no longer booked")
			continue
		}
		if err != nil {
			log.WithError(err).Error("failed to cancel unpaid reservation")
			continue
		}
		cancelled++
		view.Status = models.ReservationCancelled

		s.broadcastSeats(ctx, view.FlightID)
		s.sendEmail(ctx, log, func() (notify.Email, error) { return notify.CancellationEmail(view) })
	}

	s.log.WithFields(logrus.Fields{"due": len(due), "cancelled": cancelled}).Info("unpaid reservations swept")
	return cancelled, nil
}
