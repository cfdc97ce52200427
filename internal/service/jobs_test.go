package service

import (
	"errors"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
)

func (s *ServiceTestSuite) TestSendPaymentReminders() {
	old := s.book("1A", s.passenger)
	s.now = s.now.Add(20 * time.Minute)
	s.book("1B", s.stranger) // still inside the window
	s.now = s.now.Add(15 * time.Minute)

	sent, err := s.svc.SendPaymentReminders(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, sent)

	emails := s.notifier.sent(notify.KindReminder)
	s.Require().Len(emails, 1)
	s.Equal(old.ID, emails[0].ReservationID)
	s.Contains(emails[0].HTML, "Please complete payment before 2030-05-01 10:30")

	pnr, err := s.store.GetReservation(s.ctx, old.ID)
	s.Require().NoError(err)
	s.Require().NotNil(pnr.RemindedAt)
	s.Equal(models.ReservationBooked, pnr.Status)

	// a second run does not remind again
	sent, err = s.svc.SendPaymentReminders(s.ctx, s.now)
	s.Require().NoError(err)
	s.Zero(sent)
	s.Len(s.notifier.sent(notify.KindReminder), 1)
}

func (s *ServiceTestSuite) TestSendPaymentReminders_SkipsPaid() {
	v := s.book("1A", s.passenger)
	s.Require().NoError(s.svc.ProcessPayment(s.ctx, v.ID, validCard()))
	s.now = s.now.Add(time.Hour)

	sent, err := s.svc.SendPaymentReminders(s.ctx, s.now)
	s.Require().NoError(err)
	s.Zero(sent)
}

func (s *ServiceTestSuite) TestSendPaymentReminders_SendFailureRetriedNextRun() {
	v := s.book("1A", s.passenger)
	s.now = s.now.Add(time.Hour)
	s.notifier.err = errors.New("broker down")

	sent, err := s.svc.SendPaymentReminders(s.ctx, s.now)
	s.Require().NoError(err)
	s.Zero(sent)
	pnr, err := s.store.GetReservation(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Nil(pnr.RemindedAt)

	s.notifier.err = nil
	sent, err = s.svc.SendPaymentReminders(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, sent)
}

func (s *ServiceTestSuite) TestCancelUnpaidReservations() {
	unpaid := s.book("1A", s.passenger)
	paid := s.book("1B", s.passenger)
	s.Require().NoError(s.svc.ProcessPayment(s.ctx, paid.ID, validCard()))
	s.now = s.now.Add(20 * time.Minute)
	fresh := s.book("1C", s.stranger)
	s.now = s.now.Add(15 * time.Minute)

	n, err := s.svc.CancelUnpaidReservations(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, n)

	pnr, err := s.store.GetReservation(s.ctx, unpaid.ID)
	s.Require().NoError(err)
	s.Equal(models.ReservationCancelled, pnr.Status)
	s.Equal(models.SeatStatusAvailable, s.seatStatus("1A"))
	s.Equal(models.SeatStatusBooked, s.seatStatus("1B"))
	s.Equal(models.SeatStatusBooked, s.seatStatus("1C"))

	pnr, err = s.store.GetReservation(s.ctx, fresh.ID)
	s.Require().NoError(err)
	s.Equal(models.ReservationBooked, pnr.Status)

	emails := s.notifier.sent(notify.KindCancellation)
	s.Require().Len(emails, 1)
	s.Equal(unpaid.ID, emails[0].ReservationID)

	// re-running cancels nothing new
	n, err = s.svc.CancelUnpaidReservations(s.ctx, s.now)
	s.Require().NoError(err)
	s.Zero(n)
	s.Len(s.notifier.sent(notify.KindCancellation), 1)
}

func (s *ServiceTestSuite) TestCancelUnpaidReservations_NotifyFailureContinues() {
	s.book("1A", s.passenger)
	s.book("1B", s.stranger)
	s.now = s.now.Add(time.Hour)
	s.notifier.err = errors.New("broker down")

	n, err := s.svc.CancelUnpaidReservations(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(models.SeatStatusAvailable, s.seatStatus("1A"))
	s.Equal(models.SeatStatusAvailable, s.seatStatus("1B"))
}
