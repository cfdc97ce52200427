package service

import (
	"errors"
	"sync"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
	"github.com/Victoradukwu/FlightsHub/internal/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func (s *ServiceTestSuite) TestCreateReservation() {
	v := s.book("1a", s.passenger)

	s.Equal("PNR-ABC-2030-0000001", v.BookingReference)
	s.Equal("1A", v.SeatNumber)
	s.Equal(models.ReservationBooked, v.Status)
	s.Equal("ABC123", v.FlightNumber)
	s.Equal("Alpha Air", v.AirlineName)
	s.Nil(v.TicketNumber)
	s.Require().NotNil(v.UserID)
	s.Equal(s.passenger.ID, *v.UserID)
	s.Equal(models.SeatStatusBooked, s.seatStatus("1A"))

	seats, ok := s.hub.seats[s.flight.ID]
	s.Require().True(ok)
	s.Len(seats, 6)

	second := s.book("1B", s.stranger)
	s.Equal("PNR-ABC-2030-0000002", second.BookingReference)
	s.Require().NotNil(second.UserID)
	s.Equal(s.stranger.ID, *second.UserID)
	s.sched.AssertNotCalled(s.T(), "ScheduleTicketing", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestCreateReservation_RequiresUser() {
	_, err := s.svc.CreateReservation(s.ctx, nil, s.reservationRequest("1A"))
	s.ErrorIs(err, ErrUnauthenticated)
	s.Equal(models.SeatStatusAvailable, s.seatStatus("1A"))
}

func (s *ServiceTestSuite) TestCreateReservation_SeatTaken() {
	s.book("1A", s.passenger)

	_, err := s.svc.CreateReservation(s.ctx, s.stranger, s.reservationRequest("1A"))
	s.ErrorIs(err, database.ErrSeatNotAvailable)
}

func (s *ServiceTestSuite) TestCreateReservation_ConcurrentSameSeat() {
	const n = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   int
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.CreateReservation(s.ctx, s.stranger, s.reservationRequest("2B"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, database.ErrSeatNotAvailable):
				rejected++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, booked)
	s.Equal(n-1, rejected)
}

func (s *ServiceTestSuite) TestCreateReservation_ConcurrentUniqueReferences() {
	seats := []string{"1A", "1B", "1C", "2A", "2B", "2C"}
	refs := make(chan string, len(seats))
	var wg sync.WaitGroup
	for _, seat := range seats {
		wg.Add(1)
		go func(seat string) {
			defer wg.Done()
			v, err := s.svc.CreateReservation(s.ctx, s.stranger, s.reservationRequest(seat))
			if err == nil {
				refs <- v.BookingReference
			}
		}(seat)
	}
	wg.Wait()
	close(refs)

	seen := map[string]bool{}
	for ref := range refs {
		s.False(seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	s.Len(seen, len(seats))
	s.True(seen["PNR-ABC-2030-0000006"])
}

func (s *ServiceTestSuite) TestCreateReservation_Invalid() {
	_, err := s.svc.CreateReservation(s.ctx, s.stranger, s.reservationRequest("9Z"))
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.svc.CreateReservation(s.ctx, s.stranger, s.reservationRequest("7A"))
	s.ErrorIs(err, database.ErrNotFound)

	req := s.reservationRequest("1A")
	req.FlightID = uuid.New()
	_, err = s.svc.CreateReservation(s.ctx, s.stranger, req)
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *ServiceTestSuite) TestCreateReservation_TerminalFlight() {
	status := models.FlightStatusCancelled
	_, err := s.svc.UpdateFlight(s.ctx, s.airlineAdmin, s.flight.ID, models.FlightUpdate{Status: &status})
	s.Require().NoError(err)

	_, err = s.svc.CreateReservation(s.ctx, s.stranger, s.reservationRequest("1A"))
	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("flight_id", verr.Field)
	s.Equal(models.SeatStatusAvailable, s.seatStatus("1A"))
}

func (s *ServiceTestSuite) TestCreateReservation_WithPaymentSchedulesTicketing() {
	card := validCard()
	s.sched.On("ScheduleTicketing", mock.Anything, mock.AnythingOfType("uuid.UUID"), card).Return(nil).Once()

	req := s.reservationRequest("1C")
	req.PaymentInfo = &card
	v, err := s.svc.CreateReservation(s.ctx, s.passenger, req)
	s.Require().NoError(err)
	s.Equal(models.ReservationBooked, v.Status)

	s.sched.AssertExpectations(s.T())
	s.Equal(v.ID, s.sched.Calls[0].Arguments.Get(1))
}

func (s *ServiceTestSuite) TestCreateReservation_ScheduleFailureKeepsBooking() {
	s.sched.On("ScheduleTicketing", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("temporal down"))

	card := validCard()
	req := s.reservationRequest("1C")
	req.PaymentInfo = &card
	v, err := s.svc.CreateReservation(s.ctx, s.stranger, req)
	s.Require().NoError(err)
	s.Equal(models.ReservationBooked, v.Status)
}

func (s *ServiceTestSuite) TestProcessPayment() {
	v := s.book("1A", s.passenger)

	s.Require().NoError(s.svc.ProcessPayment(s.ctx, v.ID, validCard()))

	got, err := s.svc.GetReservation(s.ctx, s.passenger, v.ID)
	s.Require().NoError(err)
	s.Equal(models.ReservationTicketed, got.Status)
	s.Require().NotNil(got.TicketNumber)
	s.Equal("TKT-ABC-ABC123-0001", *got.TicketNumber)

	emails := s.notifier.sent(notify.KindTicket)
	s.Require().Len(emails, 1)
	s.Equal("ada@example.com", emails[0].To)
	s.Equal(v.ID, emails[0].ReservationID)
	s.Contains(emails[0].HTML, "TKT-ABC-ABC123-0001")

	// retries are no-ops
	s.Require().NoError(s.svc.ProcessPayment(s.ctx, v.ID, validCard()))
	s.Len(s.notifier.sent(notify.KindTicket), 1)

	second := s.book("1B", s.stranger)
	s.Require().NoError(s.svc.ProcessPayment(s.ctx, second.ID, validCard()))
	pnr, err := s.store.GetReservation(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal("TKT-ABC-ABC123-0002", *pnr.TicketNumber)
}

func (s *ServiceTestSuite) TestProcessPayment_Declined() {
	v := s.book("1A", s.passenger)
	card := validCard()
	card.CardNumber = "123"

	err := s.svc.ProcessPayment(s.ctx, v.ID, card)
	s.ErrorIs(err, payment.ErrDeclined)

	pnr, err := s.store.GetReservation(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.ReservationBooked, pnr.Status)
	s.Nil(pnr.TicketNumber)
	s.Empty(s.notifier.sent(notify.KindTicket))
}

func (s *ServiceTestSuite) TestProcessPayment_CaptureUsesProcessor() {
	payments := &MockPayments{}
	s.svc.payments = payments
	v := s.book("1A", s.stranger)
	payments.On("Capture", mock.Anything, v.ID, validCard()).Return(nil).Once()

	s.Require().NoError(s.svc.ProcessPayment(s.ctx, v.ID, validCard()))
	payments.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) TestProcessPayment_Closed() {
	v := s.book("1A", s.passenger)
	_, err := s.svc.CancelReservation(s.ctx, s.passenger, v.ID)
	s.Require().NoError(err)

	s.ErrorIs(s.svc.ProcessPayment(s.ctx, v.ID, validCard()), ErrReservationClosed)
	s.ErrorIs(s.svc.ProcessPayment(s.ctx, uuid.New(), validCard()), database.ErrNotFound)
}

func (s *ServiceTestSuite) TestGetReservation_Authorization() {
	v := s.book("1A", s.passenger)

	for name, u := range map[string]*models.User{
		"owner":         s.passenger,
		"global admin":  s.globalAdmin,
		"airline admin": s.airlineAdmin,
	} {
		_, err := s.svc.GetReservation(s.ctx, u, v.ID)
		s.NoError(err, name)
	}

	_, err := s.svc.GetReservation(s.ctx, s.stranger, v.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.GetReservation(s.ctx, nil, v.ID)
	s.ErrorIs(err, ErrUnauthenticated)
	_, err = s.svc.GetReservation(s.ctx, s.passenger, uuid.New())
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *ServiceTestSuite) TestCancelReservation() {
	v := s.book("2A", s.passenger)

	_, err := s.svc.CancelReservation(s.ctx, s.stranger, v.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.CancelReservation(s.ctx, nil, v.ID)
	s.ErrorIs(err, ErrUnauthenticated)

	got, err := s.svc.CancelReservation(s.ctx, s.passenger, v.ID)
	s.Require().NoError(err)
	s.Equal(models.ReservationCancelled, got.Status)
	s.Equal(models.SeatStatusAvailable, s.seatStatus("2A"))

	_, err = s.svc.CancelReservation(s.ctx, s.passenger, v.ID)
	s.ErrorIs(err, ErrReservationClosed)

	// the freed seat can be booked again
	again := s.book("2A", s.stranger)
	s.Equal("PNR-ABC-2030-0000002", again.BookingReference)
}

func (s *ServiceTestSuite) TestCancelReservation_Ticketed() {
	v := s.book("2A", s.passenger)
	s.Require().NoError(s.svc.ProcessPayment(s.ctx, v.ID, validCard()))

	_, err := s.svc.CancelReservation(s.ctx, s.airlineAdmin, v.ID)
	s.ErrorIs(err, ErrReservationTicketed)
	s.Equal(models.SeatStatusBooked, s.seatStatus("2A"))
}

func (s *ServiceTestSuite) TestRequestPayment() {
	v := s.book("1A", s.passenger)
	s.sched.On("ScheduleTicketing", mock.Anything, v.ID, validCard()).Return(nil).Once()

	msg, err := s.svc.RequestPayment(s.ctx, s.passenger, v.ID, validCard())
	s.Require().NoError(err)
	s.Equal(PaymentAccepted, msg)
	s.sched.AssertExpectations(s.T())

	_, err = s.svc.RequestPayment(s.ctx, s.passenger, v.ID, models.PaymentInfo{})
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.svc.RequestPayment(s.ctx, s.stranger, v.ID, validCard())
	s.ErrorIs(err, ErrForbidden)

	s.Require().NoError(s.svc.ProcessPayment(s.ctx, v.ID, validCard()))
	_, err = s.svc.RequestPayment(s.ctx, s.passenger, v.ID, validCard())
	s.ErrorIs(err, ErrReservationTicketed)
}

func (s *ServiceTestSuite) TestAsyncScheduler() {
	s.svc.SetScheduler(NewAsyncScheduler(s.svc, 0))
	v := s.book("1A", s.passenger)

	_, err := s.svc.RequestPayment(s.ctx, s.passenger, v.ID, validCard())
	s.Require().NoError(err)
	s.svc.Wait()

	pnr, err := s.store.GetReservation(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.ReservationTicketed, pnr.Status)
}

func (s *ServiceTestSuite) TestReserveSeats() {
	seats, err := s.store.ListSeats(s.ctx, s.flight.ID)
	s.Require().NoError(err)
	ids := []uuid.UUID{seats[0].ID, seats[1].ID}

	_, err = s.svc.ReserveSeats(s.ctx, s.passenger, s.flight.ID, ids)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.ReserveSeats(s.ctx, s.airlineAdmin, s.flight.ID, nil)
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	got, err := s.svc.ReserveSeats(s.ctx, s.airlineAdmin, s.flight.ID, ids)
	s.Require().NoError(err)
	booked := 0
	for _, seat := range got {
		if seat.Status == models.SeatStatusBooked {
			booked++
		}
	}
	s.Equal(2, booked)

	// one unknown seat fails the whole batch
	_, err = s.svc.ReserveSeats(s.ctx, s.globalAdmin, s.flight.ID, []uuid.UUID{seats[2].ID, uuid.New()})
	s.ErrorIs(err, database.ErrNotFound)
	s.Equal(models.SeatStatusAvailable, s.seatStatus(seats[2].SeatNumber))
}
