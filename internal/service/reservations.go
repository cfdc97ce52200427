package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
	"github.com/Victoradukwu/FlightsHub/internal/reference"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentAccepted is returned once ticketing has been scheduled.
const PaymentAccepted = "Request is being processed. We will send a mail shortly"

// CreateReservation books one seat for a passenger on behalf of requester,
// who owns the reservation and may pay for or cancel it later. With payment
// info the ticketing is scheduled right away.
func (s *Service) CreateReservation(ctx context.Context, requester *models.User, req models.CreateReservationRequest) (*models.ReservationView, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	req.SeatNumber = strings.ToUpper(strings.TrimSpace(req.SeatNumber))
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pnr := models.PassengerNameRecord{
		FlightID:      req.FlightID,
		PassengerName: strings.TrimSpace(req.PassengerName),
		Email:         req.Email,
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		SeatNumber:    req.SeatNumber,
		Status:        models.ReservationBooked,
		UserID:        &requester.ID,
	}

	err := s.store.InTx(ctx, func(q database.Queries) error {
		flight, err := q.GetFlight(ctx, req.FlightID)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if flight.Status.Terminal() {
			return models.NewValidationError("flight_id", "flight is %s", strings.ToLower(string(flight.Status)))
		}
		airline, err := q.GetAirline(ctx, flight.AirlineID)
		if err != nil {
			return fmt.Errorf("failed to get airline: %w", err)
		}

		if err := q.BookSeat(ctx, flight.ID, req.SeatNumber); err != nil {
			return fmt.Errorf("failed to book seat %s: %w", req.SeatNumber, err)
		}

		ref, err := reference.BookingReference(ctx, q, flight.ID, airline.ICAOCode, s.now().UTC().Year())
		if err != nil {
			return err
		}
		pnr.BookingReference = ref

		return q.CreateReservation(ctx, &pnr)
	})
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"reservation_id":    pnr.ID,
		"booking_reference": pnr.BookingReference,
		"flight_id":         pnr.FlightID,
		"seat_number":       pnr.SeatNumber,
	})
	log.Info("reservation created")

	s.broadcastSeats(ctx, pnr.FlightID)

	if req.PaymentInfo != nil && s.scheduler != nil {
		if err := s.scheduler.ScheduleTicketing(ctx, pnr.ID, *req.PaymentInfo); err != nil {
			log.WithError(err).Error("failed to schedule ticketing")
		}
	}

	return s.store.GetReservationView(ctx, pnr.ID)
}

func (s *Service) GetReservation(ctx context.Context, requester *models.User, id uuid.UUID) (*models.ReservationView, error) {
	view, err := s.store.GetReservationView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if err := s.authorizeReservation(ctx, requester, view); err != nil {
		return nil, err
	}
	return view, nil
}

// ProcessPayment captures the payment and tickets the reservation. It is
// safe to retry: a reservation that is already Ticketed is left alone.
func (s *Service) ProcessPayment(ctx context.Context, id uuid.UUID, info models.PaymentInfo) error {
	pnr, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	log := s.log.WithField("reservation_id", id)

	switch pnr.Status {
	case models.ReservationTicketed:
		log.Info("reservation already ticketed")
		return nil
	case models.ReservationCancelled:
		return ErrReservationClosed
	}

	if err := s.payments.Capture(ctx, id, info); err != nil {
		return fmt.Errorf("failed to capture payment: %w", err)
	}

	var ticket string
	err = s.store.InTx(ctx, func(q database.Queries) error {
		view, err := q.GetReservationView(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get reservation: %w", err)
		}
		ticket, err = reference.TicketNumber(ctx, q, view.FlightID, view.AirlineICAO, view.FlightNumber)
		if err != nil {
			return err
		}
		return q.TicketReservation(ctx, id, ticket, nil)
	})
	if errors.Is(err, database.ErrConflict) {
		return s.statusError(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to ticket reservation: %w", err)
	}
	log.WithField("ticket_number", ticket).Info("reservation ticketed")

	view, err := s.store.GetReservationView(ctx, id)
	if err != nil {
		log.WithError(err).Error("failed to load reservation for ticket email")
		return nil
	}
	s.sendEmail(ctx, log, func() (notify.Email, error) { return notify.TicketEmail(*view) })
	return nil
}

// statusError explains why a reservation left the Booked state under us.
// A concurrent ticketing counts as success.
func (s *Service) statusError(ctx context.Context, id uuid.UUID) error {
	pnr, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	switch pnr.Status {
	case models.ReservationTicketed:
		return nil
	case models.ReservationCancelled:
		return ErrReservationClosed
	}
	return fmt.Errorf("%w: reservation is %s", database.ErrConflict, pnr.Status)
}

// RequestPayment schedules ticketing for a Booked reservation.
func (s *Service) RequestPayment(ctx context.Context, requester *models.User, id uuid.UUID, info models.PaymentInfo) (string, error) {
	if strings.TrimSpace(info.CardNumber) == "" {
		return "", models.NewValidationError("card_number", "is required")
	}
	view, err := s.GetReservation(ctx, requester, id)
	if err != nil {
		return "", err
	}
	if err := checkBooked(view.Status); err != nil {
		return "", err
	}
	if s.scheduler == nil {
		return "", errors.New("ticketing is not configured")
	}
	if err := s.scheduler.ScheduleTicketing(ctx, id, info); err != nil {
		return "", fmt.Errorf("failed to schedule ticketing: %w", err)
	}
	s.log.WithFields(logrus.Fields{"reservation_id": id, "card": info.MaskedCard()}).Info("payment requested")
	return PaymentAccepted, nil
}

// CancelReservation cancels a Booked reservation and frees its seat.
func (s *Service) CancelReservation(ctx context.Context, requester *models.User, id uuid.UUID) (*models.ReservationView, error) {
	view, err := s.GetReservation(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if err := checkBooked(view.Status); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(q database.Queries) error {
		return cancelAndRelease(ctx, q, view)
	})
	if errors.Is(err, database.ErrConflict) {
		if pnr, gerr := s.store.GetReservation(ctx, id); gerr == nil {
			if berr := checkBooked(pnr.Status); berr != nil {
				return nil, berr
			}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"reservation_id": id, "by": requester.ID}).Info("reservation cancelled")
	s.broadcastSeats(ctx, view.FlightID)
	return s.store.GetReservationView(ctx, id)
}

func cancelAndRelease(ctx context.Context, q database.Queries, view *models.ReservationView) error {
	if err := q.CancelReservation(ctx, view.ID); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if err := q.ReleaseSeat(ctx, view.FlightID, view.SeatNumber); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	return nil
}

func checkBooked(status models.ReservationStatus) error {
	switch status {
	case models.ReservationTicketed:
		return ErrReservationTicketed
	case models.ReservationCancelled:
		return ErrReservationClosed
	}
	return nil
}

// authorizeReservation admits the owner, Global Admins and admins of the
// operating airline.
func (s *Service) authorizeReservation(ctx context.Context, u *models.User, view *models.ReservationView) error {
	if err := requireUser(u); err != nil {
		return err
	}
	if view.UserID != nil && *view.UserID == u.ID {
		return nil
	}
	return requireAirlineAdmin(ctx, s.store, u, view.AirlineID)
}

// ReserveSeats marks seats of a flight Booked without a reservation. Either
// every seat is held or none is.
func (s *Service) ReserveSeats(ctx context.Context, requester *models.User, flightID uuid.UUID, seatIDs []uuid.UUID) ([]models.FlightSeat, error) {
	if len(seatIDs) == 0 {
		return nil, models.NewValidationError("seat_ids", "at least one seat is required")
	}
	flight, err := s.store.GetFlight(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	if err := requireAirlineAdmin(ctx, s.store, requester, flight.AirlineID); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(q database.Queries) error {
		if err := q.HoldSeats(ctx, flightID, seatIDs); err != nil {
			return fmt.Errorf("failed to hold seats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"flight_id": flightID, "seats": len(seatIDs)}).Info("seats reserved")
	seats, err := s.store.ListSeats(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	s.hub.BroadcastSeats(flightID, seats)
	return seats, nil
}

func (s *Service) sendEmail(ctx context.Context, log logrus.FieldLogger, build func() (notify.Email, error)) bool {
	email, err := build()
	if err != nil {
		log.WithError(err).Error("failed to build email")
		return false
	}
	if err := s.notifier.Send(ctx, email); err != nil {
		log.WithError(err).WithField("kind", email.Kind).Error("failed to send email")
		return false
	}
	return true
}
