package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// --- Airports ---

func validateAirport(a *models.Airport) error {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	a.IATACode = strings.ToUpper(strings.TrimSpace(a.IATACode))
	if a.Name == "" {
		return models.NewValidationError("airport_name", "is required")
	}
	if a.City == "" {
		return models.NewValidationError("city", "is required")
	}
	if err := models.ValidateIATA("iata_code", a.IATACode); err != nil {
		return err
	}
	return models.ValidateTimeZone(a.TimeZone)
}

func (s *Service) CreateAirport(ctx context.Context, requester *models.User, a models.Airport) (*models.Airport, error) {
	if err := requireGlobalAdmin(requester); err != nil {
		return nil, err
	}
	a.ID = uuid.Nil
	if err := validateAirport(&a); err != nil {
		return nil, err
	}
	if err := s.store.CreateAirport(ctx, &a); err != nil {
		return nil, fmt.Errorf("failed to create airport: %w", err)
	}
	s.log.WithField("iata_code", a.IATACode).Info("airport created")
	return &a, nil
}

func (s *Service) ListAirports(ctx context.Context, query string) ([]models.Airport, error) {
	return s.store.ListAirports(ctx, strings.TrimSpace(query))
}

func (s *Service) GetAirport(ctx context.Context, id uuid.UUID) (*models.Airport, error) {
	return s.store.GetAirport(ctx, id)
}

func (s *Service) UpdateAirport(ctx context.Context, requester *models.User, id uuid.UUID, upd models.AirportUpdate) (*models.Airport, error) {
	if err := requireGlobalAdmin(requester); err != nil {
		return nil, err
	}
	var out *models.Airport
	err := s.store.InTx(ctx, func(q database.Queries) error {
		a, err := q.GetAirport(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get airport: %w", err)
		}
		upd.Apply(a)
		if err := validateAirport(a); err != nil {
			return err
		}
		if err := q.UpdateAirport(ctx, a); err != nil {
			return fmt.Errorf("failed to update airport: %w", err)
		}
		out = a
		return nil
	})
	return out, err
}

// --- Airlines ---

func validateAirline(a *models.Airline) error {
	a.Name = strings.TrimSpace(a.Name)
	a.ICAOCode = strings.ToUpper(strings.TrimSpace(a.ICAOCode))
	if a.Name == "" {
		return models.NewValidationError("airline_name", "is required")
	}
	if err := models.ValidateEmail("email", a.Email); err != nil {
		return err
	}
	if strings.TrimSpace(a.ContactPhone) == "" {
		return models.NewValidationError("contact_phone", "is required")
	}
	return models.ValidateIATA("icao_code", a.ICAOCode)
}

// checkAdmins requires every admin id to name an existing user.
func checkAdmins(ctx context.Context, q database.Queries, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := q.GetUser(ctx, id); err != nil {
			return fmt.Errorf("failed to get admin %s: %w", id, err)
		}
	}
	return nil
}

func (s *Service) CreateAirline(ctx context.Context, requester *models.User, req models.CreateAirlineRequest) (*models.Airline, error) {
	if err := requireGlobalAdmin(requester); err != nil {
		return nil, err
	}
	a := models.Airline{
		Name:         req.Name,
		Email:        strings.TrimSpace(req.Email),
		ContactPhone: req.ContactPhone,
		ICAOCode:     req.ICAOCode,
		AdminIDs:     req.Admins,
	}
	if err := validateAirline(&a); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(q database.Queries) error {
		if err := checkAdmins(ctx, q, a.AdminIDs); err != nil {
			return err
		}
		if err := q.CreateAirline(ctx, &a); err != nil {
			return fmt.Errorf("failed to create airline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"airline_id": a.ID, "icao_code": a.ICAOCode}).Info("airline created")
	return s.store.GetAirline(ctx, a.ID)
}

func (s *Service) ListAirlines(ctx context.Context, query string) ([]models.Airline, error) {
	return s.store.ListAirlines(ctx, strings.TrimSpace(query))
}

func (s *Service) GetAirline(ctx context.Context, id uuid.UUID) (*models.Airline, error) {
	return s.store.GetAirline(ctx, id)
}

// UpdateAirline applies a partial update. Admins dropped from the list lose
// their admin rights on the airline.
func (s *Service) UpdateAirline(ctx context.Context, requester *models.User, id uuid.UUID, upd models.AirlineUpdate) (*models.Airline, error) {
	if err := requireAirlineAdmin(ctx, s.store, requester, id); err != nil {
		return nil, err
	}
	if upd.Admins != nil && !requester.IsGlobalAdmin() {
		return nil, fmt.Errorf("%w: only a global admin can change airline admins", ErrForbidden)
	}

	err := s.store.InTx(ctx, func(q database.Queries) error {
		a, err := q.GetAirline(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get airline: %w", err)
		}
		upd.Apply(a)
		if err := validateAirline(a); err != nil {
			return err
		}
		if err := checkAdmins(ctx, q, a.AdminIDs); err != nil {
			return err
		}
		if err := q.UpdateAirline(ctx, a); err != nil {
			return fmt.Errorf("failed to update airline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetAirline(ctx, id)
}

// --- Flights ---

// checkPorts requires both ports to exist and differ.
func checkPorts(ctx context.Context, q database.Queries, departure, destination uuid.UUID) error {
	if departure == destination {
		return models.NewValidationError("destination_port_id", "departure and destination ports must be different")
	}
	if _, err := q.GetAirport(ctx, departure); err != nil {
		return fmt.Errorf("failed to get departure port: %w", err)
	}
	if _, err := q.GetAirport(ctx, destination); err != nil {
		return fmt.Errorf("failed to get destination port: %w", err)
	}
	return nil
}

func checkFlightNumber(ctx context.Context, q database.Queries, f *models.Flight, excludeID uuid.UUID) error {
	taken, err := q.FlightNumberTaken(ctx, f.FlightNumber, f.DateTime, f.DeparturePortID, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check flight number: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: flight %s already departs from this port on %s",
			database.ErrConflict, f.FlightNumber, f.DateTime.UTC().Format(models.DateLayout))
	}
	return nil
}

func (s *Service) CreateFlight(ctx context.Context, requester *models.User, req models.CreateFlightRequest) (*models.Flight, error) {
	if err := models.ValidateFlightNumber(req.FlightNumber); err != nil {
		return nil, err
	}
	if req.DateTime.IsZero() {
		return nil, models.NewValidationError("date_time", "is required")
	}
	if req.Airfare != nil && req.Airfare.IsNegative() {
		return nil, models.NewValidationError("airfare", "must not be negative")
	}

	var f models.Flight
	err := s.store.InTx(ctx, func(q database.Queries) error {
		airline, err := q.GetAirline(ctx, req.AirlineID)
		if err != nil {
			return fmt.Errorf("failed to get airline: %w", err)
		}
		if err := requireAirlineAdmin(ctx, q, requester, airline.ID); err != nil {
			return err
		}
		if err := checkPorts(ctx, q, req.DeparturePortID, req.DestinationPortID); err != nil {
			return err
		}

		f = models.Flight{
			AirlineID:         airline.ID,
			FlightNumber:      models.FormatFlightNumber(airline.ICAOCode, req.FlightNumber),
			DateTime:          req.DateTime.UTC(),
			DeparturePortID:   req.DeparturePortID,
			DestinationPortID: req.DestinationPortID,
			Status:            models.FlightStatusPending,
		}
		if req.Airfare != nil {
			fare := req.Airfare.Round(2)
			f.Airfare = &fare
		}
		if err := checkFlightNumber(ctx, q, &f, uuid.Nil); err != nil {
			return err
		}
		if err := q.CreateFlight(ctx, &f); err != nil {
			return fmt.Errorf("failed to create flight: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"flight_id": f.ID, "flight_number": f.FlightNumber}).Info("flight created")
	return &f, nil
}

func (s *Service) GetFlight(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	return s.store.GetFlight(ctx, id)
}

func (s *Service) ListFlights(ctx context.Context) ([]models.Flight, error) {
	return s.store.ListFlights(ctx)
}

// UpdateFlight applies a partial update. Cancelled and Conducted flights keep
// their status.
func (s *Service) UpdateFlight(ctx context.Context, requester *models.User, id uuid.UUID, upd models.FlightUpdate) (*models.Flight, error) {
	if upd.FlightNumber != nil {
		if err := models.ValidateFlightNumber(*upd.FlightNumber); err != nil {
			return nil, err
		}
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, models.NewValidationError("status", "unknown flight status %q", *upd.Status)
	}
	if upd.Airfare != nil && upd.Airfare.IsNegative() {
		return nil, models.NewValidationError("airfare", "must not be negative")
	}

	var out *models.Flight
	err := s.store.InTx(ctx, func(q database.Queries) error {
		f, err := q.GetFlight(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		airline, err := q.GetAirline(ctx, f.AirlineID)
		if err != nil {
			return fmt.Errorf("failed to get airline: %w", err)
		}
		if err := requireAirlineAdmin(ctx, q, requester, airline.ID); err != nil {
			return err
		}
		if f.Status.Terminal() && upd.Status != nil && *upd.Status != f.Status {
			return models.NewValidationError("status", "a %s flight cannot change status", strings.ToLower(string(f.Status)))
		}

		upd.Apply(f, airline.ICAOCode)
		if upd.DeparturePortID != nil || upd.DestinationPortID != nil {
			if err := checkPorts(ctx, q, f.DeparturePortID, f.DestinationPortID); err != nil {
				return err
			}
		}
		if err := checkFlightNumber(ctx, q, f, f.ID); err != nil {
			return err
		}
		if err := q.UpdateFlight(ctx, f); err != nil {
			return fmt.Errorf("failed to update flight: %w", err)
		}
		out = f
		return nil
	})
	return out, err
}

// --- Seats ---

func (s *Service) ListSeats(ctx context.Context, flightID uuid.UUID) ([]models.FlightSeat, error) {
	if _, err := s.store.GetFlight(ctx, flightID); err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return s.store.ListSeats(ctx, flightID)
}

// CreateSeats adds seats to a flight. Every seat number is validated before
// anything is written, and a duplicate fails the whole batch.
func (s *Service) CreateSeats(ctx context.Context, requester *models.User, flightID uuid.UUID, req models.CreateSeatsRequest) ([]models.FlightSeat, error) {
	if len(req.SeatNumbers) == 0 {
		return nil, models.NewValidationError("seat_numbers", "at least one seat is required")
	}
	seats := make([]models.FlightSeat, 0, len(req.SeatNumbers))
	for _, n := range req.SeatNumbers {
		n = strings.ToUpper(strings.TrimSpace(n))
		if err := models.ValidateSeatNumber(n); err != nil {
			return nil, err
		}
		seats = append(seats, models.FlightSeat{FlightID: flightID, SeatNumber: n, Status: models.SeatStatusAvailable})
	}

	err := s.store.InTx(ctx, func(q database.Queries) error {
		f, err := q.GetFlight(ctx, flightID)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if err := requireAirlineAdmin(ctx, q, requester, f.AirlineID); err != nil {
			return err
		}
		if err := q.CreateSeats(ctx, seats); err != nil {
			return fmt.Errorf("failed to create seats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"flight_id": flightID, "seats": len(seats)}).Info("seats created")
	s.broadcastSeats(ctx, flightID)
	return seats, nil
}
