package service

import (
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *ServiceTestSuite) TestCreateAirport() {
	_, err := s.svc.CreateAirport(s.ctx, s.airlineAdmin, models.Airport{Name: "Port Harcourt", City: "PH", IATACode: "PHC", TimeZone: "Africa/Lagos"})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.CreateAirport(s.ctx, s.globalAdmin, models.Airport{Name: "Port Harcourt", City: "PH", IATACode: "PHC", TimeZone: "Mars/Olympus"})
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.svc.CreateAirport(s.ctx, s.globalAdmin, models.Airport{Name: "Other", City: "Lagos", IATACode: "LOS", TimeZone: "Africa/Lagos"})
	s.ErrorIs(err, database.ErrConflict)

	s.Equal("LOS", s.origin.IATACode)
	found, err := s.svc.ListAirports(s.ctx, "murtala")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(s.origin.ID, found[0].ID)
}

func (s *ServiceTestSuite) TestUpdateAirport() {
	city := "Ikeja"
	a, err := s.svc.UpdateAirport(s.ctx, s.globalAdmin, s.origin.ID, models.AirportUpdate{City: &city})
	s.Require().NoError(err)
	s.Equal("Ikeja", a.City)
	s.Equal("LOS", a.IATACode)

	_, err = s.svc.UpdateAirport(s.ctx, s.passenger, s.origin.ID, models.AirportUpdate{City: &city})
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.UpdateAirport(s.ctx, s.globalAdmin, uuid.New(), models.AirportUpdate{City: &city})
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *ServiceTestSuite) TestCreateAirline() {
	s.Equal([]uuid.UUID{s.airlineAdmin.ID}, s.airline.AdminIDs)

	_, err := s.svc.CreateAirline(s.ctx, s.globalAdmin, models.CreateAirlineRequest{
		Name: "Beta", Email: "not-an-email", ContactPhone: "1", ICAOCode: "BET",
	})
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.svc.CreateAirline(s.ctx, s.globalAdmin, models.CreateAirlineRequest{
		Name: "Beta", Email: "ops@beta.example.com", ContactPhone: "1", ICAOCode: "BET", Admins: []uuid.UUID{uuid.New()},
	})
	s.ErrorIs(err, database.ErrNotFound)

	_, err = s.svc.CreateAirline(s.ctx, s.airlineAdmin, models.CreateAirlineRequest{
		Name: "Beta", Email: "ops@beta.example.com", ContactPhone: "1", ICAOCode: "BET",
	})
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestUpdateAirline() {
	phone := "+2348099999999"
	a, err := s.svc.UpdateAirline(s.ctx, s.airlineAdmin, s.airline.ID, models.AirlineUpdate{ContactPhone: &phone})
	s.Require().NoError(err)
	s.Equal(phone, a.ContactPhone)

	admins := []uuid.UUID{s.stranger.ID}
	_, err = s.svc.UpdateAirline(s.ctx, s.airlineAdmin, s.airline.ID, models.AirlineUpdate{Admins: &admins})
	s.ErrorIs(err, ErrForbidden)

	a, err = s.svc.UpdateAirline(s.ctx, s.globalAdmin, s.airline.ID, models.AirlineUpdate{Admins: &admins})
	s.Require().NoError(err)
	s.Equal(admins, a.AdminIDs)

	// the dropped admin has lost access
	_, err = s.svc.UpdateAirline(s.ctx, s.airlineAdmin, s.airline.ID, models.AirlineUpdate{ContactPhone: &phone})
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestCreateFlight() {
	s.Equal("ABC123", s.flight.FlightNumber)
	s.Equal(models.FlightStatusPending, s.flight.Status)
	s.Equal("120.50", s.flight.Airfare.StringFixed(2))

	req := models.CreateFlightRequest{
		AirlineID:         s.airline.ID,
		FlightNumber:      123,
		DateTime:          s.flight.DateTime.Add(3 * time.Hour),
		DeparturePortID:   s.origin.ID,
		DestinationPortID: s.destination.ID,
	}

	_, err := s.svc.CreateFlight(s.ctx, s.airlineAdmin, req)
	s.ErrorIs(err, database.ErrConflict, "same number, port and day")

	other := req
	other.DeparturePortID = s.destination.ID
	other.DestinationPortID = s.origin.ID
	_, err = s.svc.CreateFlight(s.ctx, s.airlineAdmin, other)
	s.NoError(err, "same number from another port")

	nextDay := req
	nextDay.DateTime = s.flight.DateTime.AddDate(0, 0, 1)
	_, err = s.svc.CreateFlight(s.ctx, s.airlineAdmin, nextDay)
	s.NoError(err)

	var verr *models.ValidationError
	samePort := req
	samePort.FlightNumber = 9
	samePort.DestinationPortID = s.origin.ID
	_, err = s.svc.CreateFlight(s.ctx, s.airlineAdmin, samePort)
	s.ErrorAs(err, &verr)

	badNumber := req
	badNumber.FlightNumber = 10000
	_, err = s.svc.CreateFlight(s.ctx, s.airlineAdmin, badNumber)
	s.ErrorAs(err, &verr)

	negative := req
	negative.FlightNumber = 8
	fare := decimal.NewFromInt(-1)
	negative.Airfare = &fare
	_, err = s.svc.CreateFlight(s.ctx, s.airlineAdmin, negative)
	s.ErrorAs(err, &verr)

	_, err = s.svc.CreateFlight(s.ctx, s.stranger, models.CreateFlightRequest{
		AirlineID: s.airline.ID, FlightNumber: 7, DateTime: req.DateTime,
		DeparturePortID: s.origin.ID, DestinationPortID: s.destination.ID,
	})
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestUpdateFlight() {
	number := 456
	f, err := s.svc.UpdateFlight(s.ctx, s.airlineAdmin, s.flight.ID, models.FlightUpdate{FlightNumber: &number})
	s.Require().NoError(err)
	s.Equal("ABC456", f.FlightNumber)

	bad := models.FlightStatus("Boarding")
	_, err = s.svc.UpdateFlight(s.ctx, s.airlineAdmin, s.flight.ID, models.FlightUpdate{Status: &bad})
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	conducted := models.FlightStatusConducted
	_, err = s.svc.UpdateFlight(s.ctx, s.airlineAdmin, s.flight.ID, models.FlightUpdate{Status: &conducted})
	s.Require().NoError(err)

	pending := models.FlightStatusPending
	_, err = s.svc.UpdateFlight(s.ctx, s.airlineAdmin, s.flight.ID, models.FlightUpdate{Status: &pending})
	s.ErrorAs(err, &verr)

	_, err = s.svc.UpdateFlight(s.ctx, s.passenger, s.flight.ID, models.FlightUpdate{FlightNumber: &number})
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceTestSuite) TestCreateSeats() {
	_, err := s.svc.CreateSeats(s.ctx, s.airlineAdmin, s.flight.ID, models.CreateSeatsRequest{SeatNumbers: []string{"3A", "0B"}})
	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("seat_number", verr.Field)

	seats, err := s.svc.ListSeats(s.ctx, s.flight.ID)
	s.Require().NoError(err)
	s.Len(seats, 6, "nothing persisted from an invalid batch")

	_, err = s.svc.CreateSeats(s.ctx, s.airlineAdmin, s.flight.ID, models.CreateSeatsRequest{SeatNumbers: []string{"3A", "1A"}})
	s.ErrorIs(err, database.ErrConflict)

	_, err = s.svc.CreateSeats(s.ctx, s.stranger, s.flight.ID, models.CreateSeatsRequest{SeatNumbers: []string{"3A"}})
	s.ErrorIs(err, ErrForbidden)

	created, err := s.svc.CreateSeats(s.ctx, s.airlineAdmin, s.flight.ID, models.CreateSeatsRequest{SeatNumbers: []string{"3a", "3b"}})
	s.Require().NoError(err)
	s.Equal("3A", created[0].SeatNumber)
	s.Len(s.hub.seats[s.flight.ID], 8)

	_, err = s.svc.ListSeats(s.ctx, uuid.New())
	s.ErrorIs(err, database.ErrNotFound)
}
