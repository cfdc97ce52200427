package database

import (
	"context"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
)

// Single-operation entry points of MemoryStore. Each runs atomically under the store lock.

func (m *MemoryStore) CreateAirport(ctx context.Context, a *models.Airport) error {
	return m.run(func(s *memState) error { return s.CreateAirport(ctx, a) })
}

func (m *MemoryStore) GetAirport(ctx context.Context, id uuid.UUID) (a *models.Airport, err error) {
	m.read(func(s *memState) { a, err = s.GetAirport(ctx, id) })
	return
}

func (m *MemoryStore) GetAirportByIATA(ctx context.Context, code string) (a *models.Airport, err error) {
	m.read(func(s *memState) { a, err = s.GetAirportByIATA(ctx, code) })
	return
}

func (m *MemoryStore) ListAirports(ctx context.Context, nameLike string) (out []models.Airport, err error) {
	m.read(func(s *memState) { out, err = s.ListAirports(ctx, nameLike) })
	return
}

func (m *MemoryStore) UpdateAirport(ctx context.Context, a *models.Airport) error {
	return m.run(func(s *memState) error { return s.UpdateAirport(ctx, a) })
}

func (m *MemoryStore) CreateAirline(ctx context.Context, a *models.Airline) error {
	return m.run(func(s *memState) error { return s.CreateAirline(ctx, a) })
}

func (m *MemoryStore) GetAirline(ctx context.Context, id uuid.UUID) (a *models.Airline, err error) {
	m.read(func(s *memState) { a, err = s.GetAirline(ctx, id) })
	return
}

func (m *MemoryStore) ListAirlines(ctx context.Context, nameLike string) (out []models.Airline, err error) {
	m.read(func(s *memState) { out, err = s.ListAirlines(ctx, nameLike) })
	return
}

func (m *MemoryStore) UpdateAirline(ctx context.Context, a *models.Airline) error {
	return m.run(func(s *memState) error { return s.UpdateAirline(ctx, a) })
}

func (m *MemoryStore) IsAirlineAdmin(ctx context.Context, airlineID, userID uuid.UUID) (ok bool, err error) {
	m.read(func(s *memState) { ok, err = s.IsAirlineAdmin(ctx, airlineID, userID) })
	return
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	return m.run(func(s *memState) error { return s.CreateUser(ctx, u) })
}

func (m *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (u *models.User, err error) {
	m.read(func(s *memState) { u, err = s.GetUser(ctx, id) })
	return
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (u *models.User, err error) {
	m.read(func(s *memState) { u, err = s.GetUserByUsername(ctx, username) })
	return
}

func (m *MemoryStore) CreateFlight(ctx context.Context, f *models.Flight) error {
	return m.run(func(s *memState) error { return s.CreateFlight(ctx, f) })
}

func (m *MemoryStore) GetFlight(ctx context.Context, id uuid.UUID) (f *models.Flight, err error) {
	m.read(func(s *memState) { f, err = s.GetFlight(ctx, id) })
	return
}

func (m *MemoryStore) ListFlights(ctx context.Context) (out []models.Flight, err error) {
	m.read(func(s *memState) { out, err = s.ListFlights(ctx) })
	return
}

func (m *MemoryStore) UpdateFlight(ctx context.Context, f *models.Flight) error {
	return m.run(func(s *memState) error { return s.UpdateFlight(ctx, f) })
}

func (m *MemoryStore) FlightNumberTaken(ctx context.Context, flightNumber string, day time.Time, departurePortID, excludeID uuid.UUID) (taken bool, err error) {
	m.read(func(s *memState) { taken, err = s.FlightNumberTaken(ctx, flightNumber, day, departurePortID, excludeID) })
	return
}

func (m *MemoryStore) FindFlights(ctx context.Context, q models.FlightQuery) (out []models.Flight, err error) {
	m.read(func(s *memState) { out, err = s.FindFlights(ctx, q) })
	return
}

func (m *MemoryStore) CreateSeats(ctx context.Context, seats []models.FlightSeat) error {
	return m.run(func(s *memState) error { return s.CreateSeats(ctx, seats) })
}

func (m *MemoryStore) ListSeats(ctx context.Context, flightID uuid.UUID) (out []models.FlightSeat, err error) {
	m.read(func(s *memState) { out, err = s.ListSeats(ctx, flightID) })
	return
}

func (m *MemoryStore) BookSeat(ctx context.Context, flightID uuid.UUID, seatNumber string) error {
	return m.run(func(s *memState) error { return s.BookSeat(ctx, flightID, seatNumber) })
}

func (m *MemoryStore) ReleaseSeat(ctx context.Context, flightID uuid.UUID, seatNumber string) error {
	return m.run(func(s *memState) error { return s.ReleaseSeat(ctx, flightID, seatNumber) })
}

func (m *MemoryStore) HoldSeats(ctx context.Context, flightID uuid.UUID, seatIDs []uuid.UUID) error {
	return m.run(func(s *memState) error { return s.HoldSeats(ctx, flightID, seatIDs) })
}

func (m *MemoryStore) CreateReservation(ctx context.Context, r *models.PassengerNameRecord) error {
	return m.run(func(s *memState) error { return s.CreateReservation(ctx, r) })
}

func (m *MemoryStore) GetReservation(ctx context.Context, id uuid.UUID) (r *models.PassengerNameRecord, err error) {
	m.read(func(s *memState) { r, err = s.GetReservation(ctx, id) })
	return
}

func (m *MemoryStore) GetReservationView(ctx context.Context, id uuid.UUID) (v *models.ReservationView, err error) {
	m.read(func(s *memState) { v, err = s.GetReservationView(ctx, id) })
	return
}

func (m *MemoryStore) TicketReservation(ctx context.Context, id uuid.UUID, ticketNumber string, ticketLink *string) error {
	return m.run(func(s *memState) error { return s.TicketReservation(ctx, id, ticketNumber, ticketLink) })
}

func (m *MemoryStore) CancelReservation(ctx context.Context, id uuid.UUID) error {
	return m.run(func(s *memState) error { return s.CancelReservation(ctx, id) })
}

func (m *MemoryStore) ListUnpaidReservations(ctx context.Context, cutoff time.Time) (out []models.ReservationView, err error) {
	m.read(func(s *memState) { out, err = s.ListUnpaidReservations(ctx, cutoff) })
	return
}

func (m *MemoryStore) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.run(func(s *memState) error { return s.MarkReminded(ctx, id, at) })
}

func (m *MemoryStore) NextSequence(ctx context.Context, scope string) (n int64, err error) {
	err = m.run(func(s *memState) error {
		n, err = s.NextSequence(ctx, scope)
		return err
	})
	return
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Store   = (*Repository)(nil)
	_ Queries = (*memState)(nil)
)
