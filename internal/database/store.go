package database

import (
	"context"
	"errors"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrSeatNotAvailable = errors.New("seat not available")
)

// Queries is the data access surface shared by the store and its transactions.
type Queries interface {
	// Airports
	CreateAirport(ctx context.Context, a *models.Airport) error
	GetAirport(ctx context.Context, id uuid.UUID) (*models.Airport, error)
	GetAirportByIATA(ctx context.Context, code string) (*models.Airport, error)
	ListAirports(ctx context.Context, nameLike string) ([]models.Airport, error)
	UpdateAirport(ctx context.Context, a *models.Airport) error

	// Airlines
	CreateAirline(ctx context.Context, a *models.Airline) error
	GetAirline(ctx context.Context, id uuid.UUID) (*models.Airline, error)
	ListAirlines(ctx context.Context, nameLike string) ([]models.Airline, error)
	// UpdateAirline saves the airline and makes a.AdminIDs the exact set of
	// active admins. Dropped admins are marked Inactive.
	UpdateAirline(ctx context.Context, a *models.Airline) error
	IsAirlineAdmin(ctx context.Context, airlineID, userID uuid.UUID) (bool, error)

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// Flights
	CreateFlight(ctx context.Context, f *models.Flight) error
	GetFlight(ctx context.Context, id uuid.UUID) (*models.Flight, error)
	ListFlights(ctx context.Context) ([]models.Flight, error)
	UpdateFlight(ctx context.Context, f *models.Flight) error
	// FlightNumberTaken reports whether another flight (not excludeID) uses the
	// number on the same UTC day from the same departure port.
	FlightNumberTaken(ctx context.Context, flightNumber string, day time.Time, departurePortID, excludeID uuid.UUID) (bool, error)
	FindFlights(ctx context.Context, q models.FlightQuery) ([]models.Flight, error)

	// Seats
	CreateSeats(ctx context.Context, seats []models.FlightSeat) error
	ListSeats(ctx context.Context, flightID uuid.UUID) ([]models.FlightSeat, error)
	// BookSeat moves a seat from Available to Booked. It returns ErrNotFound
	// when the seat does not exist and ErrSeatNotAvailable when it is taken.
	BookSeat(ctx context.Context, flightID uuid.UUID, seatNumber string) error
	ReleaseSeat(ctx context.Context, flightID uuid.UUID, seatNumber string) error
	// HoldSeats marks the given seats of a flight Booked. Any unknown id fails
	// the call with ErrNotFound.
	HoldSeats(ctx context.Context, flightID uuid.UUID, seatIDs []uuid.UUID) error

	// Reservations
	CreateReservation(ctx context.Context, r *models.PassengerNameRecord) error
	GetReservation(ctx context.Context, id uuid.UUID) (*models.PassengerNameRecord, error)
	GetReservationView(ctx context.Context, id uuid.UUID) (*models.ReservationView, error)
	// TicketReservation moves a Booked reservation to Ticketed. It returns
	// ErrConflict when the reservation is no longer Booked.
	TicketReservation(ctx context.Context, id uuid.UUID, ticketNumber string, ticketLink *string) error
	// CancelReservation moves a Booked reservation to Cancelled. It returns
	// ErrConflict when the reservation is no longer Booked.
	CancelReservation(ctx context.Context, id uuid.UUID) error
	// ListUnpaidReservations returns Booked reservations created at or before cutoff.
	ListUnpaidReservations(ctx context.Context, cutoff time.Time) ([]models.ReservationView, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error

	// NextSequence increments and returns the counter for scope.
	NextSequence(ctx context.Context, scope string) (int64, error)
}

// Store is a Queries that can also run a function in a transaction.
// Returning an error from fn rolls back every write made through q.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}

// dayBounds returns the UTC calendar day containing t as [start, end).
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := now.With(t.UTC()).BeginningOfDay()
	return start, start.AddDate(0, 0, 1)
}
