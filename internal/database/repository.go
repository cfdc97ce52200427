package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles all Postgres operations
type Repository struct {
	*queries
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{queries: &queries{db: pool}, pool: pool}
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates missing tables and indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// InTx runs fn in a transaction and commits when fn returns nil.
func (r *Repository) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapPgError(err))
	}
	return nil
}

type queries struct {
	db dbtx
}

type scanner interface {
	Scan(dest ...any) error
}

// mapPgError turns constraint violations into store sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func fareParam(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func fareValue(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func createdAtParam(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// --- Airport Operations ---

const airportCols = `id, airport_name, city, iata_code, time_zone, created_at, updated_at`

func scanAirport(row scanner) (*models.Airport, error) {
	var a models.Airport
	err := row.Scan(&a.ID, &a.Name, &a.City, &a.IATACode, &a.TimeZone, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *queries) CreateAirport(ctx context.Context, a *models.Airport) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO airports (id, airport_name, city, iata_code, time_zone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, a.ID, a.Name, a.City, a.IATACode, a.TimeZone).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create airport: %w", mapPgError(err))
	}
	return nil
}

func (q *queries) GetAirport(ctx context.Context, id uuid.UUID) (*models.Airport, error) {
	a, err := scanAirport(q.db.QueryRow(ctx, `SELECT `+airportCols+` FROM airports WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airport: %w", err)
	}
	return a, nil
}

func (q *queries) GetAirportByIATA(ctx context.Context, code string) (*models.Airport, error) {
	a, err := scanAirport(q.db.QueryRow(ctx, `SELECT `+airportCols+` FROM airports WHERE iata_code = $1`, code))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airport by IATA code: %w", err)
	}
	return a, nil
}

func (q *queries) ListAirports(ctx context.Context, nameLike string) ([]models.Airport, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+airportCols+`
		FROM airports
		WHERE $1 = '' OR airport_name ILIKE '%' || $1 || '%' OR city ILIKE '%' || $1 || '%'
		ORDER BY airport_name COLLATE "C"
	`, nameLike)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	airports := []models.Airport{}
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, *a)
	}
	return airports, rows.Err()
}

func (q *queries) UpdateAirport(ctx context.Context, a *models.Airport) error {
	err := q.db.QueryRow(ctx, `
		UPDATE airports
		SET airport_name = $2, city = $3, iata_code = $4, time_zone = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, a.ID, a.Name, a.City, a.IATACode, a.TimeZone).Scan(&a.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update airport: %w", mapPgError(err))
	}
	return nil
}

// --- Airline Operations ---

const airlineCols = `id, airline_name, email, contact_phone, icao_code, created_at, updated_at`

func scanAirline(row scanner) (*models.Airline, error) {
	var a models.Airline
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.ContactPhone, &a.ICAOCode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *queries) CreateAirline(ctx context.Context, a *models.Airline) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return pgx.BeginFunc(ctx, q.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO airlines (id, airline_name, email, contact_phone, icao_code)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, a.ID, a.Name, a.Email, a.ContactPhone, a.ICAOCode).Scan(&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create airline: %w", mapPgError(err))
		}
		for _, userID := range a.AdminIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO airline_admin_links (user_id, airline_id, status)
				VALUES ($1, $2, 'Active')
			`, userID, a.ID)
			if err != nil {
				return fmt.Errorf("failed to link airline admin: %w", mapPgError(err))
			}
		}
		return nil
	})
}

func (q *queries) activeAdmins(ctx context.Context, airlineID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, `
		SELECT user_id FROM airline_admin_links
		WHERE airline_id = $1 AND status = 'Active'
		ORDER BY created_at
	`, airlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query airline admins: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan airline admin: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *queries) GetAirline(ctx context.Context, id uuid.UUID) (*models.Airline, error) {
	a, err := scanAirline(q.db.QueryRow(ctx, `SELECT `+airlineCols+` FROM airlines WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airline: %w", err)
	}
	if a.AdminIDs, err = q.activeAdmins(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func (q *queries) ListAirlines(ctx context.Context, nameLike string) ([]models.Airline, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+airlineCols+`
		FROM airlines
		WHERE $1 = '' OR airline_name ILIKE '%' || $1 || '%'
		ORDER BY airline_name COLLATE "C"
	`, nameLike)
	if err != nil {
		return nil, fmt.Errorf("failed to query airlines: %w", err)
	}
	airlines := []models.Airline{}
	for rows.Next() {
		a, err := scanAirline(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan airline: %w", err)
		}
		airlines = append(airlines, *a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range airlines {
		if airlines[i].AdminIDs, err = q.activeAdmins(ctx, airlines[i].ID); err != nil {
			return nil, err
		}
	}
	return airlines, nil
}

func (q *queries) UpdateAirline(ctx context.Context, a *models.Airline) error {
	return pgx.BeginFunc(ctx, q.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE airlines
			SET airline_name = $2, email = $3, contact_phone = $4, icao_code = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, a.ID, a.Name, a.Email, a.ContactPhone, a.ICAOCode).Scan(&a.UpdatedAt)
		if err != nil {
			if notFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to update airline: %w", mapPgError(err))
		}

		_, err = tx.Exec(ctx, `
			UPDATE airline_admin_links
			SET status = 'Inactive', updated_at = NOW()
			WHERE airline_id = $1 AND status = 'Active' AND NOT (user_id = ANY($2::uuid[]))
		`, a.ID, uuidStrings(a.AdminIDs))
		if err != nil {
			return fmt.Errorf("failed to deactivate airline admins: %w", err)
		}

		for _, userID := range a.AdminIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO airline_admin_links (user_id, airline_id, status)
				VALUES ($1, $2, 'Active')
				ON CONFLICT (user_id, airline_id) DO UPDATE SET status = 'Active', updated_at = NOW()
			`, userID, a.ID)
			if err != nil {
				return fmt.Errorf("failed to link airline admin: %w", mapPgError(err))
			}
		}
		return nil
	})
}

func (q *queries) IsAirlineAdmin(ctx context.Context, airlineID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM airline_admin_links
			WHERE airline_id = $1 AND user_id = $2 AND status = 'Active'
		)
	`, airlineID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check airline admin: %w", err)
	}
	return ok, nil
}

// --- User Operations ---

const userCols = `id, first_name, last_name, username, email, phone_number, password_hash, role, status, avatar, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &u.Role, &u.Status, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *queries) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO users (id, first_name, last_name, username, email, phone_number, password_hash, role, status, avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.PhoneNumber, u.PasswordHash, u.Role, u.Status, u.Avatar,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapPgError(err))
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

// --- Flight Operations ---

const flightCols = `id, airline_id, flight_number, date_time, departure_port_id, destination_port_id,
	airfare::text, status, created_at, updated_at`

func scanFlight(row scanner) (*models.Flight, error) {
	var f models.Flight
	var fare *string
	err := row.Scan(&f.ID, &f.AirlineID, &f.FlightNumber, &f.DateTime, &f.DeparturePortID,
		&f.DestinationPortID, &fare, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if f.Airfare, err = fareValue(fare); err != nil {
		return nil, fmt.Errorf("failed to parse airfare: %w", err)
	}
	f.DateTime = f.DateTime.UTC()
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]models.Flight, error) {
	defer rows.Close()
	flights := []models.Flight{}
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (q *queries) CreateFlight(ctx context.Context, f *models.Flight) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = models.FlightStatusPending
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO flights (id, airline_id, flight_number, date_time, departure_port_id, destination_port_id, airfare, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
		RETURNING created_at, updated_at
	`, f.ID, f.AirlineID, f.FlightNumber, f.DateTime, f.DeparturePortID, f.DestinationPortID,
		fareParam(f.Airfare), f.Status,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", mapPgError(err))
	}
	return nil
}

func (q *queries) GetFlight(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	f, err := scanFlight(q.db.QueryRow(ctx, `SELECT `+flightCols+` FROM flights WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return f, nil
}

func (q *queries) ListFlights(ctx context.Context) ([]models.Flight, error) {
	rows, err := q.db.Query(ctx, `SELECT `+flightCols+` FROM flights ORDER BY date_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	return collectFlights(rows)
}

func (q *queries) UpdateFlight(ctx context.Context, f *models.Flight) error {
	err := q.db.QueryRow(ctx, `
		UPDATE flights
		SET flight_number = $2, date_time = $3, departure_port_id = $4, destination_port_id = $5,
		    airfare = $6::numeric, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, f.ID, f.FlightNumber, f.DateTime, f.DeparturePortID, f.DestinationPortID, fareParam(f.Airfare), f.Status,
	).Scan(&f.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update flight: %w", mapPgError(err))
	}
	return nil
}

func (q *queries) FlightNumberTaken(ctx context.Context, flightNumber string, day time.Time, departurePortID, excludeID uuid.UUID) (bool, error) {
	start, end := dayBounds(day)
	var taken bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM flights
			WHERE flight_number = $1 AND departure_port_id = $2
			  AND date_time >= $3 AND date_time < $4 AND id <> $5
		)
	`, flightNumber, departurePortID, start, end, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check flight number: %w", err)
	}
	return taken, nil
}

func (q *queries) FindFlights(ctx context.Context, fq models.FlightQuery) ([]models.Flight, error) {
	start, end := dayBounds(fq.Date)
	rows, err := q.db.Query(ctx, `
		SELECT `+flightCols+`
		FROM flights
		WHERE departure_port_id = $1 AND destination_port_id = $2
		  AND date_time >= $3 AND date_time < $4
		ORDER BY date_time
	`, fq.DeparturePortID, fq.DestinationPortID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	return collectFlights(rows)
}

// --- Seat Operations ---

func (q *queries) CreateSeats(ctx context.Context, seats []models.FlightSeat) error {
	return pgx.BeginFunc(ctx, q.db, func(tx pgx.Tx) error {
		for i := range seats {
			s := &seats[i]
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			if s.Status == "" {
				s.Status = models.SeatStatusAvailable
			}
			err := tx.QueryRow(ctx, `
				INSERT INTO flight_seats (id, flight_id, seat_number, status)
				VALUES ($1, $2, $3, $4)
				RETURNING created_at, updated_at
			`, s.ID, s.FlightID, s.SeatNumber, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create seat %s: %w", s.SeatNumber, mapPgError(err))
			}
		}
		return nil
	})
}

func (q *queries) ListSeats(ctx context.Context, flightID uuid.UUID) ([]models.FlightSeat, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, flight_id, seat_number, status, created_at, updated_at
		FROM flight_seats
		WHERE flight_id = $1
		ORDER BY seat_number COLLATE "C"
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	seats := []models.FlightSeat{}
	for rows.Next() {
		var s models.FlightSeat
		if err := rows.Scan(&s.ID, &s.FlightID, &s.SeatNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (q *queries) BookSeat(ctx context.Context, flightID uuid.UUID, seatNumber string) error {
	result, err := q.db.Exec(ctx, `
		UPDATE flight_seats
		SET status = 'Booked', updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = $2 AND status = 'Available'
	`, flightID, seatNumber)
	if err != nil {
		return fmt.Errorf("failed to book seat: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = q.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM flight_seats WHERE flight_id = $1 AND seat_number = $2)
	`, flightID, seatNumber).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check seat: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrSeatNotAvailable
}

func (q *queries) ReleaseSeat(ctx context.Context, flightID uuid.UUID, seatNumber string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE flight_seats
		SET status = 'Available', updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = $2
	`, flightID, seatNumber)
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	return nil
}

func (q *queries) HoldSeats(ctx context.Context, flightID uuid.UUID, seatIDs []uuid.UUID) error {
	unique := make(map[uuid.UUID]struct{}, len(seatIDs))
	ids := make([]uuid.UUID, 0, len(seatIDs))
	for _, id := range seatIDs {
		if _, ok := unique[id]; !ok {
			unique[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return pgx.BeginFunc(ctx, q.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE flight_seats
			SET status = 'Booked', updated_at = NOW()
			WHERE flight_id = $1 AND id = ANY($2::uuid[])
		`, flightID, uuidStrings(ids))
		if err != nil {
			return fmt.Errorf("failed to hold seats: %w", err)
		}
		if result.RowsAffected() != int64(len(ids)) {
			return ErrNotFound
		}
		return nil
	})
}

// --- Reservation Operations ---

const pnrCols = `p.id, p.flight_id, p.passenger_name, p.booking_reference, p.email, p.phone_number,
	p.seat_number, p.ticket_number, p.ticket_link, p.user_id, p.status, p.reminded_at, p.created_at, p.updated_at`

const viewQuery = `
	SELECT ` + pnrCols + `,
	       a.id, a.airline_name, a.contact_phone, a.icao_code,
	       f.flight_number, dp.airport_name, ap.airport_name, f.date_time
	FROM passenger_name_records p
	JOIN flights f ON f.id = p.flight_id
	JOIN airlines a ON a.id = f.airline_id
	JOIN airports dp ON dp.id = f.departure_port_id
	JOIN airports ap ON ap.id = f.destination_port_id
`

func pnrDest(r *models.PassengerNameRecord) []any {
	return []any{&r.ID, &r.FlightID, &r.PassengerName, &r.BookingReference, &r.Email, &r.PhoneNumber,
		&r.SeatNumber, &r.TicketNumber, &r.TicketLink, &r.UserID, &r.Status, &r.RemindedAt, &r.CreatedAt, &r.UpdatedAt}
}

func scanView(row scanner) (*models.ReservationView, error) {
	var v models.ReservationView
	dest := append(pnrDest(&v.PassengerNameRecord),
		&v.AirlineID, &v.AirlineName, &v.AirlinePhone, &v.AirlineICAO,
		&v.FlightNumber, &v.DeparturePort, &v.DestinationPort, &v.DateTime)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	v.DateTime = v.DateTime.UTC()
	return &v, nil
}

func (q *queries) CreateReservation(ctx context.Context, r *models.PassengerNameRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = models.ReservationBooked
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO passenger_name_records
			(id, flight_id, passenger_name, booking_reference, email, phone_number, seat_number,
			 ticket_number, ticket_link, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()))
		RETURNING created_at, updated_at
	`, r.ID, r.FlightID, r.PassengerName, r.BookingReference, r.Email, r.PhoneNumber, r.SeatNumber,
		r.TicketNumber, r.TicketLink, r.UserID, r.Status, createdAtParam(r.CreatedAt),
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", mapPgError(err))
	}
	return nil
}

func (q *queries) GetReservation(ctx context.Context, id uuid.UUID) (*models.PassengerNameRecord, error) {
	var r models.PassengerNameRecord
	err := q.db.QueryRow(ctx, `SELECT `+pnrCols+` FROM passenger_name_records p WHERE p.id = $1`, id).Scan(pnrDest(&r)...)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &r, nil
}

func (q *queries) GetReservationView(ctx context.Context, id uuid.UUID) (*models.ReservationView, error) {
	v, err := scanView(q.db.QueryRow(ctx, viewQuery+` WHERE p.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation view: %w", err)
	}
	return v, nil
}

func (q *queries) TicketReservation(ctx context.Context, id uuid.UUID, ticketNumber string, ticketLink *string) error {
	result, err := q.db.Exec(ctx, `
		UPDATE passenger_name_records
		SET status = 'Ticketed', ticket_number = $2, ticket_link = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'Booked'
	`, id, ticketNumber, ticketLink)
	if err != nil {
		return fmt.Errorf("failed to ticket reservation: %w", mapPgError(err))
	}
	if result.RowsAffected() == 0 {
		return q.transitionFailure(ctx, id)
	}
	return nil
}

func (q *queries) CancelReservation(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.Exec(ctx, `
		UPDATE passenger_name_records
		SET status = 'Cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'Booked'
	`, id)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return q.transitionFailure(ctx, id)
	}
	return nil
}

// transitionFailure explains why a Booked-only update matched nothing.
func (q *queries) transitionFailure(ctx context.Context, id uuid.UUID) error {
	var status models.ReservationStatus
	err := q.db.QueryRow(ctx, `SELECT status FROM passenger_name_records WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read reservation status: %w", err)
	}
	return fmt.Errorf("%w: reservation is %s", ErrConflict, status)
}

func (q *queries) ListUnpaidReservations(ctx context.Context, cutoff time.Time) ([]models.ReservationView, error) {
	rows, err := q.db.Query(ctx, viewQuery+`
		WHERE p.status = 'Booked' AND p.created_at <= $1
		ORDER BY p.created_at
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpaid reservations: %w", err)
	}
	defer rows.Close()

	views := []models.ReservationView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		views = append(views, *v)
	}
	return views, rows.Err()
}

func (q *queries) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := q.db.Exec(ctx, `
		UPDATE passenger_name_records SET reminded_at = $2, updated_at = NOW() WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark reservation reminded: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Sequences ---

func (q *queries) NextSequence(ctx context.Context, scope string) (int64, error) {
	var value int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO reference_counters (scope, value) VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET value = reference_counters.value + 1
		RETURNING value
	`, scope).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", scope, err)
	}
	return value, nil
}
