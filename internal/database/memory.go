package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs tests and the
// DB_DRIVER=memory development mode. Transactions copy the state, apply fn
// to the copy and swap it in on success, under a single lock.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState(time.Now)}
}

// NewMemoryStoreWithClock is NewMemoryStore with a fixed time source for
// created_at and updated_at stamps.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{state: newMemState(now)}
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := m.state.clone()
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx
	return nil
}

// run applies a single operation atomically.
func (m *MemoryStore) run(fn func(s *memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := m.state.clone()
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx
	return nil
}

func (m *MemoryStore) read(fn func(s *memState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.state)
}

type linkKey struct {
	user    uuid.UUID
	airline uuid.UUID
}

type memState struct {
	now          func() time.Time
	airports     map[uuid.UUID]models.Airport
	airlines     map[uuid.UUID]models.Airline
	links        map[linkKey]models.AirlineAdminLink
	linkOrder    []linkKey
	users        map[uuid.UUID]models.User
	flights      map[uuid.UUID]models.Flight
	seats        map[uuid.UUID]models.FlightSeat
	reservations map[uuid.UUID]models.PassengerNameRecord
	counters     map[string]int64
}

func newMemState(now func() time.Time) *memState {
	return &memState{
		now:          now,
		airports:     map[uuid.UUID]models.Airport{},
		airlines:     map[uuid.UUID]models.Airline{},
		links:        map[linkKey]models.AirlineAdminLink{},
		users:        map[uuid.UUID]models.User{},
		flights:      map[uuid.UUID]models.Flight{},
		seats:        map[uuid.UUID]models.FlightSeat{},
		reservations: map[uuid.UUID]models.PassengerNameRecord{},
		counters:     map[string]int64{},
	}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *memState) clone() *memState {
	return &memState{
		now:          s.now,
		airports:     copyMap(s.airports),
		airlines:     copyMap(s.airlines),
		links:        copyMap(s.links),
		linkOrder:    append([]linkKey(nil), s.linkOrder...),
		users:        copyMap(s.users),
		flights:      copyMap(s.flights),
		seats:        copyMap(s.seats),
		reservations: copyMap(s.reservations),
		counters:     copyMap(s.counters),
	}
}

func (s *memState) stamp() time.Time {
	return s.now().UTC()
}

func conflict(what string) error {
	return fmt.Errorf("%w: %s", ErrConflict, what)
}

// --- Airports ---

func (s *memState) CreateAirport(_ context.Context, a *models.Airport) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := s.checkAirportUnique(a); err != nil {
		return err
	}
	a.CreatedAt, a.UpdatedAt = s.stamp(), s.stamp()
	s.airports[a.ID] = *a
	return nil
}

func (s *memState) checkAirportUnique(a *models.Airport) error {
	for _, other := range s.airports {
		if other.ID == a.ID {
			continue
		}
		if other.Name == a.Name {
			return conflict("airport name")
		}
		if other.IATACode == a.IATACode {
			return conflict("airport iata code")
		}
	}
	return nil
}

func (s *memState) GetAirport(_ context.Context, id uuid.UUID) (*models.Airport, error) {
	a, ok := s.airports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *memState) GetAirportByIATA(_ context.Context, code string) (*models.Airport, error) {
	for _, a := range s.airports {
		if a.IATACode == code {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memState) ListAirports(_ context.Context, nameLike string) ([]models.Airport, error) {
	needle := strings.ToLower(nameLike)
	out := []models.Airport{}
	for _, a := range s.airports {
		if needle == "" || strings.Contains(strings.ToLower(a.Name), needle) || strings.Contains(strings.ToLower(a.City), needle) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memState) UpdateAirport(_ context.Context, a *models.Airport) error {
	if _, ok := s.airports[a.ID]; !ok {
		return ErrNotFound
	}
	if err := s.checkAirportUnique(a); err != nil {
		return err
	}
	a.UpdatedAt = s.stamp()
	s.airports[a.ID] = *a
	return nil
}

// --- Airlines ---

func (s *memState) checkAirlineUnique(a *models.Airline) error {
	for _, other := range s.airlines {
		if other.ID == a.ID {
			continue
		}
		switch {
		case other.Name == a.Name:
			return conflict("airline name")
		case other.Email == a.Email:
			return conflict("airline email")
		case other.ContactPhone == a.ContactPhone:
			return conflict("airline contact phone")
		case other.ICAOCode == a.ICAOCode:
			return conflict("airline icao code")
		}
	}
	return nil
}

func (s *memState) setLink(userID, airlineID uuid.UUID, status models.AdminLinkStatus) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	k := linkKey{user: userID, airline: airlineID}
	if _, ok := s.links[k]; !ok {
		s.linkOrder = append(s.linkOrder, k)
	}
	s.links[k] = models.AirlineAdminLink{UserID: userID, AirlineID: airlineID, Status: status}
	return nil
}

func (s *memState) activeAdmins(airlineID uuid.UUID) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, k := range s.linkOrder {
		if k.airline == airlineID && s.links[k].Status == models.AdminLinkActive {
			ids = append(ids, k.user)
		}
	}
	return ids
}

func (s *memState) CreateAirline(_ context.Context, a *models.Airline) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := s.checkAirlineUnique(a); err != nil {
		return err
	}
	for _, userID := range a.AdminIDs {
		if err := s.setLink(userID, a.ID, models.AdminLinkActive); err != nil {
			return err
		}
	}
	a.CreatedAt, a.UpdatedAt = s.stamp(), s.stamp()
	stored := *a
	stored.AdminIDs = nil
	s.airlines[a.ID] = stored
	return nil
}

func (s *memState) GetAirline(_ context.Context, id uuid.UUID) (*models.Airline, error) {
	a, ok := s.airlines[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.AdminIDs = s.activeAdmins(id)
	return &a, nil
}

func (s *memState) ListAirlines(_ context.Context, nameLike string) ([]models.Airline, error) {
	needle := strings.ToLower(nameLike)
	out := []models.Airline{}
	for _, a := range s.airlines {
		if needle == "" || strings.Contains(strings.ToLower(a.Name), needle) {
			a.AdminIDs = s.activeAdmins(a.ID)
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memState) UpdateAirline(_ context.Context, a *models.Airline) error {
	if _, ok := s.airlines[a.ID]; !ok {
		return ErrNotFound
	}
	if err := s.checkAirlineUnique(a); err != nil {
		return err
	}
	keep := make(map[uuid.UUID]bool, len(a.AdminIDs))
	for _, id := range a.AdminIDs {
		keep[id] = true
	}
	for _, id := range s.activeAdmins(a.ID) {
		if !keep[id] {
			s.links[linkKey{user: id, airline: a.ID}] = models.AirlineAdminLink{UserID: id, AirlineID: a.ID, Status: models.AdminLinkInactive}
		}
	}
	for _, id := range a.AdminIDs {
		if err := s.setLink(id, a.ID, models.AdminLinkActive); err != nil {
			return err
		}
	}
	a.UpdatedAt = s.stamp()
	stored := *a
	stored.AdminIDs = nil
	s.airlines[a.ID] = stored
	return nil
}

func (s *memState) IsAirlineAdmin(_ context.Context, airlineID, userID uuid.UUID) (bool, error) {
	l, ok := s.links[linkKey{user: userID, airline: airlineID}]
	return ok && l.Status == models.AdminLinkActive, nil
}

// --- Users ---

func (s *memState) CreateUser(_ context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, other := range s.users {
		if other.Username == u.Username {
			return conflict("username")
		}
		if other.Email == u.Email {
			return conflict("email")
		}
	}
	u.CreatedAt, u.UpdatedAt = s.stamp(), s.stamp()
	s.users[u.ID] = *u
	return nil
}

func (s *memState) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memState) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// --- Flights ---

func (s *memState) checkFlightRefs(f *models.Flight) error {
	if _, ok := s.airlines[f.AirlineID]; !ok {
		return fmt.Errorf("%w: airline %s", ErrNotFound, f.AirlineID)
	}
	if _, ok := s.airports[f.DeparturePortID]; !ok {
		return fmt.Errorf("%w: airport %s", ErrNotFound, f.DeparturePortID)
	}
	if _, ok := s.airports[f.DestinationPortID]; !ok {
		return fmt.Errorf("%w: airport %s", ErrNotFound, f.DestinationPortID)
	}
	taken, _ := s.FlightNumberTaken(context.Background(), f.FlightNumber, f.DateTime, f.DeparturePortID, f.ID)
	if taken {
		return conflict("flight number, day and departure port")
	}
	return nil
}

func (s *memState) CreateFlight(_ context.Context, f *models.Flight) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = models.FlightStatusPending
	}
	if err := s.checkFlightRefs(f); err != nil {
		return err
	}
	f.DateTime = f.DateTime.UTC()
	f.CreatedAt, f.UpdatedAt = s.stamp(), s.stamp()
	s.flights[f.ID] = *f
	return nil
}

func (s *memState) GetFlight(_ context.Context, id uuid.UUID) (*models.Flight, error) {
	f, ok := s.flights[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func sortFlights(flights []models.Flight) {
	sort.Slice(flights, func(i, j int) bool { return flights[i].DateTime.Before(flights[j].DateTime) })
}

func (s *memState) ListFlights(_ context.Context) ([]models.Flight, error) {
	out := make([]models.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		out = append(out, f)
	}
	sortFlights(out)
	return out, nil
}

func (s *memState) UpdateFlight(_ context.Context, f *models.Flight) error {
	if _, ok := s.flights[f.ID]; !ok {
		return ErrNotFound
	}
	if err := s.checkFlightRefs(f); err != nil {
		return err
	}
	f.DateTime = f.DateTime.UTC()
	f.UpdatedAt = s.stamp()
	s.flights[f.ID] = *f
	return nil
}

func (s *memState) FlightNumberTaken(_ context.Context, flightNumber string, day time.Time, departurePortID, excludeID uuid.UUID) (bool, error) {
	start, end := dayBounds(day)
	for _, f := range s.flights {
		if f.ID == excludeID || f.FlightNumber != flightNumber || f.DeparturePortID != departurePortID {
			continue
		}
		if !f.DateTime.Before(start) && f.DateTime.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memState) FindFlights(_ context.Context, q models.FlightQuery) ([]models.Flight, error) {
	start, end := dayBounds(q.Date)
	out := []models.Flight{}
	for _, f := range s.flights {
		if f.DeparturePortID == q.DeparturePortID && f.DestinationPortID == q.DestinationPortID &&
			!f.DateTime.Before(start) && f.DateTime.Before(end) {
			out = append(out, f)
		}
	}
	sortFlights(out)
	return out, nil
}

// --- Seats ---

func (s *memState) findSeat(flightID uuid.UUID, seatNumber string) (models.FlightSeat, bool) {
	for _, seat := range s.seats {
		if seat.FlightID == flightID && seat.SeatNumber == seatNumber {
			return seat, true
		}
	}
	return models.FlightSeat{}, false
}

func (s *memState) CreateSeats(_ context.Context, seats []models.FlightSeat) error {
	seen := map[string]bool{}
	for i := range seats {
		seat := &seats[i]
		if _, ok := s.flights[seat.FlightID]; !ok {
			return fmt.Errorf("%w: flight %s", ErrNotFound, seat.FlightID)
		}
		key := seat.FlightID.String() + "/" + seat.SeatNumber
		if _, exists := s.findSeat(seat.FlightID, seat.SeatNumber); exists || seen[key] {
			return conflict("seat " + seat.SeatNumber)
		}
		seen[key] = true
		if seat.ID == uuid.Nil {
			seat.ID = uuid.New()
		}
		if seat.Status == "" {
			seat.Status = models.SeatStatusAvailable
		}
		seat.CreatedAt, seat.UpdatedAt = s.stamp(), s.stamp()
		s.seats[seat.ID] = *seat
	}
	return nil
}

func (s *memState) ListSeats(_ context.Context, flightID uuid.UUID) ([]models.FlightSeat, error) {
	out := []models.FlightSeat{}
	for _, seat := range s.seats {
		if seat.FlightID == flightID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (s *memState) BookSeat(_ context.Context, flightID uuid.UUID, seatNumber string) error {
	seat, ok := s.findSeat(flightID, seatNumber)
	if !ok {
		return ErrNotFound
	}
	if seat.Status != models.SeatStatusAvailable {
		return ErrSeatNotAvailable
	}
	seat.Status = models.SeatStatusBooked
	seat.UpdatedAt = s.stamp()
	s.seats[seat.ID] = seat
	return nil
}

func (s *memState) ReleaseSeat(_ context.Context, flightID uuid.UUID, seatNumber string) error {
	seat, ok := s.findSeat(flightID, seatNumber)
	if !ok {
		return nil
	}
	seat.Status = models.SeatStatusAvailable
	seat.UpdatedAt = s.stamp()
	s.seats[seat.ID] = seat
	return nil
}

func (s *memState) HoldSeats(_ context.Context, flightID uuid.UUID, seatIDs []uuid.UUID) error {
	for _, id := range seatIDs {
		seat, ok := s.seats[id]
		if !ok || seat.FlightID != flightID {
			return ErrNotFound
		}
	}
	for _, id := range seatIDs {
		seat := s.seats[id]
		seat.Status = models.SeatStatusBooked
		seat.UpdatedAt = s.stamp()
		s.seats[id] = seat
	}
	return nil
}

// --- Reservations ---

func (s *memState) CreateReservation(_ context.Context, r *models.PassengerNameRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = models.ReservationBooked
	}
	if _, ok := s.flights[r.FlightID]; !ok {
		return fmt.Errorf("%w: flight %s", ErrNotFound, r.FlightID)
	}
	for _, other := range s.reservations {
		if other.BookingReference == r.BookingReference {
			return conflict("booking reference")
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.stamp()
	}
	r.UpdatedAt = s.stamp()
	s.reservations[r.ID] = *r
	return nil
}

func (s *memState) GetReservation(_ context.Context, id uuid.UUID) (*models.PassengerNameRecord, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *memState) view(r models.PassengerNameRecord) models.ReservationView {
	f := s.flights[r.FlightID]
	a := s.airlines[f.AirlineID]
	return models.ReservationView{
		PassengerNameRecord: r,
		AirlineID:           a.ID,
		AirlineName:         a.Name,
		AirlinePhone:        a.ContactPhone,
		AirlineICAO:         a.ICAOCode,
		FlightNumber:        f.FlightNumber,
		DeparturePort:       s.airports[f.DeparturePortID].Name,
		DestinationPort:     s.airports[f.DestinationPortID].Name,
		DateTime:            f.DateTime,
	}
}

func (s *memState) GetReservationView(_ context.Context, id uuid.UUID) (*models.ReservationView, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := s.view(r)
	return &v, nil
}

func (s *memState) transition(id uuid.UUID, to models.ReservationStatus, mutate func(r *models.PassengerNameRecord)) error {
	r, ok := s.reservations[id]
	if !ok {
		return ErrNotFound
	}
	if r.Status != models.ReservationBooked {
		return fmt.Errorf("%w: reservation is %s", ErrConflict, r.Status)
	}
	r.Status = to
	if mutate != nil {
		mutate(&r)
	}
	r.UpdatedAt = s.stamp()
	s.reservations[id] = r
	return nil
}

func (s *memState) TicketReservation(_ context.Context, id uuid.UUID, ticketNumber string, ticketLink *string) error {
	for _, other := range s.reservations {
		if other.TicketNumber != nil && *other.TicketNumber == ticketNumber {
			return conflict("ticket number")
		}
	}
	return s.transition(id, models.ReservationTicketed, func(r *models.PassengerNameRecord) {
		tn := ticketNumber
		r.TicketNumber = &tn
		r.TicketLink = ticketLink
	})
}

func (s *memState) CancelReservation(_ context.Context, id uuid.UUID) error {
	return s.transition(id, models.ReservationCancelled, nil)
}

func (s *memState) ListUnpaidReservations(_ context.Context, cutoff time.Time) ([]models.ReservationView, error) {
	out := []models.ReservationView{}
	for _, r := range s.reservations {
		if r.Status == models.ReservationBooked && !r.CreatedAt.After(cutoff) {
			out = append(out, s.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memState) MarkReminded(_ context.Context, id uuid.UUID, at time.Time) error {
	r, ok := s.reservations[id]
	if !ok {
		return ErrNotFound
	}
	at = at.UTC()
	r.RemindedAt = &at
	s.reservations[id] = r
	return nil
}

func (s *memState) NextSequence(_ context.Context, scope string) (int64, error) {
	s.counters[scope]++
	return s.counters[scope], nil
}
