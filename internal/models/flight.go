package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Airport is a departure or destination port.
type Airport struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"airport_name"`
	City      string    `json:"city"`
	IATACode  string    `json:"iata_code"`
	TimeZone  string    `json:"time_zone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName renders "<name>-<IATA>".
func (a Airport) FullName() string {
	return a.Name + "-" + a.IATACode
}

// AirportUpdate carries the fields of a partial airport update. Nil means unchanged.
type AirportUpdate struct {
	Name     *string `json:"airport_name,omitempty"`
	City     *string `json:"city,omitempty"`
	IATACode *string `json:"iata_code,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

// Apply copies the set fields onto a.
func (u AirportUpdate) Apply(a *Airport) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.City != nil {
		a.City = *u.City
	}
	if u.IATACode != nil {
		a.IATACode = *u.IATACode
	}
	if u.TimeZone != nil {
		a.TimeZone = *u.TimeZone
	}
}

type AdminLinkStatus string

const (
	AdminLinkActive   AdminLinkStatus = "Active"
	AdminLinkInactive AdminLinkStatus = "Inactive"
)

// AirlineAdminLink ties a user to an airline they administer.
type AirlineAdminLink struct {
	UserID    uuid.UUID       `json:"user_id"`
	AirlineID uuid.UUID       `json:"airline_id"`
	Status    AdminLinkStatus `json:"status"`
}

type Airline struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"airline_name"`
	Email        string      `json:"email"`
	ContactPhone string      `json:"contact_phone"`
	ICAOCode     string      `json:"icao_code"`
	AdminIDs     []uuid.UUID `json:"admins"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type CreateAirlineRequest struct {
	Name         string      `json:"airline_name"`
	Email        string      `json:"email"`
	ContactPhone string      `json:"contact_phone"`
	ICAOCode     string      `json:"icao_code"`
	Admins       []uuid.UUID `json:"admins"`
}

// AirlineUpdate carries the fields of a partial airline update. A non-nil
// Admins replaces the set of active admins.
type AirlineUpdate struct {
	Name         *string      `json:"airline_name,omitempty"`
	Email        *string      `json:"email,omitempty"`
	ContactPhone *string      `json:"contact_phone,omitempty"`
	ICAOCode     *string      `json:"icao_code,omitempty"`
	Admins       *[]uuid.UUID `json:"admins,omitempty"`
}

func (u AirlineUpdate) Apply(a *Airline) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.ContactPhone != nil {
		a.ContactPhone = *u.ContactPhone
	}
	if u.ICAOCode != nil {
		a.ICAOCode = *u.ICAOCode
	}
	if u.Admins != nil {
		a.AdminIDs = *u.Admins
	}
}

type FlightStatus string

const (
	FlightStatusPending   FlightStatus = "Pending"
	FlightStatusCancelled FlightStatus = "Cancelled"
	FlightStatusConducted FlightStatus = "Conducted"
)

// Terminal reports whether no further status change is allowed.
func (s FlightStatus) Terminal() bool {
	return s == FlightStatusCancelled || s == FlightStatusConducted
}

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusPending, FlightStatusCancelled, FlightStatusConducted:
		return true
	}
	return false
}

// Flight is a scheduled flight. FlightNumber is the airline ICAO code followed
// by the numeric part, e.g. "ABC123".
type Flight struct {
	ID                uuid.UUID        `json:"id"`
	AirlineID         uuid.UUID        `json:"airline_id"`
	FlightNumber      string           `json:"flight_number"`
	DateTime          time.Time        `json:"date_time"`
	DeparturePortID   uuid.UUID        `json:"departure_port_id"`
	DestinationPortID uuid.UUID        `json:"destination_port_id"`
	Airfare           *decimal.Decimal `json:"airfare"`
	Status            FlightStatus     `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type CreateFlightRequest struct {
	AirlineID         uuid.UUID        `json:"airline_id"`
	FlightNumber      int              `json:"flight_number"`
	DateTime          time.Time        `json:"date_time"`
	DeparturePortID   uuid.UUID        `json:"departure_port_id"`
	DestinationPortID uuid.UUID        `json:"destination_port_id"`
	Airfare           *decimal.Decimal `json:"airfare"`
}

// FlightUpdate carries the fields of a partial flight update. Nil means unchanged.
type FlightUpdate struct {
	FlightNumber      *int             `json:"flight_number,omitempty"`
	DateTime          *time.Time       `json:"date_time,omitempty"`
	DeparturePortID   *uuid.UUID       `json:"departure_port_id,omitempty"`
	DestinationPortID *uuid.UUID       `json:"destination_port_id,omitempty"`
	Airfare           *decimal.Decimal `json:"airfare,omitempty"`
	Status            *FlightStatus    `json:"status,omitempty"`
}

// Apply copies the set fields onto f. The flight number is rebuilt from
// icao and the numeric part.
func (u FlightUpdate) Apply(f *Flight, icao string) {
	if u.FlightNumber != nil {
		f.FlightNumber = FormatFlightNumber(icao, *u.FlightNumber)
	}
	if u.DateTime != nil {
		f.DateTime = u.DateTime.UTC()
	}
	if u.DeparturePortID != nil {
		f.DeparturePortID = *u.DeparturePortID
	}
	if u.DestinationPortID != nil {
		f.DestinationPortID = *u.DestinationPortID
	}
	if u.Airfare != nil {
		fare := u.Airfare.Round(2)
		f.Airfare = &fare
	}
	if u.Status != nil {
		f.Status = *u.Status
	}
}

// FlightQuery selects flights departing from one port to another on a calendar day (UTC).
type FlightQuery struct {
	DeparturePortID   uuid.UUID
	DestinationPortID uuid.UUID
	Date              time.Time
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "Available"
	SeatStatusBooked    SeatStatus = "Booked"
)

// FlightSeat is one seat of one flight.
type FlightSeat struct {
	ID         uuid.UUID  `json:"id"`
	FlightID   uuid.UUID  `json:"flight_id"`
	SeatNumber string     `json:"seat_number"`
	Status     SeatStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SeatView is the seat shape pushed to flight subscribers.
type SeatView struct {
	ID         uuid.UUID  `json:"id"`
	SeatNumber string     `json:"seat_number"`
	Status     SeatStatus `json:"status"`
}

func NewSeatViews(seats []FlightSeat) []SeatView {
	views := make([]SeatView, 0, len(seats))
	for _, s := range seats {
		views = append(views, SeatView{ID: s.ID, SeatNumber: s.SeatNumber, Status: s.Status})
	}
	return views
}

type CreateSeatsRequest struct {
	SeatNumbers []string `json:"seat_numbers"`
}

type ReserveSeatsRequest struct {
	SeatIDs []uuid.UUID `json:"seat_ids"`
}
