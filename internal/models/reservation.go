package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "Booked"
	ReservationTicketed  ReservationStatus = "Ticketed"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// PassengerNameRecord is a reservation of one seat on one flight.
type PassengerNameRecord struct {
	ID               uuid.UUID         `json:"id"`
	FlightID         uuid.UUID         `json:"flight_id"`
	PassengerName    string            `json:"passenger_name"`
	BookingReference string            `json:"booking_reference"`
	Email            string            `json:"email"`
	PhoneNumber      string            `json:"phone_number"`
	SeatNumber       string            `json:"seat_number"`
	TicketNumber     *string           `json:"ticket_number"`
	TicketLink       *string           `json:"ticket_link"`
	UserID           *uuid.UUID        `json:"user_id,omitempty"`
	Status           ReservationStatus `json:"status"`
	RemindedAt       *time.Time        `json:"-"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ReservationView is a reservation joined with its flight, airline and ports.
type ReservationView struct {
	PassengerNameRecord
	AirlineID       uuid.UUID `json:"-"`
	AirlineName     string    `json:"airline_name"`
	AirlinePhone    string    `json:"-"`
	AirlineICAO     string    `json:"-"`
	FlightNumber    string    `json:"flight_number"`
	DeparturePort   string    `json:"departure_port"`
	DestinationPort string    `json:"destination_port"`
	DateTime        time.Time `json:"date_time"`
}

// PaymentInfo is card data supplied by the passenger.
type PaymentInfo struct {
	Name       string `json:"name"`
	CardNumber string `json:"card_number"`
	CVV        int    `json:"cvv"`
	ExpMonth   string `json:"exp_month"`
	ExpYear    string `json:"exp_year"`
}

// MaskedCard returns the card number with all but the last four digits hidden.
func (p PaymentInfo) MaskedCard() string {
	n := strings.ReplaceAll(p.CardNumber, " ", "")
	if len(n) <= 4 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

type CreateReservationRequest struct {
	FlightID      uuid.UUID    `json:"flight_id"`
	PassengerName string       `json:"passenger_name"`
	Email         string       `json:"email"`
	PhoneNumber   string       `json:"phone_number"`
	SeatNumber    string       `json:"seat_number"`
	PaymentInfo   *PaymentInfo `json:"payment_info,omitempty"`
}

// Validate checks the fields that do not need the store.
func (r CreateReservationRequest) Validate() error {
	if r.FlightID == uuid.Nil {
		return NewValidationError("flight_id", "is required")
	}
	if err := required("passenger_name", r.PassengerName); err != nil {
		return err
	}
	if err := ValidateEmail("email", r.Email); err != nil {
		return err
	}
	if err := required("phone_number", r.PhoneNumber); err != nil {
		return err
	}
	return ValidateSeatNumber(r.SeatNumber)
}
