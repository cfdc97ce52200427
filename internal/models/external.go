package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalFlight is a flight suggested by an AI provider. It is never persisted.
type ExternalFlight struct {
	AirlineName     string
	FlightNumber    string
	DepartureTime   time.Time
	ArrivalTime     *time.Time
	DepartureIATA   string
	DestinationIATA string
	Airfare         *decimal.Decimal
	BookingURL      *string
}

// ExternalFlightPayload is the wire form of ExternalFlight: ISO8601 times and
// the fare as a two-decimal string.
type ExternalFlightPayload struct {
	AirlineName     string  `json:"airline_name"`
	FlightNumber    string  `json:"flight_number"`
	DepartureTime   string  `json:"departure_time"`
	ArrivalTime     *string `json:"arrival_time"`
	DepartureIATA   string  `json:"departure_iata"`
	DestinationIATA string  `json:"destination_iata"`
	Airfare         *string `json:"airfare"`
	BookingURL      *string `json:"booking_url"`
}

func (f ExternalFlight) Payload() ExternalFlightPayload {
	p := ExternalFlightPayload{
		AirlineName:     f.AirlineName,
		FlightNumber:    f.FlightNumber,
		DepartureTime:   f.DepartureTime.Format(time.RFC3339),
		DepartureIATA:   f.DepartureIATA,
		DestinationIATA: f.DestinationIATA,
		BookingURL:      f.BookingURL,
	}
	if f.ArrivalTime != nil {
		s := f.ArrivalTime.Format(time.RFC3339)
		p.ArrivalTime = &s
	}
	if f.Airfare != nil {
		s := f.Airfare.StringFixed(2)
		p.Airfare = &s
	}
	return p
}

func ExternalPayloads(flights []ExternalFlight) []ExternalFlightPayload {
	out := make([]ExternalFlightPayload, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.Payload())
	}
	return out
}

// SearchRequest asks for flights between two airports on a calendar date.
type SearchRequest struct {
	OriginIATA      string `json:"origin_iata"`
	DestinationIATA string `json:"destination_iata"`
	Date            Date   `json:"date"`
	Live            bool   `json:"live"`
}

// Normalize upper-cases the IATA codes and validates them.
func (r *SearchRequest) Normalize() error {
	r.OriginIATA = strings.ToUpper(strings.TrimSpace(r.OriginIATA))
	r.DestinationIATA = strings.ToUpper(strings.TrimSpace(r.DestinationIATA))
	if err := ValidateIATA("origin_iata", r.OriginIATA); err != nil {
		return err
	}
	if err := ValidateIATA("destination_iata", r.DestinationIATA); err != nil {
		return err
	}
	if r.Date.IsZero() {
		return NewValidationError("date", "is required")
	}
	return nil
}

func (r SearchRequest) Key() string {
	return SearchKey(r.OriginIATA, r.DestinationIATA, r.Date.Time)
}

type SearchResult struct {
	InternalFlights []Flight                `json:"internal_flights"`
	ExternalFlights []ExternalFlightPayload `json:"external_flights"`
	SearchKey       string                  `json:"search_key,omitempty"`
}

// SearchKey builds the subscription key "ORIGIN-DESTINATION-YYYY-MM-DD".
func SearchKey(origin, destination string, date time.Time) string {
	return origin + "-" + destination + "-" + date.Format(DateLayout)
}

const DateLayout = "2006-01-02"

// Date is a calendar date encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return NewValidationError("date", "expected YYYY-MM-DD, got %q", s)
	}
	d.Time = t
	return nil
}
