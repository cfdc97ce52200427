package ai

import (
	"context"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/shopspring/decimal"
)

// Mock returns two fixed flights on the requested date. Used in development
// and tests.
type Mock struct{}

func (Mock) SearchExternalFlights(_ context.Context, origin, destination string, date time.Time) []models.ExternalFlight {
	y, m, d := date.Date()
	base := time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
	fare := decimal.RequireFromString("250.00")
	firstArr := base.Add(2 * time.Hour)
	secondArr := base.Add(6 * time.Hour)
	firstURL := "https://example.com/book/SA123"
	secondURL := "https://example.com/book/DA456"

	return []models.ExternalFlight{
		{
			AirlineName:     "Sample Air",
			FlightNumber:    "SA123",
			DepartureTime:   base,
			ArrivalTime:     &firstArr,
			DepartureIATA:   origin,
			DestinationIATA: destination,
			Airfare:         &fare,
			BookingURL:      &firstURL,
		},
		{
			AirlineName:     "Demo Airways",
			FlightNumber:    "DA456",
			DepartureTime:   base.Add(4 * time.Hour),
			ArrivalTime:     &secondArr,
			DepartureIATA:   origin,
			DestinationIATA: destination,
			BookingURL:      &secondURL,
		},
	}
}
