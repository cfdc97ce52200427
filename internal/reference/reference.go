// Package reference allocates booking references and ticket numbers.
//
// Booking references look like PNR-ABC-2025-0000001 and are sequenced per
// flight and year. Ticket numbers look like TKT-ABC-ABC123-0001 and are
// sequenced per flight. Sequences come from an atomic per-scope counter, so
// two concurrent bookings never draw the same number.
package reference

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Sequencer hands out the next value of a named counter, starting at 1.
// Implementations must be atomic with respect to concurrent callers.
type Sequencer interface {
	NextSequence(ctx context.Context, scope string) (int64, error)
}

func bookingScope(flightID uuid.UUID, year int) string {
	return fmt.Sprintf("pnr:%s:%d", flightID, year)
}

func ticketScope(flightID uuid.UUID) string {
	return "tkt:" + flightID.String()
}

// BookingReference allocates the next booking reference for a flight.
func BookingReference(ctx context.Context, seq Sequencer, flightID uuid.UUID, icao string, year int) (string, error) {
	n, err := seq.NextSequence(ctx, bookingScope(flightID, year))
	if err != nil {
		return "", fmt.Errorf("failed to allocate booking reference: %w", err)
	}
	return fmt.Sprintf("PNR-%s-%d-%07d", icao, year, n), nil
}

// TicketNumber allocates the next ticket number for a flight.
func TicketNumber(ctx context.Context, seq Sequencer, flightID uuid.UUID, icao, flightNumber string) (string, error) {
	n, err := seq.NextSequence(ctx, ticketScope(flightID))
	if err != nil {
		return "", fmt.Errorf("failed to allocate ticket number: %w", err)
	}
	return fmt.Sprintf("TKT-%s-%s-%04d", icao, flightNumber, n), nil
}
