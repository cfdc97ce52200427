// Package payment captures reservation payments.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrDeclined means the processor refused the card. Retrying will not help.
var ErrDeclined = errors.New("payment declined")

// Processor charges a card for a reservation.
type Processor interface {
	Capture(ctx context.Context, reservationID uuid.UUID, info models.PaymentInfo) error
}

// Stub accepts any well-formed, unexpired card. It stands in until a real
// gateway is integrated.
type Stub struct {
	Log logrus.FieldLogger
	Now func() time.Time
}

func (s Stub) Capture(_ context.Context, reservationID uuid.UUID, info models.PaymentInfo) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if err := checkCard(info, now()); err != nil {
		return fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"reservation_id": reservationID,
			"card":           info.MaskedCard(),
		}).Info("payment captured")
	}
	return nil
}

func checkCard(info models.PaymentInfo, now time.Time) error {
	digits := strings.ReplaceAll(info.CardNumber, " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		return errors.New("invalid card number length")
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return errors.New("card number must be numeric")
		}
	}
	if info.CVV < 0 || info.CVV > 9999 {
		return errors.New("invalid cvv")
	}

	month, err := strconv.Atoi(info.ExpMonth)
	if err != nil || month < 1 || month > 12 {
		return errors.New("invalid expiry month")
	}
	year, err := strconv.Atoi(info.ExpYear)
	if err != nil {
		return errors.New("invalid expiry year")
	}
	if year < 100 {
		year += 2000
	}
	// valid through the last day of the expiry month
	expires := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(expires) {
		return errors.New("card expired")
	}
	return nil
}
