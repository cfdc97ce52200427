// Package service holds the FlightsHub use cases: catalog management,
// reservations and their lifecycle, flight search, and user accounts.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/ai"
	"github.com/Victoradukwu/FlightsHub/internal/auth"
	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
	"github.com/Victoradukwu/FlightsHub/internal/payment"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("not permitted")
	ErrReservationTicketed = errors.New("reservation is already ticketed")
	ErrReservationClosed   = errors.New("reservation is cancelled")
)

// TicketScheduler runs ProcessPayment for a reservation outside the request.
type TicketScheduler interface {
	ScheduleTicketing(ctx context.Context, reservationID uuid.UUID, info models.PaymentInfo) error
}

// Broadcaster pushes changes to websocket subscribers.
type Broadcaster interface {
	BroadcastSeats(flightID uuid.UUID, seats []models.FlightSeat) int
	BroadcastExternalSearch(key string, flights []models.ExternalFlightPayload) int
}

// SearchCache stores external search results by search key.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]models.ExternalFlightPayload, bool, error)
	Set(ctx context.Context, key string, flights []models.ExternalFlightPayload) error
}

// Deps are the collaborators of a Service. Store, Provider and Log are
// required; the rest fall back to inert implementations.
type Deps struct {
	Store       database.Store
	Provider    ai.Provider
	Cache       SearchCache
	Broadcaster Broadcaster
	Notifier    notify.Notifier
	Payments    payment.Processor
	Scheduler   TicketScheduler
	Tokens      *auth.Tokens
	Log         logrus.FieldLogger

	BcryptCost int
	// UnpaidAfter is how long a Booked reservation may wait for payment.
	UnpaidAfter time.Duration
	// LiveSearchTimeout bounds the background lookup of a live search.
	LiveSearchTimeout time.Duration
	Now               func() time.Time
}

type Service struct {
	store       database.Store
	provider    ai.Provider
	cache       SearchCache
	hub         Broadcaster
	notifier    notify.Notifier
	payments    payment.Processor
	scheduler   TicketScheduler
	tokens      *auth.Tokens
	log         logrus.FieldLogger
	bcryptCost  int
	unpaidAfter time.Duration
	liveTimeout time.Duration
	now         func() time.Time

	bg sync.WaitGroup
}

func New(d Deps) *Service {
	s := &Service{
		store:       d.Store,
		provider:    d.Provider,
		cache:       d.Cache,
		hub:         d.Broadcaster,
		notifier:    d.Notifier,
		payments:    d.Payments,
		scheduler:   d.Scheduler,
		tokens:      d.Tokens,
		log:         d.Log,
		bcryptCost:  d.BcryptCost,
		unpaidAfter: d.UnpaidAfter,
		liveTimeout: d.LiveSearchTimeout,
		now:         d.Now,
	}
	if s.hub == nil {
		s.hub = nopBroadcaster{}
	}
	if s.notifier == nil {
		s.notifier = notify.LogNotifier{Log: d.Log}
	}
	if s.payments == nil {
		s.payments = payment.Stub{Log: d.Log}
	}
	if s.unpaidAfter <= 0 {
		s.unpaidAfter = 30 * time.Minute
	}
	if s.liveTimeout <= 0 {
		s.liveTimeout = 30 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SetScheduler wires the ticketing scheduler after construction, for
// schedulers that call back into the service.
func (s *Service) SetScheduler(ts TicketScheduler) {
	s.scheduler = ts
}

// Wait blocks until background work started by the service has finished.
func (s *Service) Wait() {
	s.bg.Wait()
}

func (s *Service) broadcastSeats(ctx context.Context, flightID uuid.UUID) {
	seats, err := s.store.ListSeats(ctx, flightID)
	if err != nil {
		s.log.WithError(err).WithField("flight_id", flightID).Warn("failed to load seats for broadcast")
		return
	}
	s.hub.BroadcastSeats(flightID, seats)
}

func requireUser(u *models.User) error {
	if u == nil {
		return ErrUnauthenticated
	}
	return nil
}

func requireGlobalAdmin(u *models.User) error {
	if err := requireUser(u); err != nil {
		return err
	}
	if !u.IsGlobalAdmin() {
		return fmt.Errorf("%w: global admin only", ErrForbidden)
	}
	return nil
}

// requireAirlineAdmin passes Global Admins and active admins of the airline.
func requireAirlineAdmin(ctx context.Context, q database.Queries, u *models.User, airlineID uuid.UUID) error {
	if err := requireUser(u); err != nil {
		return err
	}
	if u.IsGlobalAdmin() {
		return nil
	}
	ok, err := q.IsAirlineAdmin(ctx, airlineID, u.ID)
	if err != nil {
		return fmt.Errorf("failed to check airline admin: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: not an admin of this airline", ErrForbidden)
	}
	return nil
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastSeats(uuid.UUID, []models.FlightSeat) int { return 0 }

func (nopBroadcaster) BroadcastExternalSearch(string, []models.ExternalFlightPayload) int {
	return 0
}

// AsyncScheduler runs ticketing in a goroutine of the current process with
// a context detached from the request.
type AsyncScheduler struct {
	svc     *Service
	timeout time.Duration
}

func NewAsyncScheduler(svc *Service, timeout time.Duration) *AsyncScheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &AsyncScheduler{svc: svc, timeout: timeout}
}

func (a *AsyncScheduler) ScheduleTicketing(_ context.Context, reservationID uuid.UUID, info models.PaymentInfo) error {
	a.svc.bg.Add(1)
	go func() {
		defer a.svc.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.svc.ProcessPayment(ctx, reservationID, info); err != nil {
			a.svc.log.WithError(err).WithField("reservation_id", reservationID).Error("ticketing failed")
		}
	}()
	return nil
}
