package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/sirupsen/logrus"
)

// Search returns internal flights for the route and date together with
// external suggestions. A failing external lookup only empties the
// external list.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	internal, err := s.internalFlights(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.SearchResult{
		InternalFlights: internal,
		ExternalFlights: s.externalFlights(ctx, req),
	}, nil
}

// SearchLive returns internal flights at once and pushes external results to
// subscribers of the returned search key when they arrive.
func (s *Service) SearchLive(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	internal, err := s.internalFlights(ctx, req)
	if err != nil {
		return nil, err
	}
	key := req.Key()

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), s.liveTimeout)
		defer cancel()
		flights := s.externalFlights(bgCtx, req)
		n := s.hub.BroadcastExternalSearch(key, flights)
		s.log.WithFields(logrus.Fields{"search_key": key, "flights": len(flights), "subscribers": n}).Debug("live search delivered")
	}()

	return &models.SearchResult{
		InternalFlights: internal,
		ExternalFlights: []models.ExternalFlightPayload{},
		SearchKey:       key,
	}, nil
}

func (s *Service) internalFlights(ctx context.Context, req models.SearchRequest) ([]models.Flight, error) {
	origin, err := s.store.GetAirportByIATA(ctx, req.OriginIATA)
	if errors.Is(err, database.ErrNotFound) {
		return []models.Flight{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve origin: %w", err)
	}
	dest, err := s.store.GetAirportByIATA(ctx, req.DestinationIATA)
	if errors.Is(err, database.ErrNotFound) {
		return []models.Flight{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	flights, err := s.store.FindFlights(ctx, models.FlightQuery{
		DeparturePortID:   origin.ID,
		DestinationPortID: dest.ID,
		Date:              req.Date.Time,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find flights: %w", err)
	}
	return flights, nil
}

func (s *Service) externalFlights(ctx context.Context, req models.SearchRequest) []models.ExternalFlightPayload {
	key := req.Key()
	log := s.log.WithField("search_key", key)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warn("search cache read failed")
		}
		if ok {
			return cached
		}
	}

	flights := models.ExternalPayloads(
		s.provider.SearchExternalFlights(ctx, req.OriginIATA, req.DestinationIATA, req.Date.Time),
	)

	if s.cache != nil && len(flights) > 0 {
		if err := s.cache.Set(ctx, key, flights); err != nil {
			log.WithError(err).Warn("search cache write failed")
		}
	}
	return flights
}
