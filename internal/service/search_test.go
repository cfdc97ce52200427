package service

import (
	"context"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
)

func (s *ServiceTestSuite) searchRequest(origin, destination string, day time.Time) models.SearchRequest {
	return models.SearchRequest{OriginIATA: origin, DestinationIATA: destination, Date: models.NewDate(day)}
}

func (s *ServiceTestSuite) TestSearch() {
	res, err := s.svc.Search(s.ctx, s.searchRequest("los", "abv", s.flight.DateTime))
	s.Require().NoError(err)

	s.Require().Len(res.InternalFlights, 1)
	s.Equal(s.flight.ID, res.InternalFlights[0].ID)
	s.Require().Len(res.ExternalFlights, 2)
	s.Equal("Sample Air", res.ExternalFlights[0].AirlineName)
	s.Equal("LOS", res.ExternalFlights[0].DepartureIATA)
	s.Empty(res.SearchKey)

	cached, ok := s.cache.items["LOS-ABV-2030-05-02"]
	s.Require().True(ok)
	s.Len(cached, 2)
}

func (s *ServiceTestSuite) TestSearch_OtherDayAndDirection() {
	res, err := s.svc.Search(s.ctx, s.searchRequest("LOS", "ABV", s.flight.DateTime.AddDate(0, 0, 1)))
	s.Require().NoError(err)
	s.Empty(res.InternalFlights)

	res, err = s.svc.Search(s.ctx, s.searchRequest("ABV", "LOS", s.flight.DateTime))
	s.Require().NoError(err)
	s.Empty(res.InternalFlights)
}

func (s *ServiceTestSuite) TestSearch_UnknownAirport() {
	res, err := s.svc.Search(s.ctx, s.searchRequest("LOS", "JFK", s.flight.DateTime))
	s.Require().NoError(err)
	s.NotNil(res.InternalFlights)
	s.Empty(res.InternalFlights)
	s.Len(res.ExternalFlights, 2)
}

func (s *ServiceTestSuite) TestSearch_Invalid() {
	_, err := s.svc.Search(s.ctx, s.searchRequest("LAGOS", "ABV", s.flight.DateTime))
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.svc.Search(s.ctx, models.SearchRequest{OriginIATA: "LOS", DestinationIATA: "ABV"})
	s.ErrorAs(err, &verr)
}

func (s *ServiceTestSuite) TestSearch_CacheHit() {
	fare := "1.00"
	s.cache.items["LOS-ABV-2030-05-02"] = []models.ExternalFlightPayload{{
		AirlineName:     "Cached Air",
		FlightNumber:    "CA1",
		DepartureTime:   "2030-05-02T06:00:00Z",
		DepartureIATA:   "LOS",
		DestinationIATA: "ABV",
		Airfare:         &fare,
	}}

	res, err := s.svc.Search(s.ctx, s.searchRequest("LOS", "ABV", s.flight.DateTime))
	s.Require().NoError(err)
	s.Require().Len(res.ExternalFlights, 1)
	s.Equal("Cached Air", res.ExternalFlights[0].AirlineName)
}

type emptyProvider struct{}

func (emptyProvider) SearchExternalFlights(ctx context.Context, origin, destination string, date time.Time) []models.ExternalFlight {
	return []models.ExternalFlight{}
}

func (s *ServiceTestSuite) TestSearch_EmptyResultsNotCached() {
	s.svc.provider = emptyProvider{}

	res, err := s.svc.Search(s.ctx, s.searchRequest("LOS", "ABV", s.flight.DateTime))
	s.Require().NoError(err)
	s.NotNil(res.ExternalFlights)
	s.Empty(res.ExternalFlights)
	s.Empty(s.cache.items)
}

func (s *ServiceTestSuite) TestSearchLive() {
	res, err := s.svc.SearchLive(s.ctx, s.searchRequest("LOS", "ABV", s.flight.DateTime))
	s.Require().NoError(err)
	s.Equal("LOS-ABV-2030-05-02", res.SearchKey)
	s.Len(res.InternalFlights, 1)
	s.NotNil(res.ExternalFlights)
	s.Empty(res.ExternalFlights)

	s.svc.Wait()
	pushed, ok := s.hub.search("LOS-ABV-2030-05-02")
	s.Require().True(ok)
	s.Len(pushed, 2)
}
