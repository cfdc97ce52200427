package handlers

import (
	"net/http"

	"github.com/Victoradukwu/FlightsHub/internal/auth"
	"github.com/Victoradukwu/FlightsHub/internal/models"
)

// CreateAirport handles POST /api/v1/airports
func (h *Handler) CreateAirport(w http.ResponseWriter, r *http.Request) {
	var req models.Airport
	if !decode(w, r, &req) {
		return
	}
	a, err := h.svc.CreateAirport(r.Context(), auth.UserFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// ListAirports handles GET /api/v1/airports?q=
func (h *Handler) ListAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.svc.ListAirports(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, airports)
}

func (h *Handler) GetAirport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.GetAirport(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAirport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var upd models.AirportUpdate
	if !decode(w, r, &upd) {
		return
	}
	a, err := h.svc.UpdateAirport(r.Context(), auth.UserFromContext(r.Context()), id, upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// CreateAirline handles POST /api/v1/airlines
func (h *Handler) CreateAirline(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAirlineRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.svc.CreateAirline(r.Context(), auth.UserFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (h *Handler) ListAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := h.svc.ListAirlines(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, airlines)
}

func (h *Handler) GetAirline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.GetAirline(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAirline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var upd models.AirlineUpdate
	if !decode(w, r, &upd) {
		return
	}
	a, err := h.svc.UpdateAirline(r.Context(), auth.UserFromContext(r.Context()), id, upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// CreateFlight handles POST /api/v1/flights
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlightRequest
	if !decode(w, r, &req) {
		return
	}
	f, err := h.svc.CreateFlight(r.Context(), auth.UserFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

// GetFlights handles GET /api/v1/flights
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.svc.ListFlights(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/v1/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.svc.GetFlight(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var upd models.FlightUpdate
	if !decode(w, r, &upd) {
		return
	}
	f, err := h.svc.UpdateFlight(r.Context(), auth.UserFromContext(r.Context()), id, upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

// GetFlightSeats handles GET /api/v1/flights/{id}/seats
func (h *Handler) GetFlightSeats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	seats, err := h.svc.ListSeats(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.NewSeatViews(seats))
}

// CreateSeats handles POST /api/v1/flights/{id}/seats
func (h *Handler) CreateSeats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CreateSeatsRequest
	if !decode(w, r, &req) {
		return
	}
	seats, err := h.svc.CreateSeats(r.Context(), auth.UserFromContext(r.Context()), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, models.NewSeatViews(seats))
}

// ReserveSeats handles POST /api/v1/flights/{id}/reserve_seats
func (h *Handler) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ReserveSeatsRequest
	if !decode(w, r, &req) {
		return
	}
	seats, err := h.svc.ReserveSeats(r.Context(), auth.UserFromContext(r.Context()), id, req.SeatIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.NewSeatViews(seats))
}

// SearchFlights handles POST /api/v1/flights/search
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !decode(w, r, &req) {
		return
	}
	search := h.svc.Search
	if req.Live {
		search = h.svc.SearchLive
	}
	res, err := search(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
