package handlers

import (
	"net/http"

	"github.com/Victoradukwu/FlightsHub/internal/auth"
	"github.com/Victoradukwu/FlightsHub/internal/models"
)

// CreateReservation handles POST /api/v1/reservations
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReservationRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.CreateReservation(r.Context(), auth.UserFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

// GetReservation handles GET /api/v1/reservations/{id}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetReservation(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// PayReservation handles POST /api/v1/reservations/{id}/pay. Ticketing
// happens in the background; the response only acknowledges the request.
func (h *Handler) PayReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var info models.PaymentInfo
	if !decode(w, r, &info) {
		return
	}
	msg, err := h.svc.RequestPayment(r.Context(), auth.UserFromContext(r.Context()), id, info)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"message": msg})
}

// CancelReservation handles POST /api/v1/reservations/{id}/cancel
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.CancelReservation(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}
