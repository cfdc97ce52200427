package router

import (
	"net/http"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/auth"
	"github.com/Victoradukwu/FlightsHub/internal/handlers"
	"github.com/Victoradukwu/FlightsHub/internal/websocket"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, mw *auth.Middleware, hub *websocket.Hub, log logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(requestLogger(log))

	api := r.PathPrefix("/api/v1").Subrouter()

	public := func(f http.HandlerFunc) http.Handler { return mw.Optional(f) }
	private := func(f http.HandlerFunc) http.Handler { return mw.Required(f) }

	// Users
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/token", h.Login).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/users/me", private(h.Me)).Methods(http.MethodGet, http.MethodOptions)

	// Airports
	api.Handle("/airports", private(h.CreateAirport)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/airports", h.ListAirports).Methods(http.MethodGet)
	api.HandleFunc("/airports/{id}", h.GetAirport).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/airports/{id}", private(h.UpdateAirport)).Methods(http.MethodPatch)

	// Airlines
	api.Handle("/airlines", private(h.CreateAirline)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/airlines", h.ListAirlines).Methods(http.MethodGet)
	api.HandleFunc("/airlines/{id}", h.GetAirline).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/airlines/{id}", private(h.UpdateAirline)).Methods(http.MethodPatch)

	// Flights
	api.Handle("/flights/search", public(h.SearchFlights)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/flights", private(h.CreateFlight)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/flights/{id}", private(h.UpdateFlight)).Methods(http.MethodPatch)
	api.HandleFunc("/flights/{id}/seats", h.GetFlightSeats).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/flights/{id}/seats", private(h.CreateSeats)).Methods(http.MethodPost)
	api.Handle("/flights/{id}/reserve_seats", private(h.ReserveSeats)).Methods(http.MethodPost, http.MethodOptions)

	// Reservations
	api.Handle("/reservations", private(h.CreateReservation)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/reservations/{id}", private(h.GetReservation)).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/reservations/{id}/pay", private(h.PayReservation)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/reservations/{id}/cancel", private(h.CancelReservation)).Methods(http.MethodPost, http.MethodOptions)

	// WebSocket for real-time updates
	r.HandleFunc("/ws/flights/{id}", hub.ServeFlight)
	r.HandleFunc("/ws/search/{key}", hub.ServeSearch)

	// Health check
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// websocket upgrades need the raw writer
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Info("request handled")
		})
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
