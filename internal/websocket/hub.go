// Package websocket pushes seat changes and live search results to
// connected clients.
package websocket

import (
	"net/http"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	MessageSeatsUpdate    = "seats_update"
	MessageExternalSearch = "external_search"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub holds one registry per channel family: flights by id and live
// searches by search key.
type Hub struct {
	Flights  *Registry[uuid.UUID]
	Searches *Registry[string]
	log      logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		Flights:  NewRegistry[uuid.UUID](log.WithField("channel", "flights")),
		Searches: NewRegistry[string](log.WithField("channel", "search")),
		log:      log,
	}
}

func (h *Hub) BroadcastSeats(flightID uuid.UUID, seats []models.FlightSeat) int {
	return h.Flights.Broadcast(flightID, Message{Type: MessageSeatsUpdate, Data: models.NewSeatViews(seats)})
}

func (h *Hub) BroadcastExternalSearch(key string, flights []models.ExternalFlightPayload) int {
	if flights == nil {
		flights = []models.ExternalFlightPayload{}
	}
	return h.Searches.Broadcast(key, Message{Type: MessageExternalSearch, Data: flights})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.Flights.closeAll()
	h.Searches.closeAll()
}

// ServeFlight handles GET /ws/flights/{id}.
func (h *Hub) ServeFlight(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid flight id", http.StatusBadRequest)
		return
	}
	serve(w, r, h.Flights, id, h.log)
}

// ServeSearch handles GET /ws/search/{key}.
func (h *Hub) ServeSearch(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		http.Error(w, "missing search key", http.StatusBadRequest)
		return
	}
	serve(w, r, h.Searches, key, h.log)
}

func serve[K comparable](w http.ResponseWriter, r *http.Request, reg *Registry[K], key K, log logrus.FieldLogger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := NewClient(conn)
	reg.Subscribe(key, client)
	go client.writePump()

	client.readPump()
	reg.Unsubscribe(key, client)
	client.Close()
}
