package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SeatsChannel carries seat changes made outside the API server, such as
// seats freed by the unpaid reservation sweep.
const SeatsChannel = "flightshub:seats"

const publishTimeout = 5 * time.Second

type SeatsChanged struct {
	FlightID uuid.UUID           `json:"flight_id"`
	Seats    []models.FlightSeat `json:"seats"`
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// SeatPublisher forwards seat changes to the API server over Redis. It is the
// broadcaster of processes that hold no websocket clients themselves.
type SeatPublisher struct {
	rdb redisPublisher
	log logrus.FieldLogger
}

func NewSeatPublisher(rdb *redis.Client, log logrus.FieldLogger) *SeatPublisher {
	return &SeatPublisher{rdb: rdb, log: log}
}

// BroadcastSeats publishes the flight's seats and returns the number of
// servers that received them.
func (p *SeatPublisher) BroadcastSeats(flightID uuid.UUID, seats []models.FlightSeat) int {
	log := p.log.WithField("flight_id", flightID)
	bs, err := json.Marshal(SeatsChanged{FlightID: flightID, Seats: seats})
	if err != nil {
		log.WithError(err).Error("failed to encode seat change")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	n, err := p.rdb.Publish(ctx, SeatsChannel, string(bs)).Result()
	if err != nil {
		log.WithError(err).Warn("failed to publish seat change")
		return 0
	}
	return int(n)
}

// BroadcastExternalSearch is a no-op: live searches only run in the API server.
func (p *SeatPublisher) BroadcastExternalSearch(string, []models.ExternalFlightPayload) int {
	return 0
}

type SeatBroadcaster interface {
	BroadcastSeats(flightID uuid.UUID, seats []models.FlightSeat) int
}

// SubscribeSeats relays seat changes from SeatsChannel to hub until ctx is
// done. The returned function closes the subscription.
func SubscribeSeats(ctx context.Context, rdb *redis.Client, hub SeatBroadcaster, log logrus.FieldLogger) (func() error, error) {
	sub := rdb.Subscribe(ctx, SeatsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", SeatsChannel, err)
	}
	go RelaySeats(ctx, sub.Channel(), hub, log)
	return sub.Close, nil
}

// RelaySeats broadcasts every seat change read from msgs. It returns when ctx
// is done or msgs is closed.
func RelaySeats(ctx context.Context, msgs <-chan *redis.Message, hub SeatBroadcaster, log logrus.FieldLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var change SeatsChanged
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.WithError(err).Warn("dropping malformed seat change")
				continue
			}
			n := hub.BroadcastSeats(change.FlightID, change.Seats)
			log.WithFields(logrus.Fields{"flight_id": change.FlightID, "clients": n}).Debug("seat change relayed")
		}
	}
}
