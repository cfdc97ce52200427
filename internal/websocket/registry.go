package websocket

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscriber receives encoded messages. Send reports false when the message
// could not be queued; the registry then drops and closes the subscriber.
type Subscriber interface {
	Send(msg []byte) bool
	Close()
}

// Message is the envelope pushed to subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Registry maps a key to the set of subscribers listening on it.
type Registry[K comparable] struct {
	mu   sync.RWMutex
	subs map[K]map[Subscriber]struct{}
	log  logrus.FieldLogger
}

func NewRegistry[K comparable](log logrus.FieldLogger) *Registry[K] {
	return &Registry[K]{subs: make(map[K]map[Subscriber]struct{}), log: log}
}

func (r *Registry[K]) Subscribe(key K, s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[key] == nil {
		r.subs[key] = make(map[Subscriber]struct{})
	}
	r.subs[key][s] = struct{}{}
	r.log.WithFields(logrus.Fields{"key": key, "total": len(r.subs[key])}).Debug("subscriber registered")
}

// Unsubscribe is a no-op for unknown keys or subscribers.
func (r *Registry[K]) Unsubscribe(key K, s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(key, s)
}

func (r *Registry[K]) removeLocked(key K, s Subscriber) bool {
	set, ok := r.subs[key]
	if !ok {
		return false
	}
	if _, ok := set[s]; !ok {
		return false
	}
	delete(set, s)
	if len(set) == 0 {
		delete(r.subs, key)
	}
	return true
}

// Broadcast sends msg to every subscriber of key and returns how many
// accepted it. Subscribers that fail are removed and closed.
func (r *Registry[K]) Broadcast(key K, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.WithError(err).WithField("type", msg.Type).Error("failed to encode broadcast")
		return 0
	}

	r.mu.RLock()
	targets := make([]Subscriber, 0, len(r.subs[key]))
	for s := range r.subs[key] {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	delivered := 0
	var dead []Subscriber
	for _, s := range targets {
		if s.Send(data) {
			delivered++
		} else {
			dead = append(dead, s)
		}
	}

	if len(dead) > 0 {
		r.mu.Lock()
		for _, s := range dead {
			r.removeLocked(key, s)
		}
		r.mu.Unlock()
		for _, s := range dead {
			s.Close()
		}
	}

	r.log.WithFields(logrus.Fields{
		"key":       key,
		"type":      msg.Type,
		"delivered": delivered,
		"dropped":   len(dead),
	}).Debug("broadcast")
	return delivered
}

func (r *Registry[K]) Count(key K) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[key])
}

func (r *Registry[K]) closeAll() {
	r.mu.Lock()
	all := r.subs
	r.subs = make(map[K]map[Subscriber]struct{})
	r.mu.Unlock()

	for _, set := range all {
		for s := range set {
			s.Close()
		}
	}
}
