// Package ai looks up flights outside the internal catalog through a
// language model. Providers are best effort: any failure yields no flights.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	ProviderMock   = "MOCK"
	ProviderOpenAI = "OPENAI"
	ProviderGemini = "GEMINI"
)

// Provider suggests external flights for a route and date. It never fails;
// on any error it returns an empty slice.
type Provider interface {
	SearchExternalFlights(ctx context.Context, origin, destination string, date time.Time) []models.ExternalFlight
}

// New builds the configured provider, bounded by cfg.Timeout.
func New(ctx context.Context, cfg config.AIConfig, log logrus.FieldLogger) (Provider, error) {
	var p Provider
	switch cfg.Provider {
	case "", ProviderMock:
		p = Mock{}
	case ProviderOpenAI:
		p = NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIURL, log)
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, log)
		if err != nil {
			return nil, err
		}
		p = g
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
	log.WithField("provider", cfg.Provider).Info("AI provider configured")
	return WithTimeout(p, cfg.Timeout, log), nil
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
	log     logrus.FieldLogger
}

// WithTimeout bounds every call to p by d and shields the caller from panics.
// A non-positive d disables the deadline.
func WithTimeout(p Provider, d time.Duration, log logrus.FieldLogger) Provider {
	return &timeoutProvider{inner: p, timeout: d, log: log}
}

func (t *timeoutProvider) SearchExternalFlights(ctx context.Context, origin, destination string, date time.Time) []models.ExternalFlight {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	done := make(chan []models.ExternalFlight, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.log.WithField("panic", r).Error("AI provider panicked")
				done <- nil
			}
		}()
		done <- t.inner.SearchExternalFlights(ctx, origin, destination, date)
	}()

	select {
	case flights := <-done:
		if flights == nil {
			return []models.ExternalFlight{}
		}
		return flights
	case <-ctx.Done():
		t.log.WithError(ctx.Err()).WithFields(logrus.Fields{
			"origin":      origin,
			"destination": destination,
		}).Warn("AI provider timed out")
		return []models.ExternalFlight{}
	}
}

func searchPrompts(origin, destination string, date time.Time) (system, user string) {
	system = "You are a travel assistant. Return external flight options not in our system. " +
		"Use realistic carriers/routes. Only output the requested structure."
	user = fmt.Sprintf("Provide up to 5 flights as a structured object. "+
		"Origin: %s. Destination: %s. Date: %s. "+
		"Fill ISO8601 times and booking_url when available.",
		origin, destination, date.Format(models.DateLayout))
	return system, user
}
