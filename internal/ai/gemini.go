package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for flights in free text and repairs the JSON
// it sends back.
type Gemini struct {
	models contentGenerator
	model  string
	log    logrus.FieldLogger
}

func NewGemini(ctx context.Context, apiKey, model string, log logrus.FieldLogger) (*Gemini, error) {
	g := &Gemini{model: model, log: log.WithField("provider", ProviderGemini)}
	if apiKey == "" {
		g.log.Warn("GEMINI_API_KEY not set, external search disabled")
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.models = client.Models
	return g, nil
}

const geminiFormat = `Respond with JSON only, no prose, in this shape:
{"flights": [{"airline_name": "...", "flight_number": "...", "departure_time": "ISO8601", "arrival_time": "ISO8601", "departure_iata": "...", "destination_iata": "...", "airfare": 0.0, "booking_url": "..."}]}`

func (g *Gemini) SearchExternalFlights(ctx context.Context, origin, destination string, date time.Time) []models.ExternalFlight {
	if g.models == nil {
		return []models.ExternalFlight{}
	}

	system, user := searchPrompts(origin, destination, date)
	result, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: user + "\n\n" + geminiFormat}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			Temperature:       genai.Ptr(float32(0.2)),
		},
	)
	if err != nil {
		g.log.WithError(err).Warn("generate content failed")
		return []models.ExternalFlight{}
	}

	text := responseText(result)
	if text == "" {
		g.log.Warn("empty response from Gemini")
		return []models.ExternalFlight{}
	}

	flights, err := ParseFlights(text, origin, destination)
	if err != nil {
		g.log.WithError(err).Warn("unusable Gemini response")
		return []models.ExternalFlight{}
	}
	return flights
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
