package ai

import (
	"context"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sirupsen/logrus"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI asks a chat model for flights using a JSON schema response format.
type OpenAI struct {
	client chatCompleter
	model  string
	log    logrus.FieldLogger
}

// NewOpenAI returns a provider for the given key. With an empty key the
// provider is inert and always returns no flights.
func NewOpenAI(apiKey, model, baseURL string, log logrus.FieldLogger) *OpenAI {
	p := &OpenAI{model: model, log: log.WithField("provider", ProviderOpenAI)}
	if apiKey == "" {
		p.log.Warn("OPENAI_API_KEY not set, external search disabled")
		return p
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	p.client = openai.NewClientWithConfig(cfg)
	return p
}

var flightsSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"flights": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"airline_name":     {Type: jsonschema.String},
					"flight_number":    {Type: jsonschema.String},
					"departure_time":   {Type: jsonschema.String, Description: "ISO8601"},
					"arrival_time":     {Type: jsonschema.String, Description: "ISO8601"},
					"departure_iata":   {Type: jsonschema.String},
					"destination_iata": {Type: jsonschema.String},
					"airfare":          {Type: jsonschema.Number},
					"booking_url":      {Type: jsonschema.String},
				},
				Required: []string{"airline_name", "flight_number", "departure_time", "departure_iata", "destination_iata"},
			},
		},
	},
	Required: []string{"flights"},
}

func (p *OpenAI) SearchExternalFlights(ctx context.Context, origin, destination string, date time.Time) []models.ExternalFlight {
	if p.client == nil {
		return []models.ExternalFlight{}
	}

	system, user := searchPrompts(origin, destination, date)
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "external_flights",
				Schema: &flightsSchema,
			},
		},
	})
	if err != nil {
		p.log.WithError(err).Warn("chat completion failed")
		return []models.ExternalFlight{}
	}
	if len(resp.Choices) == 0 {
		return []models.ExternalFlight{}
	}

	flights, err := ParseFlights(resp.Choices[0].Message.Content, origin, destination)
	if err != nil {
		p.log.WithError(err).Warn("unusable chat completion")
		return []models.ExternalFlight{}
	}
	return flights
}
