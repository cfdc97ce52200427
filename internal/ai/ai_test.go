package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var searchDate = time.Date(2030, 5, 17, 0, 0, 0, 0, time.UTC)

func TestMockProvider(t *testing.T) {
	flights := Mock{}.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate)
	require.Len(t, flights, 2)

	first := flights[0]
	assert.Equal(t, "Sample Air", first.AirlineName)
	assert.Equal(t, "SA123", first.FlightNumber)
	assert.Equal(t, time.Date(2030, 5, 17, 9, 0, 0, 0, time.UTC), first.DepartureTime)
	require.NotNil(t, first.ArrivalTime)
	assert.Equal(t, time.Date(2030, 5, 17, 11, 0, 0, 0, time.UTC), *first.ArrivalTime)
	assert.Equal(t, "250.00", first.Airfare.StringFixed(2))
	assert.Equal(t, "LOS", first.DepartureIATA)
	assert.Equal(t, "ABV", first.DestinationIATA)

	second := flights[1]
	assert.Equal(t, "Demo Airways", second.AirlineName)
	assert.Equal(t, 13, second.DepartureTime.Hour())
	assert.Nil(t, second.Airfare)
	assert.Equal(t, "https://example.com/book/DA456", *second.BookingURL)
}

func TestParseFlights_FencedSingleQuoted(t *testing.T) {
	reply := "Here you go:\n```json\n{'flights': [{'airline_name': 'Test Air', 'flight_number': 'TA1', " +
		"'departure_time': '2030-05-17T08:00:00', 'arrival_time': None, 'airfare': 99.5, 'booking_url': None,},]}\n```"

	flights, err := ParseFlights(reply, "LOS", "ABV")
	require.NoError(t, err)
	require.Len(t, flights, 1)

	f := flights[0]
	assert.Equal(t, "Test Air", f.AirlineName)
	assert.Equal(t, "TA1", f.FlightNumber)
	assert.Equal(t, "LOS", f.DepartureIATA)
	assert.Equal(t, "ABV", f.DestinationIATA)
	assert.Nil(t, f.ArrivalTime)
	assert.Nil(t, f.BookingURL)
	assert.Equal(t, "99.50", f.Airfare.StringFixed(2))
}

func TestParseFlights_BracketedProseBeforeObject(t *testing.T) {
	reply := "Results [as requested]: {'flights': [{'airline_name': 'X Air', 'flight_number': 'X1', " +
		"'departure_time': '2030-01-01T09:00:00'}]} [end]"

	flights, err := ParseFlights(reply, "LOS", "ABV")
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "X Air", flights[0].AirlineName)
	assert.Equal(t, time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC), flights[0].DepartureTime)
}

func TestParseFlights_ArrayInProse(t *testing.T) {
	reply := `Found these: [{"airline_name": "Y Air", "flight_number": "Y2", "departure_time": "2030-01-01T10:00:00Z"}]`

	flights, err := ParseFlights(reply, "LOS", "ABV")
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "Y2", flights[0].FlightNumber)
}

func TestParseFlights_BareArrayAndBadItems(t *testing.T) {
	reply := `[
		{"airline_name": "Good Air", "flight_number": 42, "departure_time": "2030-05-17 10:30", "departure_iata": "lhr", "airfare": "120.456"},
		{"airline_name": "", "flight_number": "X1", "departure_time": "2030-05-17T10:00:00Z"},
		{"airline_name": "No Time", "flight_number": "NT1", "departure_time": "tomorrow"},
		"not an object"
	]`

	flights, err := ParseFlights(reply, "LOS", "ABV")
	require.NoError(t, err)
	require.Len(t, flights, 1)

	f := flights[0]
	assert.Equal(t, "42", f.FlightNumber)
	assert.Equal(t, "LHR", f.DepartureIATA)
	assert.Equal(t, "ABV", f.DestinationIATA)
	assert.Equal(t, "120.46", f.Airfare.StringFixed(2))
	assert.Equal(t, time.Date(2030, 5, 17, 10, 30, 0, 0, time.UTC), f.DepartureTime)
}

func TestParseFlights_Invalid(t *testing.T) {
	for name, reply := range map[string]string{
		"no json":        "I could not find any flights.",
		"broken":         "{\"flights\": [ {\"airline_name\": }",
		"missing list":   `{"results": []}`,
		"unbalanced":     "[]]",
	} {
		t.Run(name, func(t *testing.T) {
			flights, err := ParseFlights(reply, "LOS", "ABV")
			assert.Error(t, err)
			assert.Empty(t, flights)
		})
	}
}

func TestRepairJSON(t *testing.T) {
	out := repairJSON(`{'a': True, 'b': False, 'c': None, 'd': 'it\'s "x"', "Nonesuch": 1, /* note */ 'e': [1,2,],}`)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, true, got["a"])
	assert.Equal(t, false, got["b"])
	assert.Nil(t, got["c"])
	assert.Equal(t, `it's "x"`, got["d"])
	assert.Contains(t, got, "Nonesuch")
	assert.Len(t, got["e"], 2)
}

type slowProvider struct{ delay time.Duration }

func (s slowProvider) SearchExternalFlights(ctx context.Context, origin, destination string, date time.Time) []models.ExternalFlight {
	select {
	case <-time.After(s.delay):
		return Mock{}.SearchExternalFlights(ctx, origin, destination, date)
	case <-ctx.Done():
		return nil
	}
}

type panickingProvider struct{}

func (panickingProvider) SearchExternalFlights(context.Context, string, string, time.Time) []models.ExternalFlight {
	panic("boom")
}

func TestWithTimeout(t *testing.T) {
	log, _ := test.NewNullLogger()

	t.Run("returns results in time", func(t *testing.T) {
		p := WithTimeout(slowProvider{delay: time.Millisecond}, time.Second, log)
		assert.Len(t, p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate), 2)
	})

	t.Run("times out with empty list", func(t *testing.T) {
		p := WithTimeout(slowProvider{delay: time.Second}, 20*time.Millisecond, log)
		flights := p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate)
		assert.NotNil(t, flights)
		assert.Empty(t, flights)
	})

	t.Run("recovers from panic", func(t *testing.T) {
		p := WithTimeout(panickingProvider{}, time.Second, log)
		flights := p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate)
		assert.NotNil(t, flights)
		assert.Empty(t, flights)
	})
}

type fakeChat struct {
	req     openai.ChatCompletionRequest
	content string
	err     error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

func TestOpenAIProvider(t *testing.T) {
	log, _ := test.NewNullLogger()

	t.Run("no key", func(t *testing.T) {
		p := NewOpenAI("", "gpt-4.1-mini", "", log)
		assert.Empty(t, p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate))
	})

	t.Run("structured reply", func(t *testing.T) {
		chat := &fakeChat{content: `{"flights":[{"airline_name":"Air Peace","flight_number":"P47121","departure_time":"2030-05-17T07:00:00+01:00","departure_iata":"LOS","destination_iata":"ABV","airfare":85}]}`}
		p := &OpenAI{client: chat, model: "gpt-4.1-mini", log: log}

		flights := p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate)
		require.Len(t, flights, 1)
		assert.Equal(t, "Air Peace", flights[0].AirlineName)
		assert.Equal(t, "85.00", flights[0].Airfare.StringFixed(2))

		assert.Equal(t, "gpt-4.1-mini", chat.req.Model)
		assert.InDelta(t, 0.2, chat.req.Temperature, 1e-6)
		require.Len(t, chat.req.Messages, 2)
		assert.Contains(t, chat.req.Messages[1].Content, "Origin: LOS. Destination: ABV. Date: 2030-05-17.")
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, chat.req.ResponseFormat.Type)
	})

	t.Run("api error", func(t *testing.T) {
		p := &OpenAI{client: &fakeChat{err: errors.New("rate limited")}, model: "m", log: log}
		flights := p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate)
		assert.NotNil(t, flights)
		assert.Empty(t, flights)
	})
}

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}}},
	}, nil
}

func TestGeminiProvider(t *testing.T) {
	log, _ := test.NewNullLogger()

	g := &Gemini{models: fakeGenerator{text: "```json\n[{'airline_name': 'Test Air', 'flight_number': 'TA9', 'departure_time': '2030-05-17T12:00:00Z'}]\n```"}, model: "gemini", log: log}
	flights := g.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate)
	require.Len(t, flights, 1)
	assert.Equal(t, "Test Air", flights[0].AirlineName)

	g.models = fakeGenerator{err: errors.New("quota")}
	assert.Empty(t, g.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate))

	g.models = fakeGenerator{text: "sorry"}
	assert.Empty(t, g.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate))
}

func TestNew(t *testing.T) {
	log, _ := test.NewNullLogger()

	p, err := New(context.Background(), config.AIConfig{Provider: ProviderMock, Timeout: time.Second}, log)
	require.NoError(t, err)
	assert.Len(t, p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate), 2)

	p, err = New(context.Background(), config.AIConfig{Provider: ProviderOpenAI}, log)
	require.NoError(t, err)
	assert.Empty(t, p.SearchExternalFlights(context.Background(), "LOS", "ABV", searchDate))

	_, err = New(context.Background(), config.AIConfig{Provider: "CLIPPY"}, log)
	assert.Error(t, err)
}
