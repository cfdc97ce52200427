package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/shopspring/decimal"
	"github.com/tidwall/jsonc"
)

// ParseFlights turns a model reply into flights. The reply may wrap the JSON
// in a markdown fence, use Python literals or single quotes, or carry
// trailing commas. Items that cannot be mapped are dropped. Missing airport
// codes default to origin and destination.
func ParseFlights(text, origin, destination string) ([]models.ExternalFlight, error) {
	candidates := extractJSON(text)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var items []any
	var firstErr error
	for _, payload := range candidates {
		var err error
		if items, err = decodeItems(payload); err == nil {
			break
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if items == nil {
		return nil, firstErr
	}

	flights := make([]models.ExternalFlight, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if f, ok := mapFlight(obj, origin, destination); ok {
			flights = append(flights, f)
		}
	}
	return flights, nil
}

func decodeItems(payload string) ([]any, error) {
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		if err := json.Unmarshal(repairJSON(payload), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
	}

	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		list, ok := v["flights"].([]any)
		if !ok {
			return nil, fmt.Errorf("response has no flights list")
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected JSON response of type %T", raw)
	}
}

// extractJSON pulls JSON candidates out of a fenced block or surrounding
// prose, most likely first: the first/last brace span, then a bracket span
// that opens before it.
func extractJSON(text string) []string {
	text = strings.TrimSpace(text)

	if start := strings.Index(text, "```"); start >= 0 {
		body := text[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			// drop the language tag, e.g. ```json
			if tag := strings.TrimSpace(body[:nl]); !strings.ContainsAny(tag, "{[") {
				body = body[nl+1:]
			}
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		text = strings.TrimSpace(body)
	}

	var object, array string
	objStart, objEnd := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if objStart >= 0 && objEnd > objStart {
		object = text[objStart : objEnd+1]
	}
	arrStart, arrEnd := strings.IndexByte(text, '['), strings.LastIndexByte(text, ']')
	if arrStart >= 0 && arrEnd > arrStart && (object == "" || arrStart < objStart) {
		array = text[arrStart : arrEnd+1]
	}

	var out []string
	if strings.HasPrefix(text, "[") && array != "" {
		out = append(out, array)
	}
	if object != "" {
		out = append(out, object)
	}
	if array != "" && !strings.HasPrefix(text, "[") {
		out = append(out, array)
	}
	return out
}

// repairJSON rewrites the usual model slips into valid JSON: Python literals
// outside strings, single-quoted strings, then comments and trailing commas.
func repairJSON(s string) []byte {
	var b strings.Builder
	b.Grow(len(s) + 16)

	const (
		outside = iota
		inDouble
		inSingle
	)
	state := outside

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case inDouble:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == '"' {
				state = outside
			}
		case inSingle:
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				if s[i] == '\'' {
					b.WriteByte('\'')
				} else {
					b.WriteByte('\\')
					b.WriteByte(s[i])
				}
			case c == '"':
				b.WriteString(`\"`)
			case c == '\'':
				b.WriteByte('"')
				state = outside
			default:
				b.WriteByte(c)
			}
		default:
			switch {
			case c == '"':
				b.WriteByte(c)
				state = inDouble
			case c == '\'':
				b.WriteByte('"')
				state = inSingle
			case isWordStart(s, i):
				word := readWord(s, i)
				switch word {
				case "None":
					b.WriteString("null")
				case "True":
					b.WriteString("true")
				case "False":
					b.WriteString("false")
				default:
					b.WriteString(word)
				}
				i += len(word) - 1
			default:
				b.WriteByte(c)
			}
		}
	}

	return jsonc.ToJSON([]byte(b.String()))
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isWordStart(s string, i int) bool {
	return isLetter(s[i]) && (i == 0 || !isLetter(s[i-1]))
}

func readWord(s string, i int) string {
	j := i
	for j < len(s) && (isLetter(s[j]) || s[j] >= '0' && s[j] <= '9') {
		j++
	}
	return s[i:j]
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func mapFlight(obj map[string]any, origin, destination string) (models.ExternalFlight, bool) {
	f := models.ExternalFlight{
		AirlineName:     stringField(obj, "airline_name"),
		FlightNumber:    stringField(obj, "flight_number"),
		DepartureIATA:   strings.ToUpper(stringField(obj, "departure_iata")),
		DestinationIATA: strings.ToUpper(stringField(obj, "destination_iata")),
	}
	if f.AirlineName == "" || f.FlightNumber == "" {
		return f, false
	}

	dep, ok := parseTime(obj["departure_time"])
	if !ok {
		return f, false
	}
	f.DepartureTime = dep

	if arr, ok := parseTime(obj["arrival_time"]); ok {
		f.ArrivalTime = &arr
	}
	if f.DepartureIATA == "" {
		f.DepartureIATA = origin
	}
	if f.DestinationIATA == "" {
		f.DestinationIATA = destination
	}

	switch v := obj["airfare"].(type) {
	case float64:
		fare := decimal.NewFromFloat(v).Round(2)
		f.Airfare = &fare
	case string:
		if fare, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			fare = fare.Round(2)
			f.Airfare = &fare
		}
	}

	if url := stringField(obj, "booking_url"); url != "" {
		f.BookingURL = &url
	}
	return f, true
}
