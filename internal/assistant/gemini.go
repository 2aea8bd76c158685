package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hearthwise/hearth-core/internal/device"
)

const defaultGeminiTimeout = 15 * time.Second

// GeminiInterpreter calls the Gemini generateContent REST API.
type GeminiInterpreter struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewGeminiInterpreter creates an interpreter against the given endpoint
// (e.g. https://generativelanguage.googleapis.com) and model.
func NewGeminiInterpreter(endpoint, model, apiKey string, timeout time.Duration) *GeminiInterpreter {
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	return &GeminiInterpreter{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Interpret sends the command text to Gemini and parses the JSON guess
// out of its reply.
func (g *GeminiInterpreter) Interpret(ctx context.Context, text string, hints Hints) (Guess, error) {
	if g.apiKey == "" {
		return Guess{}, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(text, hints)}}}},
	})
	if err != nil {
		return Guess{}, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Guess{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return Guess{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Truncated body for the error; upstream error payloads can be large.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Guess{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Guess{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return Guess{}, fmt.Errorf("%w: empty response", ErrNoGuess)
	}

	return parseGuess(decoded.Candidates[0].Content.Parts[0].Text)
}

// buildPrompt asks for bare JSON. Device name hints sharpen matching of
// loose phrasings without leaking anything beyond names.
func buildPrompt(text string, hints Hints) string {
	var b strings.Builder
	b.WriteString(`You are a smart home automation assistant. Parse this command and return ONLY a JSON object.

Rules:
1. Return ONLY valid JSON, no markdown, no extra text
2. Required: "device_name" and "action"
3. Optional: "value" (number)
4. Actions: turn_on, turn_off, set_temperature, set_speed
`)
	if len(hints.DeviceNames) > 0 {
		b.WriteString("5. Known device names: ")
		b.WriteString(strings.Join(hints.DeviceNames, ", "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `
Command: %q

Valid JSON examples:
{"device_name": "Living Room Light", "action": "turn_on"}
{"device_name": "AC", "action": "set_temperature", "value": 22}

Return JSON now:`, text)
	return b.String()
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{[^}]*\}`)

// parseGuess digs the guess out of a model reply, tolerating markdown
// fences and surrounding prose.
func parseGuess(raw string) (Guess, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return Guess{}, fmt.Errorf("%w: no JSON object in reply", ErrNoGuess)
	}

	// Models sometimes quote the value ("22"); accept any numeric form.
	var loose struct {
		DeviceName string `json:"device_name"`
		Action     string `json:"action"`
		Value      any    `json:"value"`
	}
	if err := json.Unmarshal([]byte(match), &loose); err != nil {
		return Guess{}, fmt.Errorf("%w: %v", ErrNoGuess, err)
	}
	if loose.DeviceName == "" || loose.Action == "" {
		return Guess{}, fmt.Errorf("%w: reply missing device_name or action", ErrNoGuess)
	}

	value, err := device.CoerceValue(loose.Value)
	if err != nil {
		return Guess{}, fmt.Errorf("%w: %v", ErrNoGuess, err)
	}
	return Guess{DeviceName: loose.DeviceName, Action: loose.Action, Value: value}, nil
}
