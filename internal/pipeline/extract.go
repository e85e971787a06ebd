package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shift-triage-go/internal/model"
	"shift-triage-go/internal/oracle"
)

// Extractor turns free-text shift requests into structured records via
// the oracle.
type Extractor struct {
	oracle oracle.Client
	prompt string
}

func newExtractor(client oracle.Client, prompt string) *Extractor {
	return &Extractor{oracle: client, prompt: prompt}
}

// Extract returns the ordered list of shifts found in the body. An
// oracle failure propagates as an error; unparseable oracle output is
// "no shifts extracted", which is a distinct outcome handled by the
// caller.
func (e *Extractor) Extract(ctx context.Context, body string) ([]model.ShiftRequest, error) {
	answer, err := e.oracle.Complete(ctx, e.prompt, body)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	shifts, ok := parseShiftArray(answer)
	if !ok {
		return nil, nil
	}
	return shifts, nil
}

// parseShiftArray defensively parses the first [...] substring of the
// oracle output as a JSON array of shifts. The boolean distinguishes a
// parse failure from a legitimately empty array.
func parseShiftArray(text string) ([]model.ShiftRequest, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, false
	}

	var shifts []model.ShiftRequest
	if err := json.Unmarshal([]byte(text[start:end+1]), &shifts); err != nil {
		return nil, false
	}
	return shifts, true
}
