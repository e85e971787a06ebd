package pipeline

import (
	"context"
	"fmt"
	"strings"

	"shift-triage-go/internal/model"
	"shift-triage-go/internal/oracle"
)

// Classifier labels an email as a shift request or not via a single
// oracle call.
type Classifier struct {
	oracle oracle.Client
	prompt string
}

func newClassifier(client oracle.Client, prompt string) *Classifier {
	return &Classifier{oracle: client, prompt: prompt}
}

// Classify returns one of the known classification labels. Oracle
// failures propagate; garbled output defaults to "other" so the
// pipeline never auto-acts on an uncertain classification.
func (c *Classifier) Classify(ctx context.Context, subject, body string) (string, error) {
	content := fmt.Sprintf("Subject: %s\n\n%s", subject, body)
	answer, err := c.oracle.Complete(ctx, c.prompt, content)
	if err != nil {
		return "", fmt.Errorf("classification failed: %w", err)
	}
	return normalizeLabel(answer), nil
}

func normalizeLabel(answer string) string {
	label := strings.ToLower(strings.TrimSpace(answer))
	if strings.Contains(label, model.ClassificationShiftRequest) {
		return model.ClassificationShiftRequest
	}
	return model.ClassificationOther
}
