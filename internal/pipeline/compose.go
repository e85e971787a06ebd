package pipeline

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/model"
	"shift-triage-go/internal/oracle"
)

const tablePlaceholder = "[SHIFTS_TABLE]"

// Composer builds the final response document: a deterministic HTML
// table of the shift/match data wrapped in oracle-generated prose,
// with a static skeleton as fallback. When a response is required the
// composer always produces a body.
type Composer struct {
	oracle        oracle.Client
	matchedPrompt string
	noMatchPrompt string
	stylePrompt   string
	sendOnNoMatch bool
}

func newComposer(client oracle.Client, matchedPrompt, noMatchPrompt, stylePrompt string, sendOnNoMatch bool) *Composer {
	return &Composer{
		oracle:        client,
		matchedPrompt: matchedPrompt,
		noMatchPrompt: noMatchPrompt,
		stylePrompt:   stylePrompt,
		sendOnNoMatch: sendOnNoMatch,
	}
}

// Compose returns the HTML body and true, or ("", false) when nothing
// should be sent (zero matches with no-match sending disabled).
func (c *Composer) Compose(ctx context.Context, results []model.MatchResult) (string, bool) {
	matched := 0
	for _, r := range results {
		if r.Nurse != nil {
			matched++
		}
	}

	if matched == 0 && !c.sendOnNoMatch {
		return "", false
	}

	table := renderShiftTable(results)

	prompt := c.matchedPrompt
	if matched == 0 {
		prompt = c.noMatchPrompt
	}

	body := c.generateProse(ctx, prompt, results, matched)
	if body == "" {
		body = fallbackBody(table)
	} else {
		body = spliceTable(body, table)
	}

	return wrapEnvelope(body), true
}

// generateProse asks the oracle for the response prose. Any failure or
// empty answer yields "" so the caller falls back to the static
// template.
func (c *Composer) generateProse(ctx context.Context, prompt string, results []model.MatchResult, matched int) string {
	if prompt == "" {
		return ""
	}

	system := prompt
	if c.stylePrompt != "" {
		system = prompt + "\n\n" + c.stylePrompt
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%d of %d requested shifts were matched.", matched, len(results)))
	for _, r := range results {
		status := "no nurse available"
		if r.Nurse != nil {
			status = "matched with " + r.Nurse.NurseName
		}
		lines = append(lines, fmt.Sprintf("- %s %s-%s %s (%s): %s",
			r.Shift.Date, r.Shift.StartTime, r.Shift.EndTime, r.Shift.Unit, r.Shift.Grade, status))
	}

	prose, err := c.oracle.Complete(ctx, system, strings.Join(lines, "\n"))
	if err != nil {
		logrus.Warnf("Response prose generation failed, using static template: %v", err)
		return ""
	}
	return strings.TrimSpace(prose)
}

// renderShiftTable renders the deterministic shift/match table.
func renderShiftTable(results []model.MatchResult) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
	b.WriteString("<tr><th>Date</th><th>Start</th><th>End</th><th>Unit</th><th>Grade</th><th>Nurse</th></tr>")
	for _, r := range results {
		nurse := "No match"
		if r.Nurse != nil {
			nurse = r.Nurse.NurseName
		}
		b.WriteString("<tr>")
		for _, cell := range []string{r.Shift.Date, r.Shift.StartTime, r.Shift.EndTime, r.Shift.Unit, r.Shift.Grade, nurse} {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// spliceTable inserts the table at the placeholder, or after the first
// paragraph when the oracle dropped the placeholder.
func spliceTable(prose, table string) string {
	if strings.Contains(prose, tablePlaceholder) {
		return strings.Replace(prose, tablePlaceholder, table, 1)
	}
	if idx := strings.Index(prose, "</p>"); idx >= 0 {
		return prose[:idx+4] + "\n" + table + prose[idx+4:]
	}
	if idx := strings.Index(prose, "\n\n"); idx >= 0 {
		return prose[:idx+1] + table + prose[idx+1:]
	}
	return prose + "\n" + table
}

// fallbackBody is the fixed skeleton used when the oracle is
// unavailable or returned nothing.
func fallbackBody(table string) string {
	return "<p>Hello,</p>\n" +
		"<p>Thank you for your shift request. Please find the current status below:</p>\n" +
		table + "\n" +
		"<p>We will be in touch if anything changes.</p>\n" +
		"<p>Kind regards,<br>Staffing Team</p>"
}

// wrapEnvelope wraps the body in a minimal HTML document if the oracle
// did not already produce one.
func wrapEnvelope(body string) string {
	if strings.Contains(strings.ToLower(body), "<html") {
		return body
	}
	return "<html><body>\n" + body + "\n</body></html>"
}
