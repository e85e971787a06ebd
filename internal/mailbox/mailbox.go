package mailbox

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"shift-triage-go/internal/model"
)

// MessageSource fetches newly arrived messages from the mail provider.
type MessageSource interface {
	FetchNew(ctx context.Context) ([]model.InboundEmail, error)
	Close() error
}

// ReplySender sends an HTML reply back to the original sender.
type ReplySender interface {
	SendReply(ctx context.Context, to, subject, htmlBody string) error
}

const previewLength = 160

// makePreview returns the first part of the plain-text body, collapsed
// to a single line.
func makePreview(body string) string {
	preview := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(preview) <= previewLength {
		return preview
	}
	runes := []rune(preview)
	return string(runes[:previewLength])
}

// splitAddress separates "Name <addr@host>" into its parts. The raw
// value is returned as the address when it does not parse.
func splitAddress(raw string) (name, address string) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", strings.TrimSpace(raw)
	}
	return addr.Name, addr.Address
}
