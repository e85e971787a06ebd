package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/config"
	"shift-triage-go/internal/model"
)

// GmailSource implements MessageSource using the Gmail API.
type GmailSource struct {
	service   *gmail.Service
	userEmail string
	tenantID  string
	lastCheck time.Time
}

// NewGmailSource creates a new Gmail API message source
func NewGmailSource(cfg *config.MailboxConfig) (*GmailSource, error) {
	service, err := newGmailService(cfg, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, err
	}

	return &GmailSource{
		service:   service,
		userEmail: cfg.UserEmail,
		tenantID:  cfg.TenantID,
		lastCheck: time.Now().Add(-24 * time.Hour), // Start with emails from last 24 hours
	}, nil
}

func newGmailService(cfg *config.MailboxConfig, scope string) (*gmail.Service, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{scope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return service, nil
}

// FetchNew fetches messages received since the last check.
func (s *GmailSource) FetchNew(ctx context.Context) ([]model.InboundEmail, error) {
	query := fmt.Sprintf("after:%d", s.lastCheck.Unix())

	call := s.service.Users.Messages.List(s.userEmail).Q(query)
	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var emails []model.InboundEmail

	for _, msg := range response.Messages {
		full, err := s.service.Users.Messages.Get(s.userEmail, msg.Id).Format("full").Do()
		if err != nil {
			logrus.Warnf("Failed to get message %s: %v", msg.Id, err)
			continue
		}

		email, err := s.parseMessage(full)
		if err != nil {
			logrus.Warnf("Failed to parse message %s: %v", msg.Id, err)
			continue
		}

		emails = append(emails, email)
	}

	s.lastCheck = time.Now()
	return emails, nil
}

// parseMessage converts a Gmail API message into an InboundEmail.
func (s *GmailSource) parseMessage(msg *gmail.Message) (model.InboundEmail, error) {
	email := model.InboundEmail{
		TenantID:   s.tenantID,
		MessageID:  msg.Id,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "Subject":
			email.Subject = header.Value
		case "From":
			email.FromName, email.FromEmail = splitAddress(header.Value)
		}
	}

	var plain, html string
	if err := collectBodyParts(msg.Payload, &plain, &html); err != nil {
		return email, err
	}
	if plain != "" {
		email.Body = plain
	} else {
		email.Body = html
	}
	email.Preview = makePreview(email.Body)

	return email, nil
}

// collectBodyParts recursively walks message parts, keeping the first
// text/plain and text/html bodies found.
func collectBodyParts(part *gmail.MessagePart, plain, html *string) error {
	if part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return fmt.Errorf("failed to decode body data: %w", err)
		}

		switch part.MimeType {
		case "text/plain":
			if *plain == "" {
				*plain = string(data)
			}
		case "text/html":
			if *html == "" {
				*html = string(data)
			}
		}
	}

	for _, subPart := range part.Parts {
		if err := collectBodyParts(subPart, plain, html); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Gmail source
func (s *GmailSource) Close() error {
	// Gmail API service doesn't need explicit closing
	return nil
}

// GmailSender implements ReplySender using the Gmail API.
type GmailSender struct {
	service   *gmail.Service
	userEmail string
}

// NewGmailSender creates a new Gmail API reply sender
func NewGmailSender(cfg *config.MailboxConfig) (*GmailSender, error) {
	service, err := newGmailService(cfg, gmail.GmailSendScope)
	if err != nil {
		return nil, err
	}

	return &GmailSender{
		service:   service,
		userEmail: cfg.UserEmail,
	}, nil
}

// SendReply sends an HTML reply to the original sender. There is no
// inline retry; failed sends are re-queued by the retry sweep.
func (s *GmailSender) SendReply(ctx context.Context, to, subject, htmlBody string) error {
	raw := s.buildReply(to, subject, htmlBody)
	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := s.service.Users.Messages.Send(s.userEmail, message).Do(); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	logrus.Infof("Sent reply to %s", to)
	return nil
}

// buildReply assembles the raw MIME reply.
func (s *GmailSender) buildReply(to, subject, htmlBody string) string {
	replySubject := subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		replySubject = "Re: " + subject
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", s.userEmail))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", replySubject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}

// Close closes the sender (no-op for Gmail API)
func (s *GmailSender) Close() error {
	return nil
}
