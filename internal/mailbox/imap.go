package mailbox

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"

	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/config"
	"shift-triage-go/internal/model"
)

// IMAPSource implements MessageSource over IMAP for mailboxes without
// API access.
type IMAPSource struct {
	client    *client.Client
	tenantID  string
	lastCheck time.Time
}

// NewIMAPSource connects and logs in to the IMAP server
func NewIMAPSource(cfg *config.MailboxConfig) (*IMAPSource, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return &IMAPSource{
		client:    c,
		tenantID:  cfg.TenantID,
		lastCheck: time.Now().Add(-24 * time.Hour), // Start with emails from last 24 hours
	}, nil
}

// FetchNew fetches messages received since the last check.
func (s *IMAPSource) FetchNew(ctx context.Context) ([]model.InboundEmail, error) {
	if _, err := s.client.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = s.lastCheck

	uids, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	if len(uids) == 0 {
		s.lastCheck = time.Now()
		return []model.InboundEmail{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)

	go func() {
		done <- s.client.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchBody, imap.FetchUid}, messages)
	}()

	var emails []model.InboundEmail

	for msg := range messages {
		email, err := s.parseMessage(msg)
		if err != nil {
			logrus.Warnf("Failed to parse IMAP message: %v", err)
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	s.lastCheck = time.Now()
	return emails, nil
}

// parseMessage converts an IMAP message into an InboundEmail.
func (s *IMAPSource) parseMessage(msg *imap.Message) (model.InboundEmail, error) {
	email := model.InboundEmail{
		TenantID: s.tenantID,
	}

	if msg.Envelope != nil {
		email.MessageID = msg.Envelope.MessageId
		email.Subject = msg.Envelope.Subject
		email.ReceivedAt = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			from := msg.Envelope.From[0]
			email.FromName = from.PersonalName
			email.FromEmail = from.Address()
		}
	}
	if email.MessageID == "" {
		email.MessageID = fmt.Sprintf("imap-%d", msg.Uid)
	}

	if err := s.readBody(msg, &email); err != nil {
		return email, err
	}
	email.Preview = makePreview(email.Body)

	return email, nil
}

// readBody extracts the text body from the fetched message, preferring
// text/plain over text/html.
func (s *IMAPSource) readBody(msg *imap.Message, email *model.InboundEmail) error {
	if msg.Body == nil {
		return nil
	}

	section := &imap.BodySectionName{}
	r := msg.GetBody(section)
	if r == nil {
		return fmt.Errorf("failed to get message body")
	}

	entity, err := message.Read(r)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	var plain, html string

	if mr := entity.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read part: %w", err)
			}

			content, err := io.ReadAll(p.Body)
			if err != nil {
				return fmt.Errorf("failed to read part body: %w", err)
			}

			contentType := p.Header.Get("Content-Type")
			if strings.Contains(contentType, "text/plain") && plain == "" {
				plain = string(content)
			} else if strings.Contains(contentType, "text/html") && html == "" {
				html = string(content)
			}
		}
	} else {
		content, err := io.ReadAll(entity.Body)
		if err != nil {
			return fmt.Errorf("failed to read message body: %w", err)
		}

		contentType := entity.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			html = string(content)
		} else {
			plain = string(content)
		}
	}

	if plain != "" {
		email.Body = plain
	} else {
		email.Body = html
	}
	return nil
}

// Close logs out of the IMAP session
func (s *IMAPSource) Close() error {
	return s.client.Logout()
}
