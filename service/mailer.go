package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/rs/zerolog"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

// ShareMailer emails users a document was shared with. Sending happens in the
// background; every attempt is recorded in the notification log when one is set.
type ShareMailer struct {
	sender  mailSender
	from    string
	records NotificationLog
	log     zerolog.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewShareMailer(cfg MailConfig, records NotificationLog, log zerolog.Logger) *ShareMailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.Timeout = 15 * time.Second
	return &ShareMailer{
		sender:  d,
		from:    cfg.From,
		records: records,
		log:     log.With().Str("component", "mailer").Logger(),
		now:     time.Now,
	}
}

// DocumentShared queues one email per recipient with an address.
func (m *ShareMailer) DocumentShared(ctx context.Context, doc *models.Document, sharedBy string, recipients []models.User) {
	snapshot := *doc
	ctx = context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for _, u := range recipients {
			if u.Email == "" {
				continue
			}
			m.send(ctx, &snapshot, sharedBy, u)
		}
	}()
}

func (m *ShareMailer) send(ctx context.Context, doc *models.Document, sharedBy string, to models.User) {
	msg := shareMessage(m.from, doc, sharedBy, to)
	rec := &models.ShareNotification{
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		RecipientID:  to.ID.Hex(),
		ToEmail:      to.Email,
		SharedBy:     sharedBy,
		SentAt:       m.now().UTC(),
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		rec.Error = err.Error()
		m.log.Error().Err(err).Str("document_id", doc.ID.Hex()).Str("to", to.Email).Msg("share email failed")
	} else {
		m.log.Debug().Str("document_id", doc.ID.Hex()).Str("to", to.Email).Msg("share email sent")
	}
	if m.records == nil {
		return
	}
	if err := m.records.InsertNotification(ctx, rec); err != nil {
		m.log.Warn().Err(err).Msg("failed to record share email")
	}
}

// Wait blocks until queued emails are sent.
func (m *ShareMailer) Wait() {
	m.wg.Wait()
}

func shareMessage(from string, doc *models.Document, sharedBy string, to models.User) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetAddressHeader("To", to.Email, displayName(to))
	msg.SetHeader("Subject", fmt.Sprintf("%s shared %q with you", sharedBy, doc.Name))
	body := fmt.Sprintf("%s shared the document %q (%s, %s) with you.\n",
		sharedBy, doc.Name, doc.FileName, models.FormatFileSize(doc.FileSize))
	if doc.Description != "" {
		body += "\n" + doc.Description + "\n"
	}
	msg.SetBody("text/plain", body)
	return msg
}

func displayName(u models.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}
