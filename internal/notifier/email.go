package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"strings"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/models"
)

// Sink delivers one notification batch to a recipient list.
type Sink interface {
	Deliver(ctx context.Context, recipients []string, subject, body string) error
}

// DeliveryError aborts the cycle before any post is marked sent; the batch
// stays unsent and is retried wholesale on the next cycle.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver notification: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// SMTPSink sends HTML mail over an SSL connection, Gmail-style app
// password auth.
type SMTPSink struct {
	host     string
	port     int
	sender   string
	password string
}

func NewSMTPSink(cfg *config.EmailConfig) (*SMTPSink, error) {
	sender := cfg.Sender
	if sender == "" {
		sender = os.Getenv("EMAIL_ADDRESS")
	}
	password := os.Getenv("GOOGLE_APP_PASSWORD")
	if sender == "" || password == "" {
		return nil, fmt.Errorf("EMAIL_ADDRESS and GOOGLE_APP_PASSWORD must be set")
	}
	return &SMTPSink{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   sender,
		password: password,
	}, nil
}

func (s *SMTPSink) Deliver(ctx context.Context, recipients []string, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return fmt.Errorf("failed to dial smtp server %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.sender, s.password, s.host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err = client.Mail(s.sender); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT %s failed: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	msg := buildMessage(s.sender, recipients, subject, body)
	if _, err = w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}

func buildMessage(sender string, recipients []string, subject, body string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", sender))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipients, ", ")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

// FormatPosts renders the batch as one right-to-left HTML body, link then
// content per post, in store-read order.
func FormatPosts(posts []models.Post) string {
	var b strings.Builder
	b.WriteString("<div style='direction: rtl; text-align: right;'>\n")
	for _, post := range posts {
		b.WriteString(fmt.Sprintf("קישור - %s<br>\n", post.Link))
		b.WriteString(fmt.Sprintf("%s<br>\n", post.Content))
		b.WriteString("----------------<br>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}

// ResolveRecipients merges the configured recipient list with the
// comma-separated EMAIL_RECIPIENTS environment variable.
func ResolveRecipients(cfg *config.EmailConfig) []string {
	if len(cfg.Recipients) > 0 {
		return cfg.Recipients
	}
	raw := os.Getenv("EMAIL_RECIPIENTS")
	if raw == "" {
		return nil
	}
	var recipients []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}
