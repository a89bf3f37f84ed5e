// Package email delivers outbound e-mail over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"sales_crm_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

type Sender interface {
	SendFollowUpDigest(ctx context.Context, toEmail string, digest FollowUpDigest) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendFollowUpDigest(ctx context.Context, toEmail string, digest FollowUpDigest) error {
	return nil
}

// SMTPSender implements Sender with a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// NewSender returns an SMTPSender when SMTP is configured and a NoopSender
// otherwise.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFromAddress(),
		cfg.GetSMTPFromName(),
	)
}

func (s *SMTPSender) SendFollowUpDigest(ctx context.Context, toEmail string, digest FollowUpDigest) error {
	subject, htmlBody, textBody, err := renderFollowUpDigest(digest)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *SMTPSender) buildMessage(toEmail, subject, htmlBody, textBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(strings.TrimSpace(toEmail)); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (s *SMTPSender) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, network, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, network, addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}
	return opts
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	msg, err := s.buildMessage(toEmail, subject, htmlBody, textBody)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
