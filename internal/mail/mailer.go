// Package mail sends email directly, without the notification gateway.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"petitshop/internal/config"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single outgoing email.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	// Enabled reports whether messages actually leave the process.
	Enabled() bool
}

// New returns a SendGrid sender when mail is enabled, otherwise a log-only sender.
func New(cfg config.MailConfig, log *slog.Logger) Sender {
	if !cfg.Enabled {
		return NewLogSender(log)
	}
	return NewSendGridSender(cfg.SendGridAPIKey, cfg.From, log)
}

// SendGridSender sends mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
	log    *slog.Logger
}

func NewSendGridSender(apiKey, from string, log *slog.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail("Petit Shop", from),
		log:    log,
	}
}

func (s *SendGridSender) Enabled() bool { return true }

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	resp, err := s.client.Send(sgmail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML))
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid answered %d: %s", resp.StatusCode, resp.Body)
	}
	s.log.InfoContext(ctx, "email sent", slog.String("to", msg.ToEmail), slog.String("subject", msg.Subject))
	return nil
}

// LogSender only logs messages. Used in development.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Enabled() bool { return false }

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "email not sent, mail disabled",
		slog.String("to", msg.ToEmail), slog.String("subject", msg.Subject))
	// The body carries live tokens.
	s.log.DebugContext(ctx, "disabled email body", slog.String("to", msg.ToEmail), slog.String("body", msg.Text))
	return nil
}

// VerificationMessage builds the resend-verification email.
func VerificationMessage(toEmail, toName, verifyURL string) Message {
	return Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: "Verify your email",
		Text:    fmt.Sprintf("Please verify your email by opening %s", verifyURL),
		HTML: fmt.Sprintf(
			"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
			verifyURL,
		),
	}
}
