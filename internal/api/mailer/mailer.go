package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/FACorreiaa/go-saas-starter/config"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
)

// sendTimeout bounds each SMTP conversation so a stalled relay cannot pin
// goroutines forever.
const sendTimeout = 15 * time.Second

var _ auth.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers transactional mail over SMTP. Sends detach from the
// calling request: auth flows never block on, or fail because of, the mail
// relay.
type SMTPMailer struct {
	logger *slog.Logger
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg config.Config, logger *slog.Logger) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.SMTP.Host,
		mail.WithPort(cfg.SMTP.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTP.Username),
		mail.WithPassword(cfg.SMTP.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{
		logger: logger,
		client: client,
		from:   cfg.SMTP.From,
	}, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, email, firstName, code string) {
	m.send(ctx, email, "Verify your email",
		fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in a few minutes.\n\nIf you did not sign up, ignore this email.\n", greeting(firstName), code))
}

func (m *SMTPMailer) SendForgotPasswordEmail(ctx context.Context, email, firstName, code string) {
	m.send(ctx, email, "Reset your password",
		fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in a few minutes.\n\nIf you did not request a reset, ignore this email.\n", greeting(firstName), code))
}

func (m *SMTPMailer) SendWelcomeEmail(ctx context.Context, email, firstName string) {
	m.send(ctx, email, "Welcome aboard",
		fmt.Sprintf("Hi %s,\n\nYour email is verified and your account is ready to use.\n", greeting(firstName)))
}

func greeting(firstName string) string {
	if firstName == "" {
		return "there"
	}
	return firstName
}

// send fires the delivery on its own goroutine with a detached context, so
// cancellation of the originating request does not abort the send.
func (m *SMTPMailer) send(_ context.Context, email, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		msg := mail.NewMsg()
		if err := msg.From(m.from); err != nil {
			m.logger.Error("Invalid sender address", slog.Any("error", err))
			return
		}
		if err := msg.To(email); err != nil {
			m.logger.Error("Invalid recipient address", slog.Any("error", err))
			return
		}
		msg.Subject(subject)
		msg.SetBodyString(mail.TypeTextPlain, body)

		if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
			m.logger.Error("Failed to send email",
				slog.String("subject", subject),
				slog.Any("error", err),
			)
			return
		}
		m.logger.Debug("Email sent", slog.String("subject", subject))
	}()
}

var _ auth.Mailer = (*Noop)(nil)

// Noop discards all mail. Used in tests and local setups without a relay.
type Noop struct{}

func (Noop) SendVerificationEmail(context.Context, string, string, string)   {}
func (Noop) SendForgotPasswordEmail(context.Context, string, string, string) {}
func (Noop) SendWelcomeEmail(context.Context, string, string)                {}
