package mailer

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender sends a single email and blocks until the relay accepted or rejected it.
type Sender interface {
	Send(email Email) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer represents an email sender backed by an SMTP relay.
type Mailer struct {
	config *Config
	dialer dialer
	logger *zerolog.Logger
}

// Email represents an email message.
type Email struct {
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a new Mailer instance with the given configuration.
func NewMailer(cfg *Config, logger *zerolog.Logger) *Mailer {
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	return &Mailer{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	if err := m.dialer.DialAndSend(m.newMessage(email)); err != nil {
		return fmt.Errorf("failed to send email %q: %w", email.Subject, err)
	}

	m.logger.Debug().Strs("to", email.To).Str("subject", email.Subject).Msg("email sent")

	return nil
}

func (m *Mailer) newMessage(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)

	if len(email.Cc) > 0 {
		msg.SetHeader("Cc", email.Cc...)
	}

	if len(email.Bcc) > 0 {
		msg.SetHeader("Bcc", email.Bcc...)
	}

	msg.SetHeader("Subject", email.Subject)

	// Clients render the last alternative they support, so HTML goes after plain text.
	switch {
	case email.HTMLBody != "" && email.Body != "":
		msg.SetBody("text/plain", email.Body)
		msg.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		msg.SetBody("text/html", email.HTMLBody)
	default:
		msg.SetBody("text/plain", email.Body)
	}

	return msg
}

// Config holds SMTP configuration for sending emails.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// NewConfig creates a Config instance from environment variables.
func NewConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mailer environment variables: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the Mailer configuration is valid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}
