package mailer

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers rendered template emails.
type Sender interface {
	SendTemplate(email TemplateEmail) error
}

// Mailer represents an email sender.
type Mailer struct {
	config    Config
	dialer    *gomail.Dialer
	templates *Templates
	logger    *zerolog.Logger
}

// TemplateEmail is an email whose HTML body is rendered from a named template.
type TemplateEmail struct {
	To       []string
	Subject  string
	Template string
	Data     any
}

// Config holds SMTP configuration for sending emails.
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// Validate checks if the Mailer configuration is valid.
func (c Config) Validate() error {
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

// NewMailer creates a new Mailer instance with the given configuration.
func NewMailer(cfg Config, logger *zerolog.Logger) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	return &Mailer{
		config:    cfg,
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		templates: templates,
		logger:    logger,
	}, nil
}

// SendTemplate renders the named template with the given data and sends it as HTML.
func (m *Mailer) SendTemplate(email TemplateEmail) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	html, err := m.templates.Render(email.Template, email.Data)
	if err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(m.newMessage(email.To, email.Subject, html)); err != nil {
		return fmt.Errorf("send %s mail: %w", email.Template, err)
	}

	m.logger.Debug().Strs("to", email.To).Str("template", email.Template).Msg("email sent")

	return nil
}

func (m *Mailer) newMessage(to []string, subject, html string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return msg
}
