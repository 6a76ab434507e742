package mailer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"}
	assert.NoError(t, valid.Validate())

	missingHost := valid
	missingHost.Host = ""
	assert.EqualError(t, missingHost.Validate(), "missing SMTP_HOST environment variable")

	missingFrom := valid
	missingFrom.From = ""
	assert.EqualError(t, missingFrom.Validate(), "missing SMTP_FROM environment variable")
}

func TestRenderActivation(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)

	html, err := templates.Render(TemplateActivation, map[string]any{
		"Name":           "Ada <script>",
		"ActivationCode": "4821",
		"ExpiresIn":      "5m0s",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "4821")
	assert.Contains(t, html, "Ada &lt;script&gt;")
	assert.Contains(t, html, "5m0s")
}

func TestRenderUnknownTemplate(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)

	_, err = templates.Render("missing.html", nil)
	assert.Error(t, err)
}

func newTestMailer(t *testing.T) *Mailer {
	t.Helper()

	logger := zerolog.Nop()
	m, err := NewMailer(Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "u",
		Password: "p",
		From:     "noreply@example.com",
	}, &logger)
	require.NoError(t, err)

	return m
}

func TestNewMessage(t *testing.T) {
	m := newTestMailer(t)

	msg := m.newMessage([]string{"ada@example.com"}, "Activate your account", "<p>4821</p>")

	assert.Equal(t, []string{"noreply@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Activate your account"}, msg.GetHeader("Subject"))
}

func TestSendTemplate_NoRecipients(t *testing.T) {
	m := newTestMailer(t)

	err := m.SendTemplate(TemplateEmail{Subject: "x", Template: TemplateActivation})
	assert.EqualError(t, err, "no recipients specified")
}

func TestSendTemplate_UnknownTemplate(t *testing.T) {
	m := newTestMailer(t)

	err := m.SendTemplate(TemplateEmail{To: []string{"ada@example.com"}, Template: "missing.html"})
	assert.ErrorContains(t, err, "missing.html")
}
