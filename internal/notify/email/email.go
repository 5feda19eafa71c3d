package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends emails to members.
type NotificationService struct {
	config *config.EmailConfig
	tmpl   *template.Template
}

// TipNotification contains the data of a "new tip" email.
type TipNotification struct {
	UserEmail     string
	UserName      string
	Date          string
	League        string
	Match         string
	MatchTime     string
	MemberMessage string
	DashboardURL  string
}

//go:embed templates/*.html
var templatesFS embed.FS

// New creates a new email notification service.
func New(cfg *config.EmailConfig) (*NotificationService, error) {
	if cfg == nil {
		cfg = &config.EmailConfig{}
	}
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &NotificationService{config: cfg, tmpl: t}, nil
}

// Enabled reports whether emails are sent at all.
func (n *NotificationService) Enabled() bool {
	return n.config.Enabled
}

// SendTipPublished tells a licensed member that today's tip is available.
// The tip content itself stays behind the login.
func (n *NotificationService) SendTipPublished(notification TipNotification) error {
	if !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping notification")
		return nil
	}

	if notification.UserEmail == "" {
		log.Warn("User email is empty, skipping notification", "user", notification.UserName)
		return nil
	}

	subject := fmt.Sprintf("[foxtip] Your tip for %s is ready", notification.Date)

	body, err := n.generateEmailBody(notification)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(notification.UserEmail, subject, body)
}

func (n *NotificationService) generateEmailBody(notification TipNotification) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&buf, "tip_published.html", notification); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	switch {
	case n.config.UseSSL:
		server.Encryption = mail.EncryptionSSLTLS
	case n.config.UseTLS:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "foxtip"
	}

	email := mail.NewMSG()
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email notification sent successfully", "to", to, "subject", subject)
	return nil
}
