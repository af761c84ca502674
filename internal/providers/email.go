package providers

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"surfalert-service/internal/config"
	"surfalert-service/internal/logging"
)

// SMTPNotifier delivers alert emails through an SMTP relay.
type SMTPNotifier struct {
	cfg      config.Email
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier validates cfg and returns a notifier.
func NewSMTPNotifier(cfg config.Email) (*SMTPNotifier, error) {
	if cfg.SMTPServer == "" || cfg.SMTPPort == 0 || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("missing Email configuration: SMTPServer, SMTPPort, Username, or Password is empty")
	}
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}, nil
}

// Send delivers one plain-text email.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.Contains(to, "@") {
		return fmt.Errorf("invalid email address: %s", to)
	}

	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPServer)
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPServer, n.cfg.SMTPPort)
	if err := n.sendMail(addr, auth, n.cfg.FromAddress, []string{to}, n.message(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (n *SMTPNotifier) message(to, subject, body string) []byte {
	from := n.cfg.FromAddress
	if n.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", n.cfg.FromName), n.cfg.FromAddress)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogNotifier only logs alerts. It is used when SMTP is not configured.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, body string) error {
	n.logger.WithFields(map[string]interface{}{"email": to, "subject": subject}).Infof("Alert (email disabled):\n%s", body)
	return nil
}
