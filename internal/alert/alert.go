// Package alert emails an operator notification on process failure, per
// §6.7. No library in the example corpus provides an SMTP client, so this
// component is built on the standard library's net/smtp (see DESIGN.md).
package alert

import (
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// Failure describes one failed process, enough to render the fixed-format
// alert email body from §6.7.
type Failure struct {
	ApplicationName string
	BatchName       string
	BatchNumber     string
	User            string
	Host            string
	ProcessName     string
	JobPath         string
	LogPath         string
}

// Mailer sends failure alerts over SMTP.
type Mailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

// NewMailer returns a Mailer with no authentication, suitable for a local
// or relay-trusted SMTP server.
func NewMailer(addr, from string) *Mailer {
	return &Mailer{Addr: addr, From: from}
}

// Send emails recipients (AlertEMailList, comma-separated) the fixed-subject
// failure notice with the process log attached, per §6.7. recipients is
// parsed from the raw AlertEMailList config value.
func (m *Mailer) Send(f Failure, recipients string) error {
	to := splitRecipients(recipients)
	if len(to) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	subject := fmt.Sprintf("[ALERT] %s failed", f.ProcessName)
	body := renderBody(f)

	msg, err := buildMessage(m.From, to, subject, body, f.LogPath)
	if err != nil {
		return fmt.Errorf("failed to build alert email: %w", err)
	}

	if err := smtp.SendMail(m.Addr, m.Auth, m.From, to, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func splitRecipients(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func renderBody(f Failure) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Application: %s\n", f.ApplicationName)
	fmt.Fprintf(&sb, "Batch: %s (%s)\n", f.BatchName, f.BatchNumber)
	fmt.Fprintf(&sb, "User: %s\n", f.User)
	fmt.Fprintf(&sb, "Host: %s\n", f.Host)
	fmt.Fprintf(&sb, "Process: %s\n", f.ProcessName)
	fmt.Fprintf(&sb, "Job path: %s\n", f.JobPath)
	fmt.Fprintf(&sb, "Log path: %s\n", f.LogPath)
	return sb.String()
}

const boundary = "batchctl-alert-boundary"

// buildMessage renders an RFC 2822 message with the process log attached as
// an 8bit text/plain MIME part. The log is attached best-effort: a missing or
// unreadable log still produces an email, just without the attachment.
func buildMessage(from string, to []string, subject, body, logPath string) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(&sb, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&sb, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&sb, "--%s\r\n", boundary)
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")

	if data, err := os.ReadFile(logPath); err == nil {
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		fmt.Fprintf(&sb, "Content-Type: text/plain; name=%q\r\n", filepath.Base(logPath))
		sb.WriteString("Content-Transfer-Encoding: 8bit\r\n")
		fmt.Fprintf(&sb, "Content-Disposition: attachment; filename=%q\r\n\r\n", filepath.Base(logPath))
		sb.Write(data)
		sb.WriteString("\r\n")
	}

	fmt.Fprintf(&sb, "--%s--\r\n", boundary)
	return []byte(sb.String()), nil
}
