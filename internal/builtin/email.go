package builtin

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tombee/cascade/internal/operation"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail() operation.Definition {
	return operation.Definition{
		Name:        "validate_email",
		Description: "Validate if an email address is properly formatted",
		Inputs:      map[string]string{"email": "address to check"},
		Outputs: map[string]string{
			"is_valid": "whether the address is well formed",
			"email":    "the checked address",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			email, err := stringInput(inputs, "email")
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"is_valid": emailPattern.MatchString(email),
				"email":    email,
			}, nil
		},
	}
}

// Message is an outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages for the send_email operation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SMTPMailer delivers over SMTP with STARTTLS via PLAIN auth.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer returns a mailer for the given server.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return fmt.Errorf("email credentials not configured")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	raw := strings.Join([]string{
		"From: " + m.cfg.Username,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"",
		msg.Body,
	}, "\r\n")
	return smtp.SendMail(addr, auth, m.cfg.Username, []string{msg.To}, []byte(raw))
}

// LogMailer logs messages instead of delivering them. Used when no SMTP
// server is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mock email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)))
	return nil
}

// RecordingMailer captures messages for tests.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (m *RecordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

func sendEmail(cfg Config) operation.Definition {
	mailer := cfg.mailer()
	return operation.Definition{
		Name:        "send_email",
		Description: "Send an email with given content to a recipient",
		Inputs: map[string]string{
			"content":   "report body; structured values are rendered as text",
			"recipient": "destination address",
			"subject":   "subject line",
		},
		Outputs: map[string]string{
			"status":    "delivery status",
			"recipient": "destination address",
			"subject":   "subject line",
		},
		Run: func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
			recipient, err := stringInput(inputs, "recipient")
			if err != nil {
				return nil, err
			}
			subject, err := stringInput(inputs, "subject")
			if err != nil {
				return nil, err
			}
			if subject == "" {
				subject = "Automated Report"
			}

			body := fmt.Sprintf("Hello,\n\nHere is your automated report:\n\n%s\n\n--\nThis email was sent automatically by Cascade.\n",
				formatContent(inputs["content"]))

			// Delivery problems are reported through the status output, not
			// as a step failure.
			status := "Email sent successfully"
			if err := mailer.Send(ctx, Message{To: recipient, Subject: subject, Body: body}); err != nil {
				status = fmt.Sprintf("Error: failed to send email: %v", err)
			}
			return map[string]any{
				"status":    status,
				"recipient": recipient,
				"subject":   subject,
			}, nil
		},
	}
}

// formatContent renders an arbitrary resolved value as readable plain text.
func formatContent(value any) string {
	return formatValue(value, 0)
}

func formatValue(value any, indent int) string {
	spaces := strings.Repeat("  ", indent)
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("{\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s  %s: %s\n", spaces, k, formatValue(v[k], indent+1))
		}
		b.WriteString(spaces + "}")
		return b.String()
	case []any:
		if len(v) == 0 {
			return "[]"
		}
		var b strings.Builder
		b.WriteString("[\n")
		for _, item := range v {
			fmt.Fprintf(&b, "%s  %s\n", spaces, formatValue(item, indent+1))
		}
		b.WriteString(spaces + "]")
		return b.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
