// Package mail delivers operator and respondent notifications over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	gomail "github.com/wneessen/go-mail"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Sender is the part of the go-mail client used by the Notifier.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Config describes the SMTP relay and the fixed addresses.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Operator string `yaml:"operator"`
}

// Notifier implements ports.OperatorNotifier and ports.RespondentNotifier.
type Notifier struct {
	sender   Sender
	from     string
	operator string
}

// NewClient builds an SMTP client for cfg.
func NewClient(cfg Config) (*gomail.Client, error) {
	opts := []gomail.Option{gomail.WithTLSPolicy(gomail.TLSOpportunistic)}
	if cfg.Port != 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client, nil
}

// New creates a Notifier that sends through an SMTP client built from cfg.
func New(cfg Config) (*Notifier, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithSender(client, cfg.From, cfg.Operator), nil
}

// NewWithSender creates a Notifier on an existing sender.
func NewWithSender(sender Sender, from, operator string) *Notifier {
	return &Notifier{sender: sender, from: from, operator: operator}
}

var operatorTmpl = template.Must(template.New("operator").Parse(
	`New {{.FlowType}} questionnaire submission.

Name:  {{.Contact.Name}}
Email: {{.Contact.Email}}
Phone: {{.Contact.Phone}}
`))

var respondentTmpl = template.Must(template.New("respondent").Parse(
	`Hi {{.Contact.Name}},

Thanks for completing the questionnaire. Based on your answers we recommend:
{{range .Recommendations}}
* {{.Title}}{{if .IsFeatured}} (top match){{end}}: {{.MatchReason}}{{if .PriceRange}} [{{.PriceRange}}]{{end}}
{{- else}}
* A free discovery call to talk through your goals.
{{- end}}

We'll be in touch shortly.
`))

// NotifyOperator emails the operator address.
func (n *Notifier) NotifyOperator(ctx context.Context, c domain.Contact, flowType string) error {
	body, err := render(operatorTmpl, map[string]any{"Contact": c, "FlowType": flowType})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New %s submission from %s", flowType, c.Name)
	return n.send(ctx, n.operator, subject, body, c.Email)
}

// NotifyRespondent emails the confirmation to the respondent.
func (n *Notifier) NotifyRespondent(ctx context.Context, c domain.Contact, recs []domain.Candidate) error {
	body, err := render(respondentTmpl, map[string]any{"Contact": c, "Recommendations": recs})
	if err != nil {
		return err
	}
	return n.send(ctx, c.Email, "Your personalized recommendations", body, "")
}

func (n *Notifier) send(ctx context.Context, to, subject, body, replyTo string) error {
	m := gomail.NewMsg()
	if err := m.From(n.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", n.from, err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	if replyTo != "" {
		if err := m.ReplyTo(replyTo); err != nil {
			return fmt.Errorf("invalid reply-to %q: %w", replyTo, err)
		}
	}
	m.Subject(subject)
	m.SetBodyString(gomail.TypeTextPlain, body)

	if err := n.sender.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
