package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/itnnovator/annota-backend/config"
)

// Mailer sends approval mails over SMTP. With no host configured it reports
// itself disabled and the approval flow falls back to dev mode.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

func (m *Mailer) SendApproval(ctx context.Context, to, projectName, approvalURL, pin string) error {
	msg, err := m.buildApproval(to, projectName, approvalURL, pin)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// buildApproval assembles the multipart message: plain text body with an
// HTML alternative, so the plain part survives for text-only clients.
func (m *Mailer) buildApproval(to, projectName, approvalURL, pin string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("Approval requested: %s", projectName))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"You have been asked to approve the project %q.\n\n"+
			"Open the approval page:\n%s\n\n"+
			"Your confirmation PIN: %s\n\n"+
			"The link and PIN expire in 24 hours. If a new approval request is "+
			"sent, this one stops working.\n",
		projectName, approvalURL, pin))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(
		`<p>You have been asked to approve the project <strong>%s</strong>.</p>
<p><a href="%s">Open the approval page</a></p>
<p>Your confirmation PIN: <strong>%s</strong></p>
<p>The link and PIN expire in 24 hours. If a new approval request is sent, this one stops working.</p>`,
		projectName, approvalURL, pin))
	return msg, nil
}
