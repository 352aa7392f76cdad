package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/kanzaki/taskproof/internal/models"
)

// SMTPNotifier sends notification mail through a configured relay.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPNotifier builds a notifier for the given relay. Auth is only
// used when a username is configured.
func NewSMTPNotifier(host, port, username, password, from string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{
		addr: host + ":" + port,
		auth: auth,
		from: from,
	}
}

func (n *SMTPNotifier) ProofSubmitted(task *models.Task, recipient string) error {
	subject := fmt.Sprintf("Proof submitted for %q", task.Title)
	body := fmt.Sprintf(
		"%s submitted proof for the task %q. It is waiting for your validation.",
		task.Creator, task.Title,
	)
	return n.send(recipient, subject, body)
}

func (n *SMTPNotifier) TaskValidated(task *models.Task, recipient string, decision models.ValidationDecision, approver string, newScore int) error {
	var subject, body string
	if decision == models.DecisionApproved {
		subject = fmt.Sprintf("Task %q approved", task.Title)
		body = fmt.Sprintf(
			"%s approved your task %q. Your score is now %d.",
			approver, task.Title, newScore,
		)
	} else {
		subject = fmt.Sprintf("Task %q rejected", task.Title)
		body = fmt.Sprintf(
			"%s rejected your task %q. It is back to Pending so you can resubmit proof. Your score is now %d.",
			approver, task.Title, newScore,
		)
	}
	return n.send(recipient, subject, body)
}

func (n *SMTPNotifier) send(recipient, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", recipient, err)
	}
	return nil
}
