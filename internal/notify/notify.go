package notify

import (
	"github.com/kanzaki/taskproof/internal/models"
)

// Notifier delivers best-effort messages about task activity. Calls are
// made after the triggering state change is committed; a returned error
// is logged by the caller and never rolls anything back.
type Notifier interface {
	// ProofSubmitted tells the assignee that proof is awaiting validation.
	ProofSubmitted(task *models.Task, recipient string) error

	// TaskValidated tells the creator the outcome of a validation,
	// including who decided and the creator's new score.
	TaskValidated(task *models.Task, recipient string, decision models.ValidationDecision, approver string, newScore int) error
}
