package notify

import (
	"go.uber.org/zap"

	"github.com/kanzaki/taskproof/internal/models"
)

// LogNotifier records notifications instead of delivering them. Wired
// when no SMTP relay is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ProofSubmitted(task *models.Task, recipient string) error {
	n.logger.Info("notification skipped: proof submitted",
		zap.Uint64("task_id", task.ID),
		zap.String("recipient", recipient),
	)
	return nil
}

func (n *LogNotifier) TaskValidated(task *models.Task, recipient string, decision models.ValidationDecision, approver string, newScore int) error {
	n.logger.Info("notification skipped: task validated",
		zap.Uint64("task_id", task.ID),
		zap.String("recipient", recipient),
		zap.String("decision", string(decision)),
		zap.String("approver", approver),
		zap.Int("new_score", newScore),
	)
	return nil
}
