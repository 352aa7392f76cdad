package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "Pending"
	TaskStatusApproved TaskStatus = "Approved"
)

// ValidationDecision is the outcome an approver hands in. Rejected is
// never stored on a task: a rejected task folds back to Pending so the
// creator can resubmit proof.
type ValidationDecision string

const (
	DecisionApproved ValidationDecision = "Approved"
	DecisionRejected ValidationDecision = "Rejected"
)

func (d ValidationDecision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Creator     string     `gorm:"type:varchar(50);index;not null" json:"creator"`
	Assignee    string     `gorm:"type:varchar(50);index;not null" json:"assignee"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	ProofRef    string     `gorm:"type:varchar(512)" json:"proof_ref,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
