package dto

import (
	"time"

	"github.com/kanzaki/taskproof/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
	Creator     string            `json:"creator"`
	Assignee    string            `json:"assignee"`
	Status      models.TaskStatus `json:"status"`
	ProofRef    string            `json:"proof_ref,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ValidationResultDTO confirms a committed validation outcome
type ValidationResultDTO struct {
	Task       TaskDTO `json:"task"`
	ScoreDelta int     `json:"score_delta"`
	NewScore   int     `json:"new_score"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Creator:     task.Creator,
		Assignee:    task.Assignee,
		Status:      task.Status,
		ProofRef:    task.ProofRef,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks to DTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
