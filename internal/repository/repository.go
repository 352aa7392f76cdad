package repository

import (
	"github.com/kanzaki/taskproof/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// ListPending retrieves pending tasks matching the filter
	ListPending(filter TaskFilter) ([]models.Task, error)

	// Update saves all fields of a task
	Update(task *models.Task) error

	// Delete removes a task
	Delete(id uint64) error

	// ApplyValidation writes the task's new status and the creator's new
	// score inside a single transaction, so a validation outcome is
	// either fully recorded or not at all.
	ApplyValidation(task *models.Task, creator *models.User, scoreDelta int) error
}

// TaskFilter holds filtering options for listing pending tasks. Exactly
// one of Creator/Assignee is expected to be set.
type TaskFilter struct {
	Creator  string
	Assignee string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// ListByScore lists all users ordered by score descending
	ListByScore() ([]models.User, error)
}
