package repository

import (
	"errors"
	"fmt"

	"github.com/kanzaki/taskproof/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrWriteStatus is returned when persisting the task's new status fails
	// inside the validation transaction.
	ErrWriteStatus = errors.New("task repository: write status failed")
	// ErrWriteScore is returned when persisting the creator's new score fails
	// inside the validation transaction.
	ErrWriteScore = errors.New("task repository: write score failed")
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListPending retrieves pending tasks matching the filter, insertion order
func (r *GormTaskRepository) ListPending(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("status = ?", models.TaskStatusPending)

	if filter.Creator != "" {
		query = query.Where("creator = ?", filter.Creator)
	}
	if filter.Assignee != "" {
		query = query.Where("assignee = ?", filter.Assignee)
	}

	if err := query.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update saves all fields of a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// ApplyValidation persists a validation outcome atomically: the task's
// status and the creator's adjusted score commit together or not at all.
func (r *GormTaskRepository) ApplyValidation(task *models.Task, creator *models.User, scoreDelta int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrWriteStatus, err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", creator.ID).
			Update("score", gorm.Expr("score + ?", scoreDelta)).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrWriteScore, err)
		}

		return nil
	})
}
