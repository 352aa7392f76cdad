package services

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kanzaki/taskproof/internal/constants"
	"github.com/kanzaki/taskproof/internal/models"
	"github.com/kanzaki/taskproof/internal/notify"
	"github.com/kanzaki/taskproof/internal/repository"
	"github.com/kanzaki/taskproof/internal/storage"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrProofNotFound    = errors.New("no proof has been submitted for this task")
	ErrTitleRequired    = errors.New("title is required")
	ErrAssigneeRequired = errors.New("assignee is required")
	ErrNotTaskCreator   = errors.New("only the task creator can perform this action")
	ErrInvalidDecision  = errors.New("decision must be Approved or Rejected")
	ErrAlreadyApproved  = errors.New("task has already been approved")
	ErrUploadFailed     = errors.New("failed to store proof upload")
	ErrValidationWrite  = errors.New("validation did not commit")
)

// TaskService owns the task lifecycle: creation, proof submission, and
// the validation state machine that adjusts the creator's score.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	sink     storage.ArtifactSink
	notifier notify.Notifier
	logger   *zap.Logger

	// now is swappable so due-date scoring can be tested at fixed times.
	now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, sink storage.ArtifactSink, notifier notify.Notifier, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		sink:     sink,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Creator     string
	Assignee    string
}

// CreateTask inserts a new Pending task. The assignee is not checked
// against registered users: a task may reference a user who signs up
// later, and an unresolvable assignee only costs the notification.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Assignee == "" {
		return nil, ErrAssigneeRequired
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Creator:     input.Creator,
		Assignee:    input.Assignee,
		Status:      models.TaskStatusPending,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListCreated returns pending tasks created by the user.
func (s *TaskService) ListCreated(username string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListPending(repository.TaskFilter{Creator: username})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListAssigned returns pending tasks awaiting the user's validation.
func (s *TaskService) ListAssigned(username string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListPending(repository.TaskFilter{Assignee: username})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// SubmitProof stores the uploaded artifact and records its reference on
// the task. Status does not change: Pending tasks stay Pending until an
// approver validates.
func (s *TaskService) SubmitProof(taskID uint64, filename string, content io.Reader) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	ref, err := s.sink.Put(filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	task.ProofRef = ref
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to record proof reference: %w", err)
	}

	s.notifyAssignee(task)

	return task, nil
}

// FetchProof returns the stored proof reference for a task.
func (s *TaskService) FetchProof(taskID uint64) (string, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return "", err
	}

	if task.ProofRef == "" {
		return "", ErrProofNotFound
	}
	return task.ProofRef, nil
}

// OpenProof streams the stored proof artifact when the sink can resolve
// the reference.
func (s *TaskService) OpenProof(ref string) (io.ReadCloser, error) {
	return s.sink.Open(ref)
}

// ValidateInput represents a validation decision on a task.
type ValidateInput struct {
	TaskID   uint64
	Decision models.ValidationDecision
	Approver string
}

// ValidateResult reports the committed outcome of a validation.
type ValidateResult struct {
	Task       *models.Task
	ScoreDelta int
	NewScore   int
}

// Validate runs the lifecycle state machine.
//
// Approved is terminal: status becomes Approved and the creator gains 10
// points when validated on or before the due date, 5 after it. Rejected
// is transient: the stored status folds back to Pending so the creator
// can resubmit, and 3 points are deducted, with no floor. Rejection is
// deliberately not idempotent; every rejection call deducts again.
//
// The status write and the score write commit in one transaction. After
// commit, the creator is notified if they registered an email; a
// notification failure is logged and never undoes the transition.
func (s *TaskService) Validate(input ValidateInput) (*ValidateResult, error) {
	if !input.Decision.Valid() {
		return nil, ErrInvalidDecision
	}

	task, err := s.findTask(input.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskStatusApproved {
		return nil, ErrAlreadyApproved
	}

	creator, err := s.userRepo.FindByUsername(task.Creator)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Weak reference: the creator never registered, so there is
			// no score to adjust and nobody to notify.
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task creator: %w", err)
	}

	var scoreDelta int
	if input.Decision == models.DecisionApproved {
		task.Status = models.TaskStatusApproved
		scoreDelta = constants.ScoreApprovedOnTime
		if task.DueDate != nil && s.now().After(*task.DueDate) {
			scoreDelta = constants.ScoreApprovedLate
		}
	} else {
		task.Status = models.TaskStatusPending
		scoreDelta = -constants.ScoreRejectedPenalty
	}

	if err := s.taskRepo.ApplyValidation(task, creator, scoreDelta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationWrite, err)
	}
	creator.Score += scoreDelta

	if creator.Email != "" {
		if err := s.notifier.TaskValidated(task, creator.Email, input.Decision, input.Approver, creator.Score); err != nil {
			s.logger.Warn("validation notification failed",
				zap.Uint64("task_id", task.ID),
				zap.String("recipient", creator.Email),
				zap.Error(err),
			)
		}
	}

	return &ValidateResult{
		Task:       task,
		ScoreDelta: scoreDelta,
		NewScore:   creator.Score,
	}, nil
}

// UpdateTaskInput represents input for updating a task.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Assignee    *string
}

// UpdateTask overwrites task fields. Creator-only.
func (s *TaskService) UpdateTask(taskID uint64, actor string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.Creator != actor {
		return nil, ErrNotTaskCreator
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Assignee != nil {
		if *input.Assignee == "" {
			return nil, ErrAssigneeRequired
		}
		task.Assignee = *input.Assignee
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task. Creator-only. The stored proof artifact, if
// any, is removed best-effort.
func (s *TaskService) DeleteTask(taskID uint64, actor string) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	if task.Creator != actor {
		return ErrNotTaskCreator
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if task.ProofRef != "" {
		if err := s.sink.Remove(task.ProofRef); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to remove proof artifact",
				zap.Uint64("task_id", taskID),
				zap.String("ref", task.ProofRef),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// notifyAssignee tells the validator that proof awaits them. Best
// effort: an assignee without a registered account or email simply gets
// nothing.
func (s *TaskService) notifyAssignee(task *models.Task) {
	assignee, err := s.userRepo.FindByUsername(task.Assignee)
	if err != nil || assignee.Email == "" {
		return
	}

	if err := s.notifier.ProofSubmitted(task, assignee.Email); err != nil {
		s.logger.Warn("proof notification failed",
			zap.Uint64("task_id", task.ID),
			zap.String("recipient", assignee.Email),
			zap.Error(err),
		)
	}
}
