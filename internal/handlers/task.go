package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanzaki/taskproof/internal/constants"
	"github.com/kanzaki/taskproof/internal/dto"
	apierrors "github.com/kanzaki/taskproof/internal/errors"
	"github.com/kanzaki/taskproof/internal/middleware"
	"github.com/kanzaki/taskproof/internal/models"
	"github.com/kanzaki/taskproof/internal/services"
	"github.com/kanzaki/taskproof/internal/storage"
)

// TaskHandler coordinates task lifecycle HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new pending task assigned to a validator.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
		Assignee    string `json:"assignee" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "due_date must be RFC3339 or YYYY-MM-DD")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Creator:     username,
		Assignee:    req.Assignee,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListCreated returns the caller's pending tasks. A creator query param
// overrides the subject, matching the source's permissive read surface.
func (h *TaskHandler) ListCreated(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if override := c.Query("creator"); override != "" {
		username = override
	}

	tasks, err := h.taskService.ListCreated(username)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListAssigned returns pending tasks awaiting the caller's validation.
func (h *TaskHandler) ListAssigned(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.ListAssigned(username)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// UpdateTask overwrites task fields. Creator-only.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
		Assignee    *string `json:"assignee"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "due_date must be RFC3339 or YYYY-MM-DD")
			return
		}
		input.DueDate = dueDate
	}

	task, err := h.taskService.UpdateTask(taskID, username, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task. Creator-only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, username); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SubmitProof stores the uploaded proof image and records its reference.
func (h *TaskHandler) SubmitProof(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(constants.ProofFormField)
	if err != nil {
		apierrors.BadRequest(c, "A 'proof' file field is required")
		return
	}

	file, ok := openImageUpload(c, fileHeader)
	if !ok {
		return
	}
	defer file.Close()

	task, err := h.taskService.SubmitProof(taskID, fileHeader.Filename, file)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proof_ref": task.ProofRef})
}

// FetchProof streams the proof artifact when the sink can resolve it,
// else returns the bare reference.
func (h *TaskHandler) FetchProof(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	ref, err := h.taskService.FetchProof(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	content, err := h.taskService.OpenProof(ref)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"proof_ref": ref})
			return
		}
		apierrors.InternalError(c, "Failed to open proof artifact")
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", "inline")
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", content, nil)
}

// Validate applies an approval decision to a task.
func (h *TaskHandler) Validate(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	type ValidateRequest struct {
		Decision string `json:"decision" binding:"required"`
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.taskService.Validate(services.ValidateInput{
		TaskID:   taskID,
		Decision: models.ValidationDecision(req.Decision),
		Approver: username,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ValidationResultDTO{
		Task:       dto.ToTaskDTO(*result.Task),
		ScoreDelta: result.ScoreDelta,
		NewScore:   result.NewScore,
	})
}

func taskIDParam(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return 0, false
	}
	return taskID, true
}

// parseDueDate accepts RFC3339 timestamps or bare dates. A bare date
// means end of that day UTC, so approval on the due date still counts
// as on time.
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	endOfDay := t.Add(24*time.Hour - time.Second)
	return &endOfDay, nil
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProofNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrAssigneeRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrAlreadyApproved):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrNotTaskCreator):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUploadFailed):
		apierrors.OperationFailed(c, "Failed to store proof upload")
	case errors.Is(err, services.ErrValidationWrite):
		apierrors.PartialFailure(c, "Validation was not recorded; retry the request")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
