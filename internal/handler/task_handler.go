package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskhub/internal/metrics"
	"taskhub/internal/middleware"
	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskRepo repository.TaskRepositoryInterface
	log      *zap.Logger
}

func NewTaskHandler(taskRepo repository.TaskRepositoryInterface, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
		log:      log,
	}
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// OptionalString is a tri-state JSON string field: absent, explicit
// null, or a value. A plain *string cannot tell null from absent, so
// clearing a field with null would silently become "leave unchanged".
type OptionalString struct {
	Present bool
	Null    bool
	Value   string
}

// UnmarshalJSON is only invoked for fields present in the body, so
// Present is false exactly when the field was omitted.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateTaskRequest carries a partial update. A nil (or absent) field
// leaves the stored value unchanged. For DueDate, explicit null and
// the empty string both clear the stored due date; a non-empty value
// sets it.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Completed   *bool          `json:"completed"`
	Priority    *string        `json:"priority"`
	DueDate     OptionalString `json:"dueDate"`
}

type TaskResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate,omitempty"`
	UserID      string  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func newTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		UserID:      task.UserID.String(),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		dueDate := task.DueDate.Format(time.RFC3339)
		resp.DueDate = &dueDate
	}
	return resp
}

// ownerFromContext returns the authenticated caller's ID, set by the
// auth middleware. Handlers must not be reachable without it.
func ownerFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}

	ownerID, ok := raw.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, false
	}

	return ownerID, true
}

func taskIDFromPath(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return uint(id), true
}

// parseDueDate converts a client-supplied due date to UTC. RFC3339 is
// the canonical form; a bare date is accepted for convenience.
func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// List returns all of the caller's tasks, newest first
// @Summary      List tasks
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]TaskResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.log.Error("list tasks failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = newTaskResponse(&tasks[i])
	}

	c.JSON(http.StatusOK, gin.H{"tasks": resp})
}

// Create creates a new task owned by the caller
// @Summary      Create task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        task  body      CreateTaskRequest  true  "Task fields"
// @Success      201   {object}  map[string]TaskResponse
// @Failure      400   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title == "" || req.Priority == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and priority are required"})
		return
	}

	priority := model.Priority(req.Priority)
	if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be low, medium, or high"})
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		Priority:    priority,
		UserID:      ownerID,
	}

	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date"})
			return
		}
		task.DueDate = &dueDate
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		h.log.Error("create task failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		metrics.RecordTaskMutation("create", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	metrics.RecordTaskMutation("create", "success")
	c.JSON(http.StatusCreated, gin.H{"task": newTaskResponse(task)})
}

// GetByID returns a single task owned by the caller
// @Summary      Get task
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  map[string]TaskResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), ownerID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		h.log.Error("get task failed",
			zap.String("owner_id", ownerID.String()),
			zap.Uint("task_id", taskID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task)})
}

// Update applies a partial update to the caller's task
// @Summary      Update task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task ID"
// @Param        task  body      UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  map[string]TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Priority != nil && !model.Priority(*req.Priority).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be one of: low, medium, high"})
		return
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Completed != nil {
		fields["completed"] = *req.Completed
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.DueDate.Present {
		if req.DueDate.Null || req.DueDate.Value == "" {
			fields["due_date"] = nil
		} else {
			dueDate, err := parseDueDate(req.DueDate.Value)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date"})
				return
			}
			fields["due_date"] = dueDate
		}
	}

	task, err := h.taskRepo.Update(c.Request.Context(), ownerID, taskID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		h.log.Error("update task failed",
			zap.String("owner_id", ownerID.String()),
			zap.Uint("task_id", taskID),
			zap.Error(err))
		metrics.RecordTaskMutation("update", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	metrics.RecordTaskMutation("update", "success")
	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task)})
}

// Delete removes the caller's task. Deleting an id that no longer
// exists still reports success
// @Summary      Delete task
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), ownerID, taskID); err != nil {
		h.log.Error("delete task failed",
			zap.String("owner_id", ownerID.String()),
			zap.Uint("task_id", taskID),
			zap.Error(err))
		metrics.RecordTaskMutation("delete", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	metrics.RecordTaskMutation("delete", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
