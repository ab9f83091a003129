package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/service"
)

// TaskHandler handles task CRUD requests.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Order:       req.Order,
	}
	if req.Deadline != nil && *req.Deadline != "" {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		input.Deadline = &deadline
	}
	if req.OwnerID != nil && *req.OwnerID != "" {
		owner, err := parseOwnerID(*req.OwnerID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		input.OwnerID = &owner
	}

	task, err := h.taskService.CreateTask(r.Context(), input, claims.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// ListTasks handles GET /tasks?page&limit&status&priority.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, err := parseQueryInt(r, "page")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := parseQueryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q := r.URL.Query()
	filter := service.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	}

	result, err := h.taskService.ListTasks(r.Context(), filter, page, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// UpdateTask handles PUT /tasks/{id}. Only keys present in the body change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Order:       req.Order,
	}
	if req.Deadline.Set {
		if !req.Deadline.Valid || req.Deadline.Value == "" {
			patch.ClearDeadline = true
		} else {
			deadline, err := parseDeadline(req.Deadline.Value)
			if err != nil {
				HandleAPIError(w, r, err, "")
				return
			}
			patch.Deadline = &deadline
		}
	}
	if req.OwnerID.Set {
		if !req.OwnerID.Valid || req.OwnerID.Value == "" {
			patch.ClearOwner = true
		} else {
			var owner uuid.UUID
			if owner, err = parseOwnerID(req.OwnerID.Value); err != nil {
				HandleAPIError(w, r, err, "")
				return
			}
			patch.OwnerID = &owner
		}
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), claims, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
