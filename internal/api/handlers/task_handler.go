package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/St1cky1/taskboard/internal/api/middleware"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	taskService *usecase.TaskService
	log         logrus.FieldLogger
}

func NewTaskHandler(taskService *usecase.TaskService, log logrus.FieldLogger) *TaskHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req entity.TaskDraft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { // распарсиваем тело в черновик
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req entity.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// журнал изменений задачи, доступен только владельцу
func (h *TaskHandler) TaskAudit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	audits, err := h.taskService.TaskAudit(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, audits)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")

	tasks, err := h.taskService.ListTasks(r.Context(), userID, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func (h *TaskHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *entity.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest) // 400
	case errors.Is(err, entity.ErrNoFieldsToUpdate):
		http.Error(w, "no fields to update", http.StatusBadRequest)
	case errors.Is(err, entity.ErrInvalidTaskData):
		http.Error(w, "invalid task data", http.StatusBadRequest)
	case errors.Is(err, entity.ErrTaskNotFound):
		w.Header().Set(entity.TaskNotFoundHeader, "true")
		http.Error(w, "task not found", http.StatusNotFound) // 404
	case errors.Is(err, entity.ErrForbidden):
		http.Error(w, "access denied", http.StatusForbidden) // 403
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("ошибка обработки запроса")
		http.Error(w, "internal server error", http.StatusInternalServerError) // 500
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
