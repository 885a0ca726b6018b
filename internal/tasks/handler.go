package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/shared"
)

// Handler wires HTTP endpoints for task management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	task, err := h.service.Create(r.Context(), principal.UserID, req)
	if err != nil {
		if errors.Is(err, ErrCategoryNotOwned) {
			shared.JSONError(w, http.StatusBadRequest, "Category not found")
			return
		}
		h.logger.Error("create task", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}
	shared.JSON(w, http.StatusCreated, map[string]any{"task": task})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	resp, err := h.service.List(r.Context(), principal.UserID, page, perPage)
	if err != nil {
		h.logger.Error("list tasks", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}
	shared.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	task, err := h.service.Get(r.Context(), principal.UserID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.logger.Error("get task", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	task, err := h.service.Update(r.Context(), principal.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			shared.JSONError(w, http.StatusNotFound, "Task not found")
		case errors.Is(err, ErrCategoryNotOwned):
			shared.JSONError(w, http.StatusBadRequest, "Category not found")
		default:
			h.logger.Error("update task", slog.Any("error", err), slog.Int64("id", id))
			shared.JSONError(w, http.StatusInternalServerError, "Failed to update task")
		}
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	if err := h.service.Delete(r.Context(), principal.UserID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.logger.Error("delete task", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	shared.JSONMessage(w, http.StatusOK, "Task deleted successfully")
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	task, err := h.service.Toggle(r.Context(), principal.UserID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.logger.Error("toggle task", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to toggle task")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	status := chi.URLParam(r, "status")
	tasks, err := h.service.ListByStatus(r.Context(), principal.UserID, status)
	if err != nil {
		h.logger.Error("list tasks by status", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) ListByPriority(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	tasks, err := h.service.ListByPriority(r.Context(), principal.UserID, chi.URLParam(r, "priority"))
	if err != nil {
		if _, perr := ParsePriority(chi.URLParam(r, "priority")); perr != nil {
			shared.JSONError(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		h.logger.Error("list tasks by priority", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}
	tasks, err := h.service.ListByCategory(r.Context(), principal.UserID, categoryID)
	if err != nil {
		h.logger.Error("list tasks by category", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	h.listSimple(w, r, h.service.ListCompleted)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.listSimple(w, r, h.service.ListPending)
}

func (h *Handler) ListDueToday(w http.ResponseWriter, r *http.Request) {
	h.listSimple(w, r, h.service.ListDueToday)
}

func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	h.listSimple(w, r, h.service.ListOverdue)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("task stats", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (h *Handler) listSimple(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID int64) ([]Task, error)) {
	principal := auth.PrincipalFromContext(r.Context())
	tasks, err := fn(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list tasks", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load tasks")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
