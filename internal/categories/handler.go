package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/shared"
)

// Handler wires HTTP endpoints for category management.
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
	var req CreateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	category, err := h.service.Create(r.Context(), principal.UserID, req)
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			shared.JSONError(w, http.StatusConflict, "Category name already in use")
			return
		}
		h.logger.Error("create category", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	shared.JSON(w, http.StatusCreated, map[string]any{"category": category})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	if list == nil {
		list = []Category{}
	}
	shared.JSON(w, http.StatusOK, map[string]any{"categories": list})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}
	category, err := h.service.Get(r.Context(), principal.UserID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("get category", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load category")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"category": category})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}
	var req UpdateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	category, err := h.service.Update(r.Context(), principal.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			shared.JSONError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, ErrNameTaken):
			shared.JSONError(w, http.StatusConflict, "Category name already in use")
		default:
			h.logger.Error("update category", slog.Any("error", err), slog.Int64("id", id))
			shared.JSONError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"category": category})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}
	if err := h.service.Delete(r.Context(), principal.UserID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("delete category", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	shared.JSONMessage(w, http.StatusOK, "Category deleted successfully")
}
