package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/shared"
)

// Handler wires HTTP endpoints for registration, login and the
// admin-facing user management routes.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSON(w, http.StatusBadRequest, validationErrors(err))
		return
	}

	user, err := h.service.Register(r.Context(), req.Fullname, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			shared.JSONError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.Error("register user", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.logger.Info("user registered", slog.Int64("user_id", user.ID))
	shared.JSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    toUserResponse(user),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSON(w, http.StatusBadRequest, validationErrors(err))
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			shared.JSONError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	shared.JSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserResponse(user)})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	shared.JSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get user", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.JSON(w, http.StatusBadRequest, validationErrors(err))
		return
	}

	actor := PrincipalFromContext(r.Context())
	user, err := h.service.UpdateUser(r.Context(), actorID(actor), id, req)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			shared.JSONError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrEmailTaken):
			shared.JSONError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, ErrMalformedClaims):
			shared.JSONError(w, http.StatusBadRequest, "Unknown role")
		default:
			h.logger.Error("update user", slog.Any("error", err), slog.Int64("id", id))
			shared.JSONError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    toUserResponse(user),
	})
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.JSONError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	actor := PrincipalFromContext(r.Context())
	if err := h.service.DeactivateUser(r.Context(), actorID(actor), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.JSONError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("deactivate user", slog.Any("error", err), slog.Int64("id", id))
		shared.JSONError(w, http.StatusInternalServerError, "Failed to deactivate user")
		return
	}
	shared.JSONMessage(w, http.StatusOK, "User deactivated successfully")
}

func actorID(p *Principal) int64 {
	if p == nil {
		return 0
	}
	return p.UserID
}

func validationErrors(err error) map[string]any {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return map[string]any{"error": "Validation failed", "fields": fields}
}
