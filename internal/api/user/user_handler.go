package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-user-management/internal/api"
	"github.com/FACorreiaa/go-user-management/internal/api/auth"
	"github.com/FACorreiaa/go-user-management/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateUser(w http.ResponseWriter, r *http.Request)
	GetCurrentUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	if userService == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil user service!")
	}
	if logger == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser godoc
// @Summary      Create User
// @Description  Creates a new user record. Only callers whose claim carries the admin role may create users.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        user body CreateUserRequest true "User Creation Parameters"
// @Success      201 {object} types.UserResponse "User Created"
// @Failure      400 {object} types.MessageResponse "Missing Fields or Duplicate Email"
// @Failure      403 {object} types.MessageResponse "Caller Is Not Admin"
// @Failure      500 {object} types.MessageResponse "Internal Server Error"
// @Router       /users/create [post]
func (h *HandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateUser"))

	payload, ok := auth.GetUserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "Identity claim not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	// The authorization check runs before body validation, so a non-admin
	// caller always gets 403 regardless of body contents.
	if payload.Role != types.RoleAdmin {
		l.WarnContext(ctx, "Non-admin attempted to create user", slog.String("role", string(payload.Role)))
		api.ErrorResponse(w, r, http.StatusForbidden, "Only admins can create new users")
		return
	}

	var req CreateUserRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "All fields are required")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		l.WarnContext(ctx, "Missing required fields")
		api.ErrorResponse(w, r, http.StatusBadRequest, "All fields are required")
		return
	}

	if !req.Role.IsValid() {
		l.WarnContext(ctx, "Unknown role", slog.String("role", string(req.Role)))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid role")
		return
	}

	newUser, err := h.userService.CreateUser(ctx, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "User already exists")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, types.UserResponse{User: newUser})
}

// GetCurrentUser godoc
// @Summary      Get Current User
// @Description  Retrieves the record matching the caller's claimed id.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.UserResponse "User Record"
// @Failure      401 {object} types.MessageResponse "Unauthorized"
// @Failure      404 {object} types.MessageResponse "User Not Found"
// @Failure      500 {object} types.MessageResponse "Internal Server Error"
// @Router       /users/me [get]
func (h *HandlerImpl) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetCurrentUser"))

	payload, ok := auth.GetUserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "Identity claim not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	u, err := h.userService.GetUserByID(ctx, payload.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "User not found", slog.Int("userID", payload.ID))
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		} else {
			l.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.UserResponse{User: u})
}

// UpdateUser godoc
// @Summary      Update User
// @Description  Updates the caller's own username and/or email. Empty or absent fields are left unchanged.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        user body UpdateUserRequest true "User Update Parameters"
// @Success      200 {object} types.UserResponse "Updated User Record"
// @Failure      401 {object} types.MessageResponse "Unauthorized"
// @Failure      404 {object} types.MessageResponse "User Not Found"
// @Router       /users/update [put]
func (h *HandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateUser"))

	payload, ok := auth.GetUserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "Identity claim not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User ID is missing")
		return
	}

	// Record ids are always positive, so a zero id means the claim carried none.
	if payload.ID <= 0 {
		l.WarnContext(ctx, "Identity claim carries no user id")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User ID is missing")
		return
	}

	var req UpdateUserRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	u, err := h.userService.UpdateUser(ctx, payload.ID, types.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "User not found", slog.Int("userID", payload.ID))
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		} else {
			l.ErrorContext(ctx, "Failed to update user", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.UserResponse{User: u})
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Deletes the record matching the caller's claimed id.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.MessageResponse "User Deleted"
// @Failure      401 {object} types.MessageResponse "Unauthorized"
// @Failure      404 {object} types.MessageResponse "User Not Found"
// @Failure      500 {object} types.MessageResponse "Internal Server Error"
// @Router       /users/delete [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteUser"))

	payload, ok := auth.GetUserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "Identity claim not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User ID is missing")
		return
	}

	// Record ids are always positive, so a zero id means the claim carried none.
	if payload.ID <= 0 {
		l.WarnContext(ctx, "Identity claim carries no user id")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User ID is missing")
		return
	}

	if err := h.userService.DeleteUser(ctx, payload.ID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "User not found", slog.Int("userID", payload.ID))
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		} else {
			l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.MessageResponse{Message: "User deleted successfully"})
}
