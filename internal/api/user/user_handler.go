package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ UserHandler = (*UserHandlerImpl)(nil)

type UserHandler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ChangeUsername(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

func NewUserHandlerImpl(userService UserService, logger *slog.Logger) *UserHandlerImpl {
	return &UserHandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile godoc
// @Summary      Get Profile
// @Description  Returns the caller's public profile.
// @Tags         User
// @Produce      json
// @Success      200 {object} api.Response{data=types.UserProfile} "Profile"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Profile not found"
// @Security     BearerAuth
// @Router       /user/profile [get]
func (h *UserHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.userService.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile godoc
// @Summary      Update Profile
// @Description  Partially updates the caller's profile. Omitted fields are left untouched.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body body types.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} api.Response{data=types.UserProfile} "Updated profile"
// @Failure      400 {object} api.Response "Invalid input"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /user/profile [put]
func (h *UserHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.UpdateProfileRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(ctx, userID, req)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Profile updated", profile)
}

// ChangeUsername godoc
// @Summary      Change Username
// @Description  Renames the profile. Each account may do this exactly once.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body body types.ChangeUsernameRequest true "New username"
// @Success      200 {object} api.Response{data=types.UserProfile} "Updated profile"
// @Failure      400 {object} api.Response "Invalid username"
// @Failure      403 {object} api.Response "Username already changed once"
// @Failure      409 {object} api.Response "Username taken"
// @Security     BearerAuth
// @Router       /user/username [put]
func (h *UserHandlerImpl) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ChangeUsername"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.ChangeUsernameRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.userService.ChangeUsername(ctx, userID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid username")
		case errors.Is(err, types.ErrForbidden):
			api.ErrorResponse(w, r, http.StatusForbidden, "Username can only be changed once")
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Username already taken")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Profile not found")
		default:
			l.ErrorContext(ctx, "Failed to change username", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to change username")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Username updated", profile)
}
