package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ AuthHandler = (*AuthHandlerImpl)(nil)

type AuthHandler interface {
	CreateAccount(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	DeleteAccount(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *AuthHandlerImpl {
	return &AuthHandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// CreateAccount godoc
// @Summary      Create Account
// @Description  Registers a new identity with email and password. A verification code is emailed; the account stays unverified until it is submitted.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.CreateAccountRequest true "Signup parameters"
// @Success      201 {object} api.Response "Account created"
// @Failure      400 {object} api.Response "Invalid input"
// @Failure      409 {object} api.Response "Account already exists"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/create-account [post]
func (h *AuthHandlerImpl) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateAccount"))

	var req types.CreateAccountRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "An account with this email already exists")
			return
		}
		l.ErrorContext(ctx, "Failed to create account", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create account")
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, "Account created. Check your email for a verification code.", map[string]string{
		"email": user.Email,
	})
}

// Login godoc
// @Summary      Log In
// @Description  Authenticates email/password credentials, creates a session and returns a token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} api.Response{data=types.AuthPayload} "Login successful"
// @Failure      400 {object} api.Response "Invalid input"
// @Failure      401 {object} api.Response "Invalid email or password"
// @Failure      403 {object} api.Response "Account not verified"
// @Router       /auth/log-in [post]
func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.authService.Login(ctx, req.Email, req.Password, api.RequestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			// Deliberately generic: no hint whether the email exists.
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, types.ErrForbidden):
			api.ErrorResponse(w, r, http.StatusForbidden, "Account not verified")
		default:
			l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Login successful", payload)
}

// VerifyEmail godoc
// @Summary      Verify Email
// @Description  Submits the emailed OTP. On success the account is verified, a profile is created and a token pair is returned.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.VerifyEmailRequest true "Email and code"
// @Success      200 {object} api.Response{data=types.AuthPayload} "Email verified"
// @Failure      400 {object} api.Response "Invalid or expired verification code"
// @Failure      409 {object} api.Response "Account already verified"
// @Router       /auth/email-verification [post]
func (h *AuthHandlerImpl) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "VerifyEmail"))

	var req types.VerifyEmailRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.authService.VerifyEmail(ctx, req.Email, req.Code, api.RequestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid or expired verification code")
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Account already verified")
		default:
			l.ErrorContext(ctx, "Email verification failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to verify email")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Email verified", payload)
}

// ResendVerification godoc
// @Summary      Resend Verification Code
// @Description  Issues a new verification code. Responds 200 whether or not the account exists.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.ResendVerificationRequest true "Email"
// @Success      200 {object} api.Response "Code sent if the account exists"
// @Failure      400 {object} api.Response "Invalid input"
// @Router       /auth/email-verification/resend [post]
func (h *AuthHandlerImpl) ResendVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ResendVerification"))

	var req types.ResendVerificationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResendVerification(ctx, req.Email); err != nil {
		l.ErrorContext(ctx, "Failed to resend verification", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to resend verification code")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "If the account exists, a verification code has been sent", nil)
}

// ForgotPassword godoc
// @Summary      Forgot Password
// @Description  Starts the password reset flow. Responds 200 whether or not the account exists.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.ForgotPasswordRequest true "Email"
// @Success      200 {object} api.Response "Reset code sent if the account exists"
// @Failure      400 {object} api.Response "Invalid input"
// @Router       /auth/forgot-password [post]
func (h *AuthHandlerImpl) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ForgotPassword"))

	var req types.ForgotPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		l.ErrorContext(ctx, "Failed to start password reset", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process request")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "If the account exists, a password reset code has been sent", nil)
}

// ResetPassword godoc
// @Summary      Reset Password
// @Description  Completes the reset flow with the emailed token. All sessions are revoked on success.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.ResetPasswordRequest true "Reset parameters"
// @Success      200 {object} api.Response "Password updated"
// @Failure      400 {object} api.Response "Invalid or expired reset token"
// @Router       /auth/reset-password [post]
func (h *AuthHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ResetPassword"))

	var req types.ResetPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResetPassword(ctx, req); err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		l.ErrorContext(ctx, "Failed to reset password", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Password updated. Please log in again.", nil)
}

// RefreshToken godoc
// @Summary      Refresh Tokens
// @Description  Exchanges a valid refresh token for a new pair. The x-session-id header must name a non-revoked session.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshTokenRequest true "Refresh token"
// @Param        x-session-id header string true "Session identifier"
// @Success      200 {object} api.Response{data=types.TokenPair} "New token pair"
// @Failure      401 {object} api.Response "Invalid token or revoked session"
// @Router       /auth/refresh-token [post]
func (h *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RefreshToken"))

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Session context missing")
		return
	}

	pair, err := h.authService.Refresh(ctx, req.RefreshToken, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrSessionRevoked):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Session revoked. Please log in again.")
		case errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
		default:
			l.ErrorContext(ctx, "Token refresh failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to refresh tokens")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Tokens refreshed", pair)
}

// Logout godoc
// @Summary      Log Out
// @Description  Revokes the current session. Revocation is terminal; a revoked session cannot be touched back to life.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} api.Response "Session revoked"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	sessionID, ok := GetSessionIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Session context missing")
		return
	}

	if err := h.authService.Logout(ctx, userID, sessionID); err != nil {
		if errors.Is(err, types.ErrSessionRevoked) {
			api.SuccessResponse(w, r, http.StatusOK, "Session already revoked", nil)
			return
		}
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
			return
		}
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Logged out", nil)
}

// DeleteAccount godoc
// @Summary      Delete Account
// @Description  Deletes the identity; the profile and all sessions cascade.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} api.Response "Account deleted"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/account [delete]
func (h *AuthHandlerImpl) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteAccount"))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.DeleteAccount(ctx, userID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Account deletion failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Account deleted", nil)
}
