package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ SessionHandler = (*SessionHandlerImpl)(nil)

type SessionHandler interface {
	ListSessions(w http.ResponseWriter, r *http.Request)
	RevokeAllSessions(w http.ResponseWriter, r *http.Request)
	RevokeSession(w http.ResponseWriter, r *http.Request)
}

type SessionHandlerImpl struct {
	sessionService SessionService
	logger         *slog.Logger
}

func NewSessionHandlerImpl(sessionService SessionService, logger *slog.Logger) *SessionHandlerImpl {
	return &SessionHandlerImpl{
		sessionService: sessionService,
		logger:         logger,
	}
}

// ListSessions godoc
// @Summary      List Sessions
// @Description  Returns the caller's sessions, newest first, including revoked ones.
// @Tags         Sessions
// @Produce      json
// @Success      200 {object} api.Response{data=[]types.Session} "Sessions"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /user/sessions [get]
func (h *SessionHandlerImpl) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListSessions"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	sessions, err := h.sessionService.List(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list sessions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []types.Session{}
	}

	api.SuccessResponse(w, r, http.StatusOK, "Sessions retrieved", sessions)
}

// RevokeAllSessions godoc
// @Summary      Revoke All Sessions
// @Description  Logs the user out everywhere by revoking every one of their sessions, the current one included.
// @Tags         Sessions
// @Produce      json
// @Success      200 {object} api.Response "Sessions revoked"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /user/sessions [delete]
func (h *SessionHandlerImpl) RevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RevokeAllSessions"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.sessionService.RevokeAll(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Failed to revoke sessions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to revoke sessions")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "All sessions revoked. Please log in again.", nil)
}

// RevokeSession godoc
// @Summary      Revoke Session
// @Description  Revokes one of the caller's sessions by its identifier.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID path string true "Session identifier"
// @Success      200 {object} api.Response "Session revoked"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session not found"
// @Security     BearerAuth
// @Router       /user/sessions/{sessionID} [delete]
func (h *SessionHandlerImpl) RevokeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Session identifier required")
		return
	}

	h.revoke(w, r, userID, sessionID)
}

func (h *SessionHandlerImpl) revoke(w http.ResponseWriter, r *http.Request, userID uuid.UUID, sessionID string) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RevokeSession"))

	if err := h.sessionService.Revoke(ctx, userID, sessionID); err != nil {
		switch {
		case errors.Is(err, types.ErrSessionRevoked):
			api.SuccessResponse(w, r, http.StatusOK, "Session already revoked", nil)
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		default:
			l.ErrorContext(ctx, "Failed to revoke session", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to revoke session")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Session revoked", nil)
}
