package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/FACorreiaa/go-saas-starter/app/observability/metrics"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

const unknownClient = "Unknown"

// DefaultPageSize caps how many sessions a listing returns, newest first.
const DefaultPageSize = 20

var _ SessionService = (*SessionServiceImpl)(nil)
var _ auth.SessionTracker = (*SessionServiceImpl)(nil)

// SessionService tracks login instances per user: creation at login,
// liveness bumps on every authenticated request, revocation at logout.
type SessionService interface {
	Create(ctx context.Context, userID uuid.UUID, method types.AuthMethod, meta types.RequestMeta) (*types.Session, error)
	Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error)
	Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]types.Session, error)
}

type SessionServiceImpl struct {
	logger   *slog.Logger
	repo     SessionRepo
	pageSize int
}

func NewSessionService(repo SessionRepo, pageSize int, logger *slog.Logger) *SessionServiceImpl {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SessionServiceImpl{
		logger:   logger,
		repo:     repo,
		pageSize: pageSize,
	}
}

// parseClient turns a raw User-Agent into the browser/os/device triple kept
// on the session row. Anything the parser cannot name becomes "Unknown".
func parseClient(rawUA string) (browser, os, device string) {
	browser, os, device = unknownClient, unknownClient, unknownClient
	if strings.TrimSpace(rawUA) == "" {
		return
	}
	ua := useragent.Parse(rawUA)
	if ua.Name != "" {
		browser = ua.Name
	}
	if ua.OS != "" {
		os = ua.OS
	}
	switch {
	case ua.Mobile:
		device = "Mobile"
	case ua.Tablet:
		device = "Tablet"
	case ua.Desktop:
		device = "Desktop"
	case ua.Bot:
		device = "Bot"
	}
	return
}

func (s *SessionServiceImpl) Create(ctx context.Context, userID uuid.UUID, method types.AuthMethod, meta types.RequestMeta) (*types.Session, error) {
	l := s.logger.With(slog.String("method", "Create"))

	browser, os, device := parseClient(meta.UserAgent)
	session := &types.Session{
		ID:         uuid.New(),
		UserID:     userID,
		SessionID:  uuid.NewString(),
		AuthMethod: method,
		Browser:    browser,
		OS:         os,
		Device:     device,
		IP:         meta.IP,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	metrics.Get().SessionsCreatedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Session created",
		slog.String("userID", userID.String()),
		slog.String("sessionID", session.SessionID),
		slog.String("browser", browser),
		slog.String("os", os),
	)
	return session, nil
}

func (s *SessionServiceImpl) Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error) {
	return s.repo.Touch(ctx, userID, sessionID)
}

func (s *SessionServiceImpl) Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error {
	l := s.logger.With(slog.String("method", "Revoke"))
	if err := s.repo.Revoke(ctx, userID, sessionID); err != nil {
		return err
	}
	metrics.Get().SessionsRevokedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Session revoked",
		slog.String("userID", userID.String()),
		slog.String("sessionID", sessionID),
	)
	return nil
}

func (s *SessionServiceImpl) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "RevokeAll"))
	n, err := s.repo.RevokeAll(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.Get().SessionsRevokedTotal.Add(ctx, n)
	}
	l.InfoContext(ctx, "All sessions revoked",
		slog.String("userID", userID.String()),
		slog.Int64("count", n),
	)
	return nil
}

func (s *SessionServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]types.Session, error) {
	return s.repo.List(ctx, userID, s.pageSize)
}
