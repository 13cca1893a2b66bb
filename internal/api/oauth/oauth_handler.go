package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-saas-starter/config"
	"github.com/FACorreiaa/go-saas-starter/internal/api"
)

// stateTTL bounds how long a login attempt may sit between Begin and
// Callback before its state nonce expires.
const stateTTL = 10 * time.Minute

// redirectState is the client-supplied post-login destination, carried as
// base64 JSON through the provider round trip. Only relative paths survive
// validation, so the flow cannot be used as an open redirect.
type redirectState struct {
	Redirect string `json:"redirect"`
}

// SetupProviders registers the Google and GitHub providers and the cookie
// store gothic uses for its own round-trip session.
func SetupProviders(cfg config.Config) {
	store := sessions.NewCookieStore([]byte(cfg.OAuth.SessionSecret))
	store.Options.HttpOnly = true
	store.MaxAge(int(stateTTL.Seconds()))
	gothic.Store = store

	goth.UseProviders(
		google.New(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret,
			cfg.OAuth.CallbackURL+"/api/v1/auth/callback/google", "email", "profile"),
		github.New(cfg.OAuth.GitHubClientID, cfg.OAuth.GitHubClientSecret,
			cfg.OAuth.CallbackURL+"/api/v1/auth/callback/github", "user:email"),
	)
}

var _ OAuthHandler = (*OAuthHandlerImpl)(nil)

type OAuthHandler interface {
	Begin(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
}

type OAuthHandlerImpl struct {
	oauthService OAuthService
	logger       *slog.Logger
	states       *cache.Cache
	frontendURL  string
}

func NewOAuthHandlerImpl(oauthService OAuthService, frontendURL string, logger *slog.Logger) *OAuthHandlerImpl {
	return &OAuthHandlerImpl{
		oauthService: oauthService,
		logger:       logger,
		states:       cache.New(stateTTL, stateTTL),
		frontendURL:  strings.TrimRight(frontendURL, "/"),
	}
}

// parseRedirectState decodes and shape-checks the client's state blob. Any
// malformed or absolute destination collapses to "/".
func parseRedirectState(raw string) string {
	if raw == "" {
		return "/"
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		if decoded, err = base64.StdEncoding.DecodeString(raw); err != nil {
			return "/"
		}
	}
	var rs redirectState
	if err := json.Unmarshal(decoded, &rs); err != nil {
		return "/"
	}
	if !strings.HasPrefix(rs.Redirect, "/") || strings.HasPrefix(rs.Redirect, "//") {
		return "/"
	}
	return rs.Redirect
}

// Begin godoc
// @Summary      Begin OAuth Login
// @Description  Redirects the browser to the provider's consent screen. The optional state query parameter carries a base64 JSON redirect destination.
// @Tags         OAuth
// @Param        provider path string true "Provider" Enums(google, github)
// @Param        state query string false "Base64 JSON redirect payload"
// @Success      307 "Redirect to provider"
// @Failure      400 {object} api.Response "Unsupported provider"
// @Router       /auth/{provider} [get]
func (h *OAuthHandlerImpl) Begin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if _, err := MethodForProvider(provider); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Unsupported provider")
		return
	}

	redirect := parseRedirectState(r.URL.Query().Get("state"))
	nonce := uuid.NewString()
	h.states.Set(nonce, redirect, cache.DefaultExpiration)

	q := r.URL.Query()
	q.Set("provider", provider)
	q.Set("state", nonce)
	r.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(w, r)
}

// Callback godoc
// @Summary      OAuth Callback
// @Description  Completes the provider handshake, links or creates the account and redirects to the frontend with tokens in the URL fragment.
// @Tags         OAuth
// @Param        provider path string true "Provider" Enums(google, github)
// @Success      302 "Redirect to frontend"
// @Router       /auth/callback/{provider} [get]
func (h *OAuthHandlerImpl) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Callback"))

	provider := chi.URLParam(r, "provider")
	method, err := MethodForProvider(provider)
	if err != nil {
		h.redirectError(w, r, "unsupported_provider")
		return
	}

	q := r.URL.Query()
	q.Set("provider", provider)
	r.URL.RawQuery = q.Encode()

	gu, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "Provider handshake failed", slog.Any("error", err))
		h.redirectError(w, r, "oauth_failed")
		return
	}

	// The nonce is single use: replayed callbacks fail here.
	redirect := "/"
	if state := gothic.GetState(r); state != "" {
		stored, found := h.states.Get(state)
		if !found {
			l.WarnContext(ctx, "Unknown or expired OAuth state")
			h.redirectError(w, r, "invalid_state")
			return
		}
		h.states.Delete(state)
		if path, ok := stored.(string); ok {
			redirect = path
		}
	}

	payload, err := h.oauthService.HandleProviderUser(ctx, method, gu, api.RequestMeta(r))
	if err != nil {
		l.ErrorContext(ctx, "Provider login failed", slog.Any("error", err))
		h.redirectError(w, r, "oauth_failed")
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", payload.Tokens.AccessToken)
	fragment.Set("refresh_token", payload.Tokens.RefreshToken)
	fragment.Set("session_id", payload.SessionID)
	http.Redirect(w, r, fmt.Sprintf("%s%s#%s", h.frontendURL, redirect, fragment.Encode()), http.StatusFound)
}

func (h *OAuthHandlerImpl) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, fmt.Sprintf("%s/login?error=%s", h.frontendURL, url.QueryEscape(code)), http.StatusFound)
}
