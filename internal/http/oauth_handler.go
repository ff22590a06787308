package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"loginweb/internal/service"
)

const (
	stateCookie       = "oauth_state"
	stateCookieMaxAge = 600
	userinfoEndpoint  = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleHandler implementa el flujo OAuth de Google: redireccion con
// nonce de estado, intercambio de codigo, userinfo y aprovisionamiento
// de la cuenta local.
type GoogleHandler struct {
	logger   *zap.Logger
	users    *service.UserService
	sessions *service.SessionService
	presence *service.PresenceService
	avatars  *service.AvatarService
	oauth    *oauth2.Config
	userinfo string
}

func NewGoogleHandler(
	logger *zap.Logger,
	users *service.UserService,
	sessions *service.SessionService,
	presence *service.PresenceService,
	avatars *service.AvatarService,
	oauth *oauth2.Config,
) *GoogleHandler {
	return &GoogleHandler{
		logger:   logger,
		users:    users,
		sessions: sessions,
		presence: presence,
		avatars:  avatars,
		oauth:    oauth,
		userinfo: userinfoEndpoint,
	}
}

type googleUserinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Start maneja GET /auth/google.
func (h *GoogleHandler) Start(c *gin.Context) {
	if h.oauth == nil || h.oauth.ClientID == "" {
		c.String(http.StatusServiceUnavailable, "google sign-in not configured")
		return
	}
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, h.oauth.AuthCodeURL(state))
}

// Callback maneja GET /auth/google/callback.
func (h *GoogleHandler) Callback(c *gin.Context) {
	if h.oauth == nil || h.oauth.ClientID == "" {
		c.String(http.StatusServiceUnavailable, "google sign-in not configured")
		return
	}

	state := c.Query("state")
	expected, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != expected {
		c.String(http.StatusBadRequest, "invalid oauth state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "missing authorization code")
		return
	}

	ctx := c.Request.Context()
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		c.String(http.StatusBadGateway, "could not complete google sign-in")
		return
	}

	info, err := h.fetchUserinfo(c, token)
	if err != nil {
		h.logger.Warn("oauth userinfo fetch failed", zap.Error(err))
		c.String(http.StatusBadGateway, "could not complete google sign-in")
		return
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		if at := strings.IndexByte(info.Email, '@'); at > 0 {
			name = info.Email[:at]
		}
	}

	username, err := h.users.ProvisionExternal(ctx, name, info.Email)
	if err != nil {
		h.logger.Error("external provisioning failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "could not complete google sign-in")
		return
	}

	// Mejor esfuerzo: un fallo deja el avatar sin fijar.
	h.avatars.FetchExternal(ctx, username, info.Picture)

	sessionToken, err := h.sessions.Issue(username)
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "could not complete google sign-in")
		return
	}
	maxAge := int(h.sessions.TTL().Seconds())
	c.SetCookie(sessionCookie, sessionToken, maxAge, "/", "", false, true)
	if err := h.presence.MarkOnline(ctx, username); err != nil {
		h.logger.Warn("mark online failed", zap.String("username", username), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *GoogleHandler) fetchUserinfo(c *gin.Context, token *oauth2.Token) (googleUserinfo, error) {
	client := h.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get(h.userinfo)
	if err != nil {
		return googleUserinfo{}, err
	}
	defer resp.Body.Close()

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserinfo{}, err
	}
	return info, nil
}
