package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginweb/internal/service"
)

// AuthHandler mantiene dependencias para registro, login y logout.
type AuthHandler struct {
	logger   *zap.Logger
	users    *service.UserService
	sessions *service.SessionService
	presence *service.PresenceService
	limiter  service.LoginRateLimiter
}

func NewAuthHandler(
	logger *zap.Logger,
	users *service.UserService,
	sessions *service.SessionService,
	presence *service.PresenceService,
	limiter service.LoginRateLimiter,
) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		sessions: sessions,
		presence: presence,
		limiter:  limiter,
	}
}

// ShowRegister maneja GET /register.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// Register maneja POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	err := h.users.Register(c.Request.Context(), username, password)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, service.ErrInvalidInput):
		c.HTML(http.StatusOK, "register.html", gin.H{"error": "enter a username and password"})
	case errors.Is(err, service.ErrAlreadyExists):
		c.HTML(http.StatusOK, "register.html", gin.H{"error": "username already exists"})
	default:
		h.logger.Error("register failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{"error": "could not register"})
	}
}

// ShowLogin maneja GET /login.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login maneja POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if h.limiter != nil && !h.limiter.Allow(username) {
		c.HTML(http.StatusTooManyRequests, "login.html", gin.H{"error": "too many attempts, try again later"})
		return
	}

	err := h.users.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.HTML(http.StatusOK, "login.html", gin.H{"error": "incorrect username or password"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "could not log in"})
		return
	}

	if err := h.establishSession(c, username); err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "could not log in"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/home")
}

// Logout maneja GET /logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if username, ok := CurrentUser(c); ok {
		if err := h.presence.MarkOffline(c.Request.Context(), username); err != nil {
			h.logger.Warn("mark offline failed", zap.String("username", username), zap.Error(err))
		}
	}
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		_ = h.sessions.Revoke(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

// establishSession emite el token, fija la cookie y refresca presencia.
func (h *AuthHandler) establishSession(c *gin.Context, username string) error {
	token, err := h.sessions.Issue(username)
	if err != nil {
		return err
	}
	maxAge := int(h.sessions.TTL().Seconds())
	c.SetCookie(sessionCookie, token, maxAge, "/", "", false, true)
	if err := h.presence.MarkOnline(c.Request.Context(), username); err != nil {
		h.logger.Warn("mark online failed", zap.String("username", username), zap.Error(err))
	}
	return nil
}
