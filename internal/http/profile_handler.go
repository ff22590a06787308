package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginweb/internal/service"
)

const defaultAvatar = "/static/default.png"

// ProfileHandler sirve las paginas de home y perfil y la subida de avatar.
type ProfileHandler struct {
	logger  *zap.Logger
	users   *service.UserService
	avatars *service.AvatarService
}

func NewProfileHandler(logger *zap.Logger, users *service.UserService, avatars *service.AvatarService) *ProfileHandler {
	return &ProfileHandler{
		logger:  logger,
		users:   users,
		avatars: avatars,
	}
}

// Index maneja GET /: redirige segun haya o no sesion.
func (h *ProfileHandler) Index(c *gin.Context) {
	if _, ok := CurrentUser(c); ok {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// Home maneja GET /home.
func (h *ProfileHandler) Home(c *gin.Context) {
	username, _ := CurrentUser(c)
	c.HTML(http.StatusOK, "home.html", gin.H{
		"username": username,
		"avatar":   h.avatarURL(c, username),
	})
}

// Profile maneja GET /profile.
func (h *ProfileHandler) Profile(c *gin.Context) {
	username, _ := CurrentUser(c)
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"username": username,
		"avatar":   h.avatarURL(c, username),
	})
}

// UploadAvatar maneja POST /upload-avatar.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	username, _ := CurrentUser(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader.Filename == "" {
		c.Redirect(http.StatusSeeOther, "/profile")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Warn("avatar upload open failed", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/profile")
		return
	}
	defer f.Close()

	if _, err := h.avatars.SaveUpload(c.Request.Context(), username, fileHeader.Filename, f); err != nil {
		h.logger.Warn("avatar upload failed",
			zap.String("username", username), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *ProfileHandler) avatarURL(c *gin.Context, username string) string {
	profile, err := h.users.Profile(c.Request.Context(), username)
	if err != nil || profile.Avatar == nil || *profile.Avatar == "" {
		return defaultAvatar
	}
	return *profile.Avatar
}
