package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	gate *SessionGate,
	authH *AuthHandler,
	googleH *GoogleHandler,
	profileH *ProfileHandler,
	onlineH *OnlineHandler,
	templatesGlob string,
	staticDir string,
) *gin.Engine {
	r := gin.New()

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), gate.Middleware())

	if templatesGlob != "" {
		r.LoadHTMLGlob(templatesGlob)
	}
	if staticDir != "" {
		r.Static("/static", staticDir)
	}

	r.GET("/", profileH.Index)
	r.GET("/register", authH.ShowRegister)
	r.POST("/register", authH.Register)
	r.GET("/login", authH.ShowLogin)
	r.POST("/login", authH.Login)
	r.GET("/logout", authH.Logout)

	r.GET("/auth/google", googleH.Start)
	r.GET("/auth/google/callback", googleH.Callback)

	protected := r.Group("/", gate.RequireUser())
	protected.GET("/home", profileH.Home)
	protected.GET("/profile", profileH.Profile)
	protected.POST("/upload-avatar", profileH.UploadAvatar)

	r.GET("/api/online", onlineH.Online)

	return r
}
