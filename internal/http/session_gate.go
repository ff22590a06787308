package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginweb/internal/service"
)

const (
	sessionCookie = "session"
	identityKey   = "auth_username"
)

// SessionGate es la politica por request: si la cookie trae una sesion
// valida, la identidad entra al contexto y se refresca su presencia;
// despues, con o sin identidad, se barren las entradas vencidas.
type SessionGate struct {
	logger   *zap.Logger
	sessions *service.SessionService
	presence *service.PresenceService
}

func NewSessionGate(logger *zap.Logger, sessions *service.SessionService, presence *service.PresenceService) *SessionGate {
	return &SessionGate{
		logger:   logger,
		sessions: sessions,
		presence: presence,
	}
}

// Middleware corre en toda ruta, autenticada o no.
func (g *SessionGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
			if username, err := g.sessions.Parse(token); err == nil {
				c.Set(identityKey, username)
				if err := g.presence.MarkOnline(ctx, username); err != nil {
					g.logger.Warn("presence refresh failed",
						zap.String("username", username), zap.Error(err))
				}
			}
		}

		if err := g.presence.SweepExpired(ctx); err != nil {
			g.logger.Warn("presence sweep failed", zap.Error(err))
		}

		c.Next()
	}
}

// RequireUser redirige al login cuando no hay identidad establecida.
func (g *SessionGate) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser obtiene la identidad establecida por el gate, si la hay.
func CurrentUser(c *gin.Context) (string, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return "", false
	}
	username, ok := val.(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}
