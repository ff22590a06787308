package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loginweb/internal/service"
)

// OnlineHandler expone el listado de usuarios activos.
type OnlineHandler struct {
	logger   *zap.Logger
	presence *service.PresenceService
}

func NewOnlineHandler(logger *zap.Logger, presence *service.PresenceService) *OnlineHandler {
	return &OnlineHandler{
		logger:   logger,
		presence: presence,
	}
}

// Online maneja GET /api/online. Siempre responde 200 con un arreglo
// JSON; ante errores del store la lista degrada a vacia.
func (h *OnlineHandler) Online(c *gin.Context) {
	active, err := h.presence.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Warn("online list failed", zap.Error(err))
		active = []string{}
	}
	if active == nil {
		active = []string{}
	}
	c.JSON(http.StatusOK, active)
}
