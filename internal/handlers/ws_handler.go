package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bicochat/internal/realtime"
)

type WSHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// Stream upgrades the connection and leaves the client to manage its own
// topic subscriptions.
func (h *WSHandler) Stream(c *gin.Context) {
	if err := realtime.ServeWS(h.hub, c.Writer, c.Request, h.logger); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
