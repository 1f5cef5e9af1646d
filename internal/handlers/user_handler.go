package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bicochat/internal/realtime"
	"bicochat/internal/services"
)

type UserHandler struct {
	service *services.UserService
	hub     *realtime.Hub
}

func NewUserHandler(service *services.UserService, hub *realtime.Hub) *UserHandler {
	return &UserHandler{service: service, hub: hub}
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	uid := c.Param("uid")
	user, err := h.service.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	uid := c.Param("uid")
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, ok := body["status"]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing status"})
		return
	}
	if err := h.service.UpdateUserStatus(c.Request.Context(), uid, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkChatAsRead clears every participant's unread counter for the chat and
// then pushes a fresh users snapshot to subscribers.
func (h *UserHandler) MarkChatAsRead(c *gin.Context) {
	chatID := c.Param("chatId")
	ctx := c.Request.Context()

	if err := h.service.MarkChatAsRead(ctx, chatID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if users, err := h.service.GetAllUsers(ctx); err == nil {
		h.hub.Publish(realtime.TopicUsers, users)
	}
	c.Status(http.StatusNoContent)
}
