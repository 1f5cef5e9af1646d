package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bicochat/internal/models"
	"bicochat/internal/services"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) GetMessagesByChatID(c *gin.Context) {
	chatID := c.Param("chatId")
	messages, err := h.service.GetMessagesByChatID(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	chatID := c.Param("chatId")

	var payload map[string]string
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := payload["content"]
	sender := payload["sender"]
	if content == "" || sender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing content or sender"})
		return
	}

	message := models.Message{
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
		Read:      false,
	}

	result, err := h.service.SendMessage(c.Request.Context(), chatID, message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
