package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bicochat/internal/models"
	"bicochat/internal/services"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type createChatRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Participants []string `json:"participants" binding:"required,min=1"`
}

func (h *ChatHandler) GetAllChats(c *gin.Context) {
	chats, err := h.service.GetAllChats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *ChatHandler) GetChatByID(c *gin.Context) {
	chatID := c.Param("chatId")
	chat, err := h.service.GetChatByID(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if chat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chatType := req.Type
	if chatType == "" {
		chatType = "individual"
	}
	chat := models.Chat{
		Name:         req.Name,
		Type:         chatType,
		Participants: req.Participants,
	}
	created, err := h.service.CreateChat(c.Request.Context(), chat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}
