package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bicochat/internal/models"
	"bicochat/internal/services"
)

type FriendHandler struct {
	service *services.FriendService
}

func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{service: service}
}

func (h *FriendHandler) GetFriends(c *gin.Context) {
	uid := c.Param("uid")
	friends, err := h.service.GetFriendsOfUser(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (h *FriendHandler) GetFriendRequests(c *gin.Context) {
	uid := c.Param("uid")
	requests, err := h.service.GetFriendRequestsForUser(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *FriendHandler) SendFriendRequest(c *gin.Context) {
	var req models.FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SendFriendRequest(c.Request.Context(), req.FromUID, req.ToUID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request sent"})
}

func (h *FriendHandler) AcceptFriendRequest(c *gin.Context) {
	var req models.FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.AcceptFriendRequest(c.Request.Context(), req.FromUID, req.ToUID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request accepted"})
}

func (h *FriendHandler) RejectFriendRequest(c *gin.Context) {
	var req models.FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.RejectFriendRequest(c.Request.Context(), req.FromUID, req.ToUID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request rejected"})
}
