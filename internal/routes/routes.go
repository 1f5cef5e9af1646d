package routes

import (
	"github.com/gin-gonic/gin"

	"bicochat/internal/handlers"
)

func SetupRoutes(
	r *gin.Engine,
	chatHandler *handlers.ChatHandler,
	messageHandler *handlers.MessageHandler,
	userHandler *handlers.UserHandler,
	friendHandler *handlers.FriendHandler,
	authHandler *handlers.AuthHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/ws", wsHandler.Stream)

	api := r.Group("/api")

	chats := api.Group("/chats")
	{
		chats.GET("", chatHandler.GetAllChats)
		chats.POST("", chatHandler.CreateChat)
		chats.GET("/:chatId", chatHandler.GetChatByID)
	}

	messages := api.Group("/messages")
	{
		messages.GET("/:chatId", messageHandler.GetMessagesByChatID)
		messages.POST("/:chatId/send", messageHandler.SendMessage)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.GetAllUsers)
		users.GET("/:uid", userHandler.GetUserByID)
		users.PUT("/:uid/status", userHandler.UpdateUserStatus)
		users.PUT("/markChatAsRead/:chatId", userHandler.MarkChatAsRead)
	}

	friends := api.Group("/friends")
	{
		friends.GET("/:uid", friendHandler.GetFriends)
		friends.GET("/requests/:uid", friendHandler.GetFriendRequests)
		friends.POST("/request", friendHandler.SendFriendRequest)
		friends.POST("/accept", friendHandler.AcceptFriendRequest)
		friends.DELETE("/request", friendHandler.RejectFriendRequest)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/google", authHandler.GoogleSignIn)
		auth.GET("/googletest", authHandler.GoogleTest)
		auth.GET("/user/:uid", authHandler.GetUserInfo)
		auth.GET("/users", authHandler.ListUsers)
		auth.POST("/createUser", authHandler.CreateUser)
		auth.POST("/verifyUser", authHandler.VerifyUser)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	return r
}
