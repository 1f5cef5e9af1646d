package main

import "bicochat/internal/app"

// @title BicoChat API
// @version 1.0
// @description Backend-for-frontend for the BicoChat messenger. Serves chat,
// @description message, user and friendship data from Firebase Realtime
// @description Database and re-broadcasts change notifications over WebSocket.

// @host localhost:8080
// @BasePath /api
func main() {
	app.Run()
}
