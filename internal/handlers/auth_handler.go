package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bicochat/internal/models"
	"bicochat/internal/services"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// @Summary      Sign in with Google
// @Description  Verifies a Google ID token, creating the user on first sign-in, and returns the user data plus a custom token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "idToken"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Router       /api/auth/google [post]
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	idToken := req["idToken"]
	if idToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token Google not provided"})
		return
	}

	userData, err := h.service.VerifyGoogleToken(c.Request.Context(), idToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, userData)
}

func (h *AuthHandler) GoogleTest(c *gin.Context) {
	c.String(http.StatusOK, "Google Auth Service correctly working!")
}

func (h *AuthHandler) GetUserInfo(c *gin.Context) {
	uid := c.Param("uid")
	c.String(http.StatusOK, h.service.UserInfo(c.Request.Context(), uid))
}

// ListUsers is a debug listing of registered emails.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	emails, err := h.service.ListUserEmails(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emails)
}

// @Summary      Register an unverified user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.RegisterRequest  true  "credentials"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Router       /api/auth/createUser [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.CreateUnverifiedUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result})
}

func (h *AuthHandler) VerifyUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	result, err := h.service.VerifyUser(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result})
}

// Login proxies to the identity provider's password sign-in endpoint.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body, err := h.service.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed: " + err.Error()})
		return
	}
	c.String(http.StatusOK, "Login successful: "+body)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	if err := h.service.Logout(c.Request.Context(), email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User logged out successfully."})
}
