package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/basit/bucketstore-backend/auth"
	"github.com/basit/bucketstore-backend/config"
	"github.com/basit/bucketstore-backend/models"
	"github.com/basit/bucketstore-backend/store"
)

// AuthHandler provides register/login for the authenticated API surface.
type AuthHandler struct {
	users *store.UserStore
	cfg   *config.Config
	log   zerolog.Logger
}

func NewAuthHandler(users *store.UserStore, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		cfg:   cfg,
		log:   log.With().Str("component", "handlers.auth").Logger(),
	}
}

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "valid email and password (min 8 chars) required"})
		return
	}

	existing, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "email already registered"})
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{Email: body.Email, PasswordHash: hash}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	access, refresh, err := auth.GenerateTokens(h.cfg.Auth.JWTSecret, user.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and password required"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		return
	}

	access, refresh, err := auth.GenerateTokens(h.cfg.Auth.JWTSecret, user.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  access,
		"refresh_token": refresh,
	})
}
