package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/duetchat/pkg/auth"
)

type AuthHandler struct {
	jwtManager *auth.JWTManager
	redis      *redis.Client
}

func NewAuthHandler(jwtMgr *auth.JWTManager, rdb *redis.Client) *AuthHandler {
	return &AuthHandler{jwtManager: jwtMgr, redis: rdb}
}

// Guest выдает свежий постоянный идентификатор участника и токен на
// него. Регистрации нет: идентичность — это просто непрозрачный id.
func (h *AuthHandler) Guest(c *gin.Context) {
	participantID := uuid.New().String()

	token, err := h.jwtManager.Generate(participantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"participant_id": participantID,
		"token":          token,
	})
}

// Logout кладет предъявленный токен в черный список до его истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}

	expiry, err := h.jwtManager.Expiry(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ttl := time.Until(expiry)
	if ttl > 0 {
		if err := h.redis.Set(context.Background(), "blacklist:"+token, "1", ttl).Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot revoke token"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
