package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/duetchat/pkg/auth"
)

const ParticipantIDKey = "participantID"

// RequireAuth пропускает только запросы с живым guest-токеном
func RequireAuth(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}

		participantID, ok := verify(c, jwtManager, redisClient, token)
		if !ok {
			return
		}

		c.Set(ParticipantIDKey, participantID)
		c.Next()
	}
}

// WSAuth — необязательная аутентификация для WebSocket рукопожатия.
// Без токена соединение остается гостевым: постоянный id придет
// в payload события join. Предъявленный токен обязан быть валидным.
func WSAuth(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			c.Next()
			return
		}

		participantID, ok := verify(c, jwtManager, redisClient, token)
		if !ok {
			return
		}

		c.Set(ParticipantIDKey, participantID)
		c.Next()
	}
}

func verify(c *gin.Context, jwtManager *auth.JWTManager, redisClient *redis.Client, token string) (string, bool) {
	// Отозванные токены лежат в черном списке redis
	exists, err := redisClient.Exists(context.Background(), "blacklist:"+token).Result()
	if err != nil || exists > 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is revoked"})
		c.Abort()
		return "", false
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return "", false
	}

	if claims.Subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid participant id"})
		c.Abort()
		return "", false
	}

	return claims.Subject, true
}
