package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/handlers"
	"github.com/thereayou/duetchat/internal/rooms"
	"github.com/thereayou/duetchat/internal/suggestions"
	"github.com/thereayou/duetchat/internal/turn"
	ws "github.com/thereayou/duetchat/internal/websocket"
	"github.com/thereayou/duetchat/pkg/auth"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	hub := ws.NewHub()

	registry := rooms.NewRegistry(dbConn)
	served := suggestions.NewServedStore(rdb)
	coordinator := turn.New(registry, dbConn, buildProvider(dbConn), served, hub)

	hub.SetDisconnectHandler(func(connID string, sess *ws.Session) {
		if sess != nil {
			coordinator.Leave(connID, sess.RoomID)
		}
	})
	go hub.Run()

	eventH := handlers.NewEventHandler(coordinator, hub)
	wsH := handlers.NewWebSocketHandler(hub, eventH)
	roomH := handlers.NewRoomHandler(dbConn, hub)
	authH := handlers.NewAuthHandler(jwtMgr, rdb)

	router := gin.Default()
	APIEndpoints(router, authH, roomH, wsH, jwtMgr, rdb)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server run error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
}

// buildProvider выбирает источник подсказок из конфигурации:
// корпус в базе или внешняя генеративная модель
func buildProvider(db *database.Database) suggestions.Provider {
	switch os.Getenv("SUGGESTIONS_PROVIDER") {
	case "", "database":
		return suggestions.NewDatabaseSampler(db)

	case "generative":
		timeout := time.Duration(0)
		if raw := os.Getenv("GENAI_TIMEOUT_SECONDS"); raw != "" {
			seconds, err := strconv.Atoi(raw)
			if err != nil {
				log.Fatalf("invalid GENAI_TIMEOUT_SECONDS: %v", err)
			}
			timeout = time.Duration(seconds) * time.Second
		}

		return suggestions.NewGenerative(suggestions.GenerativeConfig{
			APIURL:     os.Getenv("GENAI_API_URL"),
			APIKey:     os.Getenv("GENAI_API_KEY"),
			Model:      os.Getenv("GENAI_MODEL"),
			HTTPClient: &http.Client{},
			Timeout:    timeout,
		})

	default:
		log.Fatalf("unknown SUGGESTIONS_PROVIDER: %q", os.Getenv("SUGGESTIONS_PROVIDER"))
		return nil
	}
}
