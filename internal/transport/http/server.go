package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/saomyaraj/ConvoSphere/internal/auth"
	"github.com/saomyaraj/ConvoSphere/internal/config"
	"github.com/saomyaraj/ConvoSphere/internal/hub"
	"github.com/saomyaraj/ConvoSphere/internal/store"
)

// NewServer builds the HTTP server. The REST API and health check live on
// a gin engine; /ws is dispatched by an outer mux directly to the
// WebSocket handler, because the upgrade needs to hijack the raw
// ResponseWriter and gin's wrapper has already written to it.
func NewServer(h *hub.Hub, st store.Store, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	authHandlers := NewAuthHandlers(authService, logger)
	engine.POST("/api/auth/register", authHandlers.Register)
	engine.POST("/api/auth/login", authHandlers.Login)

	authorized := engine.Group("/api", AuthMiddleware(authService, logger))

	profileHandlers := NewProfileHandlers(st, logger)
	authorized.GET("/profile", profileHandlers.Get)
	authorized.PUT("/profile", profileHandlers.Update)

	roomHandlers := NewRoomHandlers(st, logger)
	authorized.GET("/rooms", roomHandlers.List)
	authorized.POST("/rooms", roomHandlers.Create)
	authorized.POST("/rooms/:id/join", roomHandlers.Join)
	authorized.POST("/rooms/:id/leave", roomHandlers.Leave)

	messageHandlers := NewMessageHandlers(st, logger)
	authorized.GET("/messages/room/:id", messageHandlers.RoomHistory)
	authorized.POST("/messages/room/:id", messageHandlers.PostRoomMessage)
	authorized.GET("/messages/private/:userId", messageHandlers.PrivateHistory)
	authorized.POST("/messages/private/:userId", messageHandlers.PostPrivateMessage)
	authorized.GET("/messages/conversations", messageHandlers.Conversations)

	wsHandler := NewWSHandler(h, auth.NewSocketGate(authService), cfg.MaxMessageBytes, logger)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/", engine)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
