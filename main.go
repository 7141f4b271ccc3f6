package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"streams-service/internal/config"
	"streams-service/internal/events"
	"streams-service/internal/handlers"
	"streams-service/internal/logger"
	"streams-service/internal/middleware"
	"streams-service/internal/models"
	"streams-service/internal/observability"
	"streams-service/internal/service"
	"streams-service/internal/store"
	"streams-service/internal/token"
	"streams-service/internal/ws"
)

// notifierFanout delivers every appended notification to the websocket
// hub and the event exchange.
type notifierFanout struct {
	hub     *ws.Hub
	emitter *events.Emitter
}

func (f *notifierFanout) NotificationAdded(kind string, userID int, n models.Notification) {
	f.hub.BroadcastNotification(userID, n)
	f.emitter.Emit(kind, userID, n)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	st := store.New()

	var snap *store.Snapshotter
	if cfg.Snapshot.Enabled {
		snap, err = store.OpenSnapshots(cfg.Snapshot.Path)
		if err != nil {
			log.Fatalf("failed to open snapshot db: %v", err)
		}
		defer snap.Close()
		if err := snap.Load(st); err != nil {
			log.Fatalf("failed to load snapshot: %v", err)
		}
	}

	publisher := events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	emitter := events.NewEmitter(publisher, "streams-service", cfg.Environment)

	hub := ws.NewHub()
	signer := token.NewSigner(cfg.Auth.JWTSecret)
	svc := service.New(st, signer, &notifierFanout{hub: hub, emitter: emitter}, snap)

	authHandler := handlers.NewAuthHandler(svc)
	userHandler := handlers.NewUserHandler(svc)
	channelHandler := handlers.NewChannelHandler(svc)
	dmHandler := handlers.NewDMHandler(svc)
	messageHandler := handlers.NewMessageHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc)
	streamHandler := ws.NewStreamHandler(hub, svc)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestIDMiddleware())
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(svc)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/logout", authHandler.Logout)
	router.POST("/auth/password-reset/request", authHandler.PasswordResetRequest)
	router.POST("/auth/password-reset", authHandler.PasswordReset)

	router.GET("/users", authMiddleware, userHandler.List)
	router.GET("/users/stats", authMiddleware, userHandler.WorkspaceStats)
	router.GET("/users/:user_id", authMiddleware, userHandler.Profile)
	router.PUT("/user/name", authMiddleware, userHandler.SetName)
	router.PUT("/user/email", authMiddleware, userHandler.SetEmail)
	router.PUT("/user/handle", authMiddleware, userHandler.SetHandle)
	router.GET("/user/stats", authMiddleware, userHandler.Stats)
	router.GET("/notifications", authMiddleware, userHandler.Notifications)

	router.POST("/channels", authMiddleware, channelHandler.Create)
	router.GET("/channels", authMiddleware, channelHandler.ListMine)
	router.GET("/channels/all", authMiddleware, channelHandler.ListAll)
	router.GET("/channels/:channel_id", authMiddleware, channelHandler.Details)
	router.POST("/channels/:channel_id/join", authMiddleware, channelHandler.Join)
	router.POST("/channels/:channel_id/invite", authMiddleware, channelHandler.Invite)
	router.POST("/channels/:channel_id/leave", authMiddleware, channelHandler.Leave)
	router.POST("/channels/:channel_id/owners", authMiddleware, channelHandler.AddOwner)
	router.DELETE("/channels/:channel_id/owners", authMiddleware, channelHandler.RemoveOwner)
	router.GET("/channels/:channel_id/messages", authMiddleware, channelHandler.Messages)
	router.POST("/channels/:channel_id/messages", authMiddleware, channelHandler.Send)
	router.POST("/channels/:channel_id/messages/later", authMiddleware, channelHandler.SendLater)
	router.POST("/channels/:channel_id/standup", authMiddleware, channelHandler.StandupStart)
	router.GET("/channels/:channel_id/standup", authMiddleware, channelHandler.StandupActive)
	router.POST("/channels/:channel_id/standup/send", authMiddleware, channelHandler.StandupSend)

	router.POST("/dms", authMiddleware, dmHandler.Create)
	router.GET("/dms", authMiddleware, dmHandler.List)
	router.GET("/dms/:dm_id", authMiddleware, dmHandler.Details)
	router.POST("/dms/:dm_id/leave", authMiddleware, dmHandler.Leave)
	router.DELETE("/dms/:dm_id", authMiddleware, dmHandler.Remove)
	router.GET("/dms/:dm_id/messages", authMiddleware, dmHandler.Messages)
	router.POST("/dms/:dm_id/messages", authMiddleware, dmHandler.Send)
	router.POST("/dms/:dm_id/messages/later", authMiddleware, dmHandler.SendLater)

	router.PUT("/messages/:message_id", authMiddleware, messageHandler.Edit)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.Remove)
	router.POST("/messages/:message_id/react", authMiddleware, messageHandler.React)
	router.POST("/messages/:message_id/unreact", authMiddleware, messageHandler.Unreact)
	router.POST("/messages/:message_id/pin", authMiddleware, messageHandler.Pin)
	router.POST("/messages/:message_id/unpin", authMiddleware, messageHandler.Unpin)
	router.POST("/messages/:message_id/share", authMiddleware, messageHandler.Share)
	router.GET("/search", authMiddleware, messageHandler.Search)

	router.DELETE("/admin/users/:user_id", authMiddleware, adminHandler.RemoveUser)
	router.PUT("/admin/users/:user_id/permission", authMiddleware, adminHandler.ChangePermission)
	router.DELETE("/clear", handlers.Clear(svc))

	router.GET("/notifications/stream", streamHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Log.Info("server_starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
