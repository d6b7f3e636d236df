package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"Spades/config"
	"Spades/internal/auth"
	"Spades/internal/game/manager"
	"Spades/internal/game/rules"
	"Spades/internal/game/table"
	"Spades/internal/identity"
	"Spades/internal/matchmaker"
	"Spades/internal/middleware"
	"Spades/internal/storage"
	"Spades/internal/utils"
	"Spades/internal/websocket"
)

func main() {
	config.Load()
	logger := utils.NewLogger()

	// Backing stores: postgres for profiles/coins, redis for the profile
	// cache and the match queue.
	if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
		logger.Fatal("postgres init failed", "err", err)
	}
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		logger.Fatal("redis init failed", "err", err)
	}
	defer storage.CloseRedis()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Hub first; everything else publishes through it.
	hub := websocket.NewHub(logger)
	go hub.Run()

	dir := identity.NewPostgresDirectory(storage.DB)
	cachedDir := identity.NewCachedDirectory(dir, storage.Rdb, 10*time.Minute)

	ruleSet := rules.RuleSet{
		WinTarget:  config.C.Rules.WinTarget,
		BidPoints:  config.C.Rules.BidPoints,
		BagPoints:  config.C.Rules.BagPoints,
		NilBonus:   config.C.Rules.NilBonus,
		BagLimit:   config.C.Rules.BagLimit,
		BagPenalty: config.C.Rules.BagPenalty,
	}

	gameMgr := manager.NewGameManager(hub, cachedDir, ruleSet, logger)
	hub.OnIncoming = gameMgr.HandleMessage

	// Quick-match: four pooled players become a WAITING game with the
	// first popped player as creator.
	mmRepo := matchmaker.NewRedisRepo(storage.Rdb)
	mmSvc := matchmaker.NewService(mmRepo, 300, hub)
	mmSvc.OnRoomReady = func(room *matchmaker.Room) {
		specs := make([]table.PlayerSpec, len(room.Players))
		for i, id := range room.Players {
			specs[i] = table.PlayerSpec{Identity: id}
		}
		if _, err := gameMgr.CreateMatchedGame(context.Background(), specs); err != nil {
			logger.Error("matched game creation failed", "room", room.ID, "err", err)
		}
	}

	secret := []byte(config.C.JWT.Secret)

	authHandler := auth.NewHandler(secret, dir)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/guest", authHandler.Guest)
	}

	accounts := storage.NewAccountStore(storage.DB)

	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authed.GET("/ws", websocket.ServeWS(hub))
		authed.GET("/account/:id/balance", accounts.BalanceHandler)

		mh := matchmaker.NewHandler(mmSvc)
		authed.POST("/match/join", mh.Join)
		authed.POST("/match/cancel", mh.Cancel)
	}

	logger.Info("server running", "port", config.C.Server.Port)
	if err := r.Run(config.C.Server.Port); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
