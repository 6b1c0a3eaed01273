package main

import (
	"github.com/baicaiyihao/omni-agent-arena/internal/api"
	"github.com/baicaiyihao/omni-agent-arena/internal/battle"
	"github.com/baicaiyihao/omni-agent-arena/internal/config"
	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/decision"
	"github.com/baicaiyihao/omni-agent-arena/internal/logging"
	"github.com/baicaiyihao/omni-agent-arena/internal/relay"
	"github.com/baicaiyihao/omni-agent-arena/internal/session"
	"github.com/baicaiyihao/omni-agent-arena/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	envCfg, err := config.LoadEnv()
	if err != nil {
		logging.Fatal("Failed to read environment", err, nil)
	}

	cfg, err := config.Load(envCfg.ConfigPath)
	if err != nil {
		logging.Fatal("Invalid arena configuration", err, logging.Fields{"config_path": envCfg.ConfigPath})
	}

	// Missing credentials degrade rather than fail: without a provider key
	// every move falls back to the configured default action, and without a
	// relay key submissions are skipped with placeholder references.
	if envCfg.ProviderAPIKey == "" {
		logging.Info("DASHSCOPE_API_KEY not set; moves will use the fallback action", nil)
	}
	if envCfg.RelayPrivateKey == "" {
		logging.Info("PRIVATE_KEY not set; relay submissions will be skipped", nil)
	}

	db, err := storage.OpenAndMigrate(envCfg.DBPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": envCfg.DBPath})
	}
	repo := storage.NewSQLiteRepository(db)

	rooms := session.NewRegistry()
	provider := decision.NewClient(cfg.Provider.BaseURL, cfg.Provider.Model, envCfg.ProviderAPIKey, cfg.Provider.Timeout)
	relayOpts := cfg.Relay
	relayOpts.PrivateKey = envCfg.RelayPrivateKey
	rly := relay.NewClient(relayOpts)

	orch := battle.NewOrchestrator(rooms, provider, rly, repo, cfg.Tuning)
	handler := api.NewRoomHandler(rooms, orch, repo, cfg.Tuning)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.POST(constants.RouteLogin, handler.Login)
		apiRoutes.GET(constants.RouteLobby, handler.Lobby)
		apiRoutes.POST(constants.RouteJoinRoom, handler.JoinRoom)
		apiRoutes.POST(constants.RoutePvE, handler.PvE)
		apiRoutes.POST(constants.RouteReady, handler.Ready)
		apiRoutes.POST(constants.RouteLeaveRoom, handler.LeaveRoom)
		apiRoutes.GET(constants.RouteRoomStatus, handler.RoomStatus)
		apiRoutes.GET(constants.RouteLeaderboard, handler.Leaderboard)
		apiRoutes.GET(constants.RoutePlayerStats, handler.PlayerStats)
		apiRoutes.GET("/version", api.Version)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
