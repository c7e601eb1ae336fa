package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App bundles everything the router needs. Store is nil when it could not
// be opened; store-backed routes then answer 503.
type App struct {
	Store       Store
	StoreLabel  string
	Profiles    *ProfileService
	Shop        *ShopService
	Board       *Leaderboard
	Quiz        *QuizService
	Sessions    *SessionManager
	Log         *zap.Logger
	FrontendDir string
	CORSOrigins []string
}

// NewApp wires the services over store (which may be nil).
func NewApp(cfg *Config, store Store, cache LeaderboardCache, log *zap.Logger) *App {
	board := NewLeaderboard(store, cache, log)
	profiles := NewProfileService(store, board, log, cfg.MutationRetries)
	return &App{
		Store:       store,
		StoreLabel:  cfg.StoreLabel(),
		Profiles:    profiles,
		Shop:        NewShopService(catalog, profiles, log),
		Board:       board,
		Quiz:        NewQuizService(store, nil),
		Sessions:    NewSessionManager(cfg.SessionTTL, sessionQuestions, DefaultSessionDefaults),
		Log:         log,
		FrontendDir: cfg.FrontendDir,
		CORSOrigins: cfg.CORSOrigins,
	}
}

func NewRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(app.Log))
	r.Use(RequestMetrics())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(app.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = app.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", MetricsHandler())

	api := r.Group("/api")
	api.GET("/health", Health(app.Store, app.StoreLabel))
	api.GET("/missions", ListMissions)
	api.GET("/shop/items", ListShopItems(app.Shop))

	var creditor *ProfileService
	if app.Store != nil {
		creditor = app.Profiles
	}
	NewSessionHandlers(app.Sessions, creditor, app.Log).Register(api.Group("/session"))

	stored := api.Group("", RequireStore(app.Store != nil))
	{
		// Profiles
		stored.POST("/auth/login", Login(app.Profiles))
		stored.POST("/score/update", UpdateScore(app.Profiles))
		stored.GET("/student/me", GetMe(app.Profiles))
		stored.POST("/progress/log", LogProgress(app.Profiles))

		// Quiz content
		stored.POST("/quiz/next-question", NextQuestion(app.Quiz))
		stored.GET("/boss/:subject", GetBoss(app.Quiz))
		stored.POST("/questions/add", AddQuestion(app.Quiz))
		stored.GET("/admin/stats", AdminStatsHandler(app.Quiz))

		// Shop & leaderboard
		stored.POST("/shop/buy", BuyItem(app.Shop))
		stored.POST("/shop/equip", EquipItem(app.Shop))
		stored.GET("/leaderboard", GetLeaderboard(app.Board))
	}

	r.NoRoute(Frontend(app.FrontendDir))
	return r
}
