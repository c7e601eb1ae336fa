package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := NewLogger(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	gin.SetMode(gin.ReleaseMode)

	// 1) Store. Failure is not fatal: store-backed routes answer 503.
	var store Store
	if db, err := setupStore(cfg, logger); err != nil {
		logger.Error("store unavailable, continuing without it", zap.String("store", cfg.StoreLabel()), zap.Error(err))
	} else {
		store = NewGormStore(db)
	}

	// 2) Optional leaderboard cache
	var cache LeaderboardCache
	if cfg.RedisAddr != "" {
		rl, err := NewRedisLeaderboard(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, leaderboard reads go to the store", zap.Error(err))
		} else {
			defer rl.Close()
			cache = rl
		}
	}

	app := NewApp(cfg, store, cache, logger)
	if store != nil && cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.Board.Warm(ctx); err != nil {
			logger.Warn("leaderboard warm-up failed", zap.Error(err))
		}
		cancel()
	}

	// 3) Router & server
	srv := &http.Server{
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, port, err := listenFrom("", cfg.Port, cfg.PortAttempts, logger)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
	logger.Info("server running",
		zap.Int("port", port),
		zap.String("url", fmt.Sprintf("http://localhost:%d", port)),
		zap.String("store", cfg.StoreLabel()),
		zap.Bool("leaderboardCache", cache != nil),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, srv, ln, logger); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
	logger.Info("stopped")
}

// setupStore opens, migrates and, when the question bank is empty, seeds.
func setupStore(cfg *Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	empty, err := IsQuestionTableEmpty(db)
	if err != nil {
		return nil, err
	}
	if empty {
		sf, err := LoadSeedFile(cfg.SeedPath)
		if err != nil {
			return nil, err
		}
		if err := Seed(db, sf); err != nil {
			return nil, err
		}
		logger.Info("seeded question bank", zap.String("path", cfg.SeedPath), zap.Int("questions", len(sf.Questions)), zap.Int("bosses", len(sf.Bosses)))
	}
	return db, nil
}
