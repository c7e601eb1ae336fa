package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultLeaderboardSize = 10
	leaderboardKey         = "sparkquest:leaderboard:energy"
)

// LeaderboardCache mirrors profile energies in a ranked structure.
type LeaderboardCache interface {
	Record(ctx context.Context, profileID string, energy int) error
	Top(ctx context.Context, n int) ([]string, error)
	Warm(ctx context.Context, ps []Profile) error
}

// Leaderboard ranks profiles by spark energy. The cache is optional; any
// cache failure falls back to the store.
type Leaderboard struct {
	store Store
	cache LeaderboardCache
	log   *zap.Logger
}

func NewLeaderboard(store Store, cache LeaderboardCache, log *zap.Logger) *Leaderboard {
	return &Leaderboard{store: store, cache: cache, log: log.Named("leaderboard")}
}

// Record pushes a profile's current energy to the cache. Best effort.
func (l *Leaderboard) Record(ctx context.Context, p *Profile) {
	if l == nil || l.cache == nil {
		return
	}
	if err := l.cache.Record(ctx, p.ID, p.SparkEnergy); err != nil {
		l.log.Warn("leaderboard cache update failed", zap.String("id", p.ID), zap.Error(err))
	}
}

func (l *Leaderboard) Warm(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	ps, err := l.store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if err := l.cache.Warm(ctx, ps); err != nil {
		return fmt.Errorf("warm leaderboard cache: %w", err)
	}
	l.log.Info("leaderboard cache warmed", zap.Int("profiles", len(ps)))
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	if ps, ok := l.topFromCache(ctx, n); ok {
		return toEntries(ps), nil
	}
	ps, err := l.store.TopProfiles(ctx, n)
	if err != nil {
		return nil, err
	}
	return toEntries(ps), nil
}

func (l *Leaderboard) topFromCache(ctx context.Context, n int) ([]Profile, bool) {
	if l.cache == nil {
		return nil, false
	}
	ids, err := l.cache.Top(ctx, n)
	if err != nil {
		l.log.Warn("leaderboard cache read failed, using store", zap.Error(err))
		return nil, false
	}
	if len(ids) == 0 {
		return nil, false
	}
	ps, err := l.store.ProfilesByIDs(ctx, ids)
	if err != nil || len(ps) == 0 {
		return nil, false
	}
	byID := make(map[string]Profile, len(ps))
	for _, p := range ps {
		byID[p.ID] = p
	}
	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	// a full page with stale ids may hide profiles ranked below them
	if len(ids) == n && len(out) < n {
		l.log.Warn("leaderboard cache holds unknown ids, using store", zap.Int("missing", n-len(out)))
		return nil, false
	}
	return out, true
}

func toEntries(ps []Profile) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(ps))
	for i := range ps {
		out = append(out, LeaderboardEntry{
			Rank:        i + 1,
			Username:    ps[i].Username,
			SparkEnergy: ps[i].SparkEnergy,
			Equipped:    ps[i].EquippedMap(),
		})
	}
	return out
}

// RedisLeaderboard keeps energies in a sorted set keyed by profile id.
type RedisLeaderboard struct {
	client *redis.Client
}

// NewRedisLeaderboard connects and pings; callers run without a cache on error.
func NewRedisLeaderboard(addr, password string, db int) (*RedisLeaderboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisLeaderboard{client: client}, nil
}

func (r *RedisLeaderboard) Record(ctx context.Context, profileID string, energy int) error {
	return r.client.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(energy), Member: profileID}).Err()
}

func (r *RedisLeaderboard) Top(ctx context.Context, n int) ([]string, error) {
	// highest score first
	return r.client.ZRevRange(ctx, leaderboardKey, 0, int64(n-1)).Result()
}

func (r *RedisLeaderboard) Warm(ctx context.Context, ps []Profile) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	for _, p := range ps {
		pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(p.SparkEnergy), Member: p.ID})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisLeaderboard) Close() error {
	return r.client.Close()
}
