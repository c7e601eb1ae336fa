package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCache is an in-process LeaderboardCache.
type fakeCache struct {
	scores map[string]int
	order  []string
	err    error
}

func (f *fakeCache) Record(_ context.Context, id string, energy int) error {
	if f.scores == nil {
		f.scores = map[string]int{}
	}
	f.scores[id] = energy
	return f.err
}

func (f *fakeCache) Top(_ context.Context, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.order) > n {
		return f.order[:n], nil
	}
	return f.order, nil
}

func (f *fakeCache) Warm(_ context.Context, ps []Profile) error {
	f.scores = map[string]int{}
	for _, p := range ps {
		f.scores[p.ID] = p.SparkEnergy
	}
	return f.err
}

func TestLeaderboardTopFromStore(t *testing.T) {
	store := newTestStore(t)
	profiles := newTestProfiles(store)
	for i := 1; i <= 12; i++ {
		mustLogin(t, profiles, fmt.Sprintf("kid%d@x.com", i), i*10)
	}

	board := NewLeaderboard(store, nil, zap.NewNop())
	top, err := board.Top(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, top, DefaultLeaderboardSize)

	assert.Equal(t, "kid12", top[0].Username)
	assert.Equal(t, 120, top[0].SparkEnergy)
	for i := range top {
		assert.Equal(t, i+1, top[i].Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, top[i-1].SparkEnergy, top[i].SparkEnergy)
		}
	}
	assert.Equal(t, "kid3", top[9].Username)
}

func TestLeaderboardUsesCacheOrder(t *testing.T) {
	store := newTestStore(t)
	profiles := newTestProfiles(store)
	a := mustLogin(t, profiles, "ana@x.com", 10)
	b := mustLogin(t, profiles, "ben@x.com", 20)

	cache := &fakeCache{order: []string{a.ID, "gone", b.ID}}
	board := NewLeaderboard(store, cache, zap.NewNop())
	top, err := board.Top(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "ana", top[0].Username)
	assert.Equal(t, "ben", top[1].Username)
	assert.Equal(t, 2, top[1].Rank)
}

func TestLeaderboardFallsBackOnCacheError(t *testing.T) {
	store := newTestStore(t)
	profiles := newTestProfiles(store)
	mustLogin(t, profiles, "ana@x.com", 10)
	mustLogin(t, profiles, "ben@x.com", 20)

	board := NewLeaderboard(store, &fakeCache{err: errors.New("connection refused")}, zap.NewNop())
	top, err := board.Top(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "ben", top[0].Username)
}

func TestLeaderboardRecordsEnergyChanges(t *testing.T) {
	store := newTestStore(t)
	cache := &fakeCache{}
	board := NewLeaderboard(store, cache, zap.NewNop())
	profiles := NewProfileService(store, board, zap.NewNop(), 5)
	ctx := context.Background()

	kid, _, err := profiles.Login(ctx, "kid1@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, 100, cache.scores[kid.ID])

	_, err = profiles.UpdateScore(ctx, kid.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 125, cache.scores[kid.ID])

	require.NoError(t, board.Warm(ctx))
	assert.Equal(t, map[string]int{kid.ID: 125}, cache.scores)
}

func TestLeaderboardStaleCacheIdsFallBackToStore(t *testing.T) {
	store := newTestStore(t)
	profiles := newTestProfiles(store)
	var ids []string
	for i := 1; i <= 12; i++ {
		p := mustLogin(t, profiles, fmt.Sprintf("kid%d@x.com", i), i*10)
		ids = append(ids, p.ID)
	}

	// two deleted profiles still ranked at the top of the cache
	order := append([]string{"ghost1", "ghost2"}, ids[4:]...)
	board := NewLeaderboard(store, &fakeCache{order: order}, zap.NewNop())
	top, err := board.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, "kid12", top[0].Username)
	assert.Equal(t, "kid3", top[9].Username)
}
