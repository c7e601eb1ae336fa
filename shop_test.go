package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestShop(t *testing.T) (*ShopService, *ProfileService, *GormStore) {
	t.Helper()
	store := newTestStore(t)
	profiles := newTestProfiles(store)
	return NewShopService(catalog, profiles, zap.NewNop()), profiles, store
}

func TestShopItemsKeepCatalogOrder(t *testing.T) {
	shop, _, _ := newTestShop(t)
	items := shop.Items()
	require.Len(t, items, len(catalog))
	assert.Equal(t, "hat_wizard", items[0].ID)
	assert.Equal(t, "aura_fire", items[len(items)-1].ID)

	// callers get a copy
	items[0].Price = 1
	it, ok := shop.Item("hat_wizard")
	require.True(t, ok)
	assert.Equal(t, 50, it.Price)
}

func TestBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient energy leaves profile untouched", func(t *testing.T) {
		shop, profiles, store := newTestShop(t)
		kid := mustLogin(t, profiles, "kid1@x.com", 40)

		_, err := shop.Buy(ctx, kid.ID, "hat_wizard")
		assert.ErrorIs(t, err, ErrInsufficientEnergy)

		cur, err := store.GetProfile(ctx, kid.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, cur.SparkEnergy)
		assert.Empty(t, cur.Inventory)
	})

	t.Run("exact balance succeeds", func(t *testing.T) {
		shop, profiles, _ := newTestShop(t)
		kid := mustLogin(t, profiles, "kid1@x.com", 50)

		res, err := shop.Buy(ctx, kid.ID, "hat_wizard")
		require.NoError(t, err)
		assert.Equal(t, 0, res.Profile.SparkEnergy)
	})

	t.Run("charges price and appends, duplicates stack", func(t *testing.T) {
		shop, profiles, store := newTestShop(t)
		kid := mustLogin(t, profiles, "kid1@x.com", 100)

		res, err := shop.Buy(ctx, kid.ID, "hat_wizard")
		require.NoError(t, err)
		assert.Equal(t, 50, res.Profile.SparkEnergy)
		assert.Equal(t, []string{"hat_wizard"}, []string(res.Profile.Inventory))

		res, err = shop.Buy(ctx, kid.ID, "hat_wizard")
		require.NoError(t, err)
		assert.Equal(t, 0, res.Profile.SparkEnergy)
		assert.Equal(t, []string{"hat_wizard", "hat_wizard"}, []string(res.Profile.Inventory))

		cur, err := store.GetProfile(ctx, kid.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, cur.SparkEnergy)
		assert.Len(t, cur.Inventory, 2)
	})

	t.Run("unknown item and user", func(t *testing.T) {
		shop, profiles, _ := newTestShop(t)
		kid := mustLogin(t, profiles, "kid1@x.com", 100)

		_, err := shop.Buy(ctx, kid.ID, "hat_unicorn")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = shop.Buy(ctx, "nobody", "hat_wizard")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = shop.Buy(ctx, "", "hat_wizard")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestThirdPurchaseUnlocksCollector(t *testing.T) {
	shop, profiles, store := newTestShop(t)
	ctx := context.Background()
	kid := mustLogin(t, profiles, "kid1@x.com", 100)

	for i := 0; i < 2; i++ {
		res, err := shop.Buy(ctx, kid.ID, "badge_star")
		require.NoError(t, err)
		assert.Empty(t, res.NewAchievements)
	}
	res, err := shop.Buy(ctx, kid.ID, "badge_star")
	require.NoError(t, err)
	if assert.Len(t, res.NewAchievements, 1) {
		assert.Equal(t, "collector", res.NewAchievements[0].ID)
	}

	cur, err := store.GetProfile(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, cur.SparkEnergy)
	assert.Len(t, cur.Inventory, 3)
	assert.True(t, cur.HasAchievement("collector"))
}

func TestConcurrentBuysNeverOverspend(t *testing.T) {
	shop, profiles, store := newTestShop(t)
	ctx := context.Background()
	kid := mustLogin(t, profiles, "kid1@x.com", 100)

	const buyers = 8
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = shop.Buy(ctx, kid.ID, "badge_star")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, ErrInsufficientEnergy) || errors.Is(err, ErrConflict), "%v", err)
		}
	}
	cur, err := store.GetProfile(ctx, kid.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cur.SparkEnergy, 0)
	assert.LessOrEqual(t, len(cur.Inventory), 3)
	assert.Equal(t, 100, cur.SparkEnergy+30*len(cur.Inventory))
}

func TestEquip(t *testing.T) {
	shop, profiles, store := newTestShop(t)
	ctx := context.Background()
	kid := mustLogin(t, profiles, "kid1@x.com", 100)

	p, err := shop.Equip(ctx, kid.ID, "hat_wizard")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hat": "🧙"}, p.EquippedMap())

	// same slot is replaced, other slots kept
	_, err = shop.Equip(ctx, kid.ID, "pet_cat")
	require.NoError(t, err)
	p, err = shop.Equip(ctx, kid.ID, "hat_crown")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hat": "👑", "pet": "🐱"}, p.EquippedMap())

	cur, err := store.GetProfile(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, p.EquippedMap(), cur.EquippedMap())
	assert.Equal(t, 100, cur.SparkEnergy)

	_, err = shop.Equip(ctx, kid.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
