package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ShopItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Price int    `json:"price"`
	Type  string `json:"type"` // equipment slot
}

// catalog order is the order the shop lists items in.
var catalog = []ShopItem{
	{ID: "hat_wizard", Name: "Wizard Hat", Icon: "🧙", Price: 50, Type: "hat"},
	{ID: "hat_crown", Name: "Golden Crown", Icon: "👑", Price: 200, Type: "hat"},
	{ID: "pet_dragon", Name: "Baby Dragon", Icon: "🐲", Price: 150, Type: "pet"},
	{ID: "pet_cat", Name: "Space Cat", Icon: "🐱", Price: 80, Type: "pet"},
	{ID: "badge_star", Name: "Star Badge", Icon: "⭐", Price: 30, Type: "badge"},
	{ID: "aura_fire", Name: "Fire Aura", Icon: "🔥", Price: 120, Type: "aura"},
}

type ShopService struct {
	items    []ShopItem
	profiles *ProfileService
	log      *zap.Logger
}

func NewShopService(items []ShopItem, profiles *ProfileService, log *zap.Logger) *ShopService {
	return &ShopService{items: items, profiles: profiles, log: log.Named("shop")}
}

func (s *ShopService) Items() []ShopItem {
	return append([]ShopItem(nil), s.items...)
}

func (s *ShopService) Item(id string) (ShopItem, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return ShopItem{}, false
}

// Buy charges the item price and appends it to the inventory. Buying an
// item already owned appends it again. Inventory achievements unlocked by
// the purchase are awarded in the same write.
func (s *ShopService) Buy(ctx context.Context, userID, itemID string) (*ScoreResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: userId and itemId are required", ErrValidation)
	}
	item, ok := s.Item(itemID)
	if !ok {
		purchasesTotal.WithLabelValues("unknown_item").Inc()
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	var fresh []Achievement
	p, err := s.profiles.mutate(ctx, userID, func(p *Profile) error {
		if p.SparkEnergy < item.Price {
			return ErrInsufficientEnergy
		}
		p.SparkEnergy -= item.Price
		p.Inventory = append(p.Inventory, item.ID)
		fresh = awardAchievements(p)
		return nil
	})
	switch {
	case errors.Is(err, ErrInsufficientEnergy):
		purchasesTotal.WithLabelValues("insufficient").Inc()
		return nil, err
	case err != nil:
		purchasesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	purchasesTotal.WithLabelValues("ok").Inc()
	s.log.Info("item purchased", zap.String("user", userID), zap.String("item", item.ID), zap.Int("energy", p.SparkEnergy))
	return &ScoreResult{Profile: p, NewAchievements: fresh}, nil
}

// Equip puts the item's icon into its slot. Ownership is not required.
func (s *ShopService) Equip(ctx context.Context, userID, itemID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: userId and itemId are required", ErrValidation)
	}
	item, ok := s.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	return s.profiles.mutate(ctx, userID, func(p *Profile) error {
		eq := p.EquippedMap()
		eq[item.Type] = item.Icon
		p.Equipped = datatypes.NewJSONType(eq)
		return nil
	})
}
