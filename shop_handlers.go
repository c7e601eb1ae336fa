package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ShopReq struct {
	UserID string `json:"userId"`
	ItemID string `json:"itemId"`
}

func ListShopItems(shop *ShopService) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondOK(c, gin.H{"items": shop.Items()})
	}
}

func BuyItem(shop *ShopService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShopReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFail(c, http.StatusBadRequest, "bad request")
			return
		}
		res, err := shop.Buy(c.Request.Context(), req.UserID, req.ItemID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{
			"newInventory":    res.Profile.Inventory,
			"newEnergy":       res.Profile.SparkEnergy,
			"newAchievements": res.NewAchievements,
		})
	}
}

func EquipItem(shop *ShopService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShopReq
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFail(c, http.StatusBadRequest, "bad request")
			return
		}
		p, err := shop.Equip(c.Request.Context(), req.UserID, req.ItemID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"equipped": p.EquippedMap()})
	}
}
