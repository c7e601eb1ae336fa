package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type LoginReq struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ScoreReq struct {
	UserID     string `json:"userId"`
	ScoreToAdd *int   `json:"scoreToAdd"`
}

// POST /api/auth/login
func Login(profiles *ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginReq
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
			respondFail(c, http.StatusBadRequest, "email is required")
			return
		}
		p, created, err := profiles.Login(c.Request.Context(), req.Email, req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		if created {
			loginsTotal.WithLabelValues("created").Inc()
		} else {
			loginsTotal.WithLabelValues("existing").Inc()
		}
		respondOK(c, gin.H{"user": p, "created": created})
	}
}

// POST /api/score/update
func UpdateScore(profiles *ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScoreReq
		if err := c.ShouldBindJSON(&req); err != nil || req.ScoreToAdd == nil {
			respondFail(c, http.StatusBadRequest, "userId and scoreToAdd are required")
			return
		}
		res, err := profiles.UpdateScore(c.Request.Context(), req.UserID, *req.ScoreToAdd)
		if err != nil {
			respondError(c, err)
			return
		}
		var last *Achievement
		if n := len(res.NewAchievements); n > 0 {
			last = &res.NewAchievements[n-1]
		}
		respondOK(c, gin.H{
			"newEnergy":       res.Profile.SparkEnergy,
			"newAchievement":  last,
			"newAchievements": res.NewAchievements,
		})
	}
}

// GET /api/student/me?userId=...
func GetMe(profiles *ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, stats, err := profiles.Summary(c.Request.Context(), c.Query("userId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"profile": p, "stats": stats})
	}
}

// POST /api/progress/log
func LogProgress(profiles *ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ProgressInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondFail(c, http.StatusBadRequest, "bad request")
			return
		}
		if err := profiles.LogProgress(c.Request.Context(), in); err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{})
	}
}
