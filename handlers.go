package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

/*** Health ***/

func Health(store Store, label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "ok"
		if store == nil {
			state = "unavailable"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				state = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "SparkQuest backend is running",
			"mode":      label,
			"store":     state,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

/*** Quiz ***/

type NextQuestionReq struct {
	Subject    string `json:"subject"`
	Difficulty int    `json:"difficulty"`
}

func NextQuestion(quiz *QuizService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NextQuestionReq
		// an empty body means "any math question"
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondFail(c, http.StatusBadRequest, "bad request")
				return
			}
		}
		q, err := quiz.NextQuestion(c.Request.Context(), req.Subject, req.Difficulty)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"question": q})
	}
}

func AddQuestion(quiz *QuizService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in QInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondFail(c, http.StatusBadRequest, "bad request")
			return
		}
		q, err := quiz.AddQuestion(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"question": q})
	}
}

/*** Bosses & missions ***/

func GetBoss(quiz *QuizService) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := quiz.Boss(c.Request.Context(), c.Param("subject"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"boss": b})
	}
}

func ListMissions(c *gin.Context) {
	respondOK(c, gin.H{"missions": missions})
}
