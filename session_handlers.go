package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StartSessionReq struct {
	UserID         string `json:"userId"`
	TotalQuestions int    `json:"totalQuestions"`
}

type SelectReq struct {
	Index *int `json:"index"`
}

// SessionHandlers serves the quiz session API. profiles is nil when the
// store is unavailable; sessions then run without crediting anyone.
type SessionHandlers struct {
	sessions *SessionManager
	profiles *ProfileService
	log      *zap.Logger
}

func NewSessionHandlers(sessions *SessionManager, profiles *ProfileService, log *zap.Logger) *SessionHandlers {
	return &SessionHandlers{sessions: sessions, profiles: profiles, log: log.Named("sessions")}
}

func (h *SessionHandlers) Register(g *gin.RouterGroup) {
	g.POST("/start", h.Start)
	g.GET("/:id", h.Get)
	g.POST("/:id/select", h.Select)
	g.POST("/:id/submit", h.Submit)
	g.POST("/:id/next", h.Next)
	g.POST("/:id/reset", h.Reset)
}

func (h *SessionHandlers) Start(c *gin.Context) {
	var req StartSessionReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFail(c, http.StatusBadRequest, "bad request")
			return
		}
	}
	if req.UserID != "" && h.profiles != nil {
		if _, err := h.profiles.Get(c.Request.Context(), req.UserID); err != nil {
			respondError(c, err)
			return
		}
	}
	respondOK(c, gin.H{"session": h.sessions.Start(req.UserID, req.TotalQuestions)})
}

func (h *SessionHandlers) Get(c *gin.Context) {
	h.step(c, nil)
}

func (h *SessionHandlers) Select(c *gin.Context) {
	var req SelectReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		respondFail(c, http.StatusBadRequest, "index is required")
		return
	}
	h.step(c, func(s *Session) error { return s.SelectAnswer(*req.Index) })
}

func (h *SessionHandlers) Submit(c *gin.Context) {
	var res *AnswerResult
	var userID string
	view, err := h.sessions.Do(c.Param("id"), func(s *Session) error {
		var err error
		res, err = s.Submit()
		userID = s.UserID
		return err
	})
	if err != nil {
		respondSessionError(c, view, err)
		return
	}
	if userID != "" {
		h.credit(c.Request.Context(), userID, res)
	}
	respondOK(c, gin.H{"session": view, "result": res})
}

func (h *SessionHandlers) Next(c *gin.Context) {
	h.step(c, func(s *Session) error { return s.Next() })
}

func (h *SessionHandlers) Reset(c *gin.Context) {
	h.step(c, func(s *Session) error { s.Reset(); return nil })
}

func (h *SessionHandlers) step(c *gin.Context, fn func(s *Session) error) {
	view, err := h.sessions.Do(c.Param("id"), fn)
	if err != nil {
		respondSessionError(c, view, err)
		return
	}
	respondOK(c, gin.H{"session": view})
}

// credit records the answer against the bound profile. Failures are logged;
// the session itself has already advanced.
func (h *SessionHandlers) credit(ctx context.Context, userID string, res *AnswerResult) {
	if h.profiles == nil {
		return
	}
	correct := res.Correct
	if err := h.profiles.LogProgress(ctx, ProgressInput{UserID: userID, Subject: res.Subject, IsCorrect: &correct}); err != nil {
		h.log.Warn("log session answer failed", zap.String("user", userID), zap.Error(err))
	}
	if !correct {
		return
	}
	if _, err := h.profiles.UpdateScore(ctx, userID, EnergyPerCorrect); err != nil {
		h.log.Warn("credit session energy failed", zap.String("user", userID), zap.Error(err))
	}
}

func respondSessionError(c *gin.Context, view SessionView, err error) {
	status := statusFor(err)
	if view.ID == "" {
		respondFail(c, status, err.Error())
		return
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error(), "session": view})
}
