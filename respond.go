package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, payload gin.H) {
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

func respondFail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// respondError maps service errors onto HTTP statuses. Unclassified errors
// are store failures and are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respondFail(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInsufficientEnergy), errors.Is(err, ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrNoSelection),
		errors.Is(err, ErrAlreadyRevealed),
		errors.Is(err, ErrNotRevealed),
		errors.Is(err, ErrSessionComplete):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
