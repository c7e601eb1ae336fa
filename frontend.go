package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Frontend serves the single-page app for every unmatched GET. Existing
// files under dir are served as-is, everything else gets index.html.
// Unmatched API calls and other methods get a JSON 404.
func Frontend(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			respondFail(c, http.StatusNotFound, "route not found")
			return
		}
		if rel := filepath.Clean("/" + path); rel != "/" {
			candidate := filepath.Join(dir, filepath.FromSlash(rel))
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				c.Status(http.StatusOK)
				c.File(candidate)
				return
			}
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			respondFail(c, http.StatusNotFound, "frontend not found")
			return
		}
		// NoRoute handlers start out as 404
		c.Status(http.StatusOK)
		c.File(index)
	}
}
