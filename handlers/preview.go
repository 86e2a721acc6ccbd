package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ourlovestory/scrapbook/internal/preview"
	"github.com/ourlovestory/scrapbook/internal/render"
	"github.com/ourlovestory/scrapbook/pkg/logger"
)

// RegisterPreviewRoutes exposes the print-oriented render surface consumed
// by the headless PDF driver. Possession of a valid token is the only
// authentication; the route never mutates the token store.
func RegisterPreviewRoutes(r *gin.Engine, tokens *preview.Service) {
	r.GET("/pdf-preview/:token", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")

		tok, err := tokens.Resolve(c.Request.Context(), c.Param("token"))
		if err != nil {
			logger.Errorf("preview token lookup failed: %v", err)
			c.String(http.StatusInternalServerError, render.SurfaceError("Failed to load preview"))
			return
		}
		if tok == nil {
			c.String(http.StatusNotFound, render.SurfaceError("Invalid or expired token"))
			return
		}
		if tok.Expired(time.Now()) {
			c.String(http.StatusNotFound, render.SurfaceError("Token has expired"))
			return
		}

		html, err := render.Surface(tok.Sections)
		if err != nil {
			logger.Errorf("preview render failed: %v", err)
			c.String(http.StatusInternalServerError, render.SurfaceError("Failed to load preview"))
			return
		}
		c.String(http.StatusOK, html)
	})
}
