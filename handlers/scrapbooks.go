package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ourlovestory/scrapbook/internal/preview"
	"github.com/ourlovestory/scrapbook/internal/scrapbook"
	"github.com/ourlovestory/scrapbook/internal/scrapbook/service"
	"github.com/ourlovestory/scrapbook/pkg/middleware"
)

// RegisterScrapbookRoutes registers the authenticated editor API: reading
// and writing the caller's scrapbook, reordering pages, and minting export
// tokens for the PDF pipeline.
func RegisterScrapbookRoutes(r *gin.Engine, svc service.Service, tokens *preview.Service, auth gin.HandlerFunc) {
	api := r.Group("/api", auth)

	api.GET("/scrapbook", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), middleware.Subject(c))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				// a user without a saved scrapbook starts empty
				c.JSON(http.StatusOK, gin.H{"pages": []scrapbook.Page{}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pages": d.Pages})
	})

	// the editor syncs the whole page list on each debounced save
	api.PUT("/scrapbook", func(c *gin.Context) {
		var req struct {
			Pages []scrapbook.Page `json:"pages"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.Save(c.Request.Context(), middleware.Subject(c), req.Pages); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pages": len(req.Pages)})
	})

	api.DELETE("/scrapbook", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.Subject(c)); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.POST("/scrapbook/pages/:id/move", func(c *gin.Context) {
		var req struct {
			Direction string `json:"direction"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := svc.Move(c.Request.Context(), middleware.Subject(c), c.Param("id"), req.Direction)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"pages": d.Pages})
		case errors.Is(err, service.ErrNotFound), errors.Is(err, scrapbook.ErrPageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, scrapbook.ErrPageLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "page is locked"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
	})

	// mint an export token over the caller's current sections; the export
	// orchestrator hands the token to /generatePdf
	api.POST("/pdf-previews", func(c *gin.Context) {
		var req struct {
			Sections []scrapbook.Page `json:"sections"`
		}
		// body is optional: default to the saved scrapbook
		_ = c.ShouldBindJSON(&req)

		sections := req.Sections
		if sections == nil {
			d, err := svc.Get(c.Request.Context(), middleware.Subject(c))
			if err != nil && !errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if d != nil {
				sections = d.Pages
			}
		}
		if len(sections) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scrapbook has no sections"})
			return
		}

		id, err := tokens.Mint(c.Request.Context(), sections, middleware.Subject(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": id, "expiresIn": int(preview.TokenTTL.Seconds())})
	})
}
