package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ourlovestory/scrapbook/internal/render"
	"github.com/ourlovestory/scrapbook/pkg/metrics"
)

// RegisterExportRoutes exposes the PDF generation endpoint. The route is
// called cross-origin by the editor, hence the permissive CORS headers and
// the preflight handler. requestTimeout is the hard ceiling for one export
// (the soft readiness timeout lives inside the browser driver).
func RegisterExportRoutes(r *gin.Engine, worker *render.Worker, requestTimeout time.Duration) {
	r.OPTIONS("/generatePdf", func(c *gin.Context) {
		exportCORS(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/generatePdf", generatePdfHandler(worker, requestTimeout))
}

func exportCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}

func generatePdfHandler(worker *render.Worker, requestTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		exportCORS(c)
		start := time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		res, err := worker.Export(ctx, c.Query("token"))

		status := http.StatusOK
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{
				"success":     true,
				"downloadUrl": res.DownloadURL,
				"fileName":    res.FileName,
			})
		case errors.Is(err, render.ErrMissingToken):
			status = http.StatusBadRequest
			c.JSON(status, gin.H{"error": "Missing token parameter"})
		case errors.Is(err, render.ErrTokenNotFound):
			status = http.StatusNotFound
			c.JSON(status, gin.H{"error": "Invalid or expired token"})
		case errors.Is(err, render.ErrTokenExpired):
			status = http.StatusNotFound
			c.JSON(status, gin.H{"error": "Token has expired"})
		default:
			status = http.StatusInternalServerError
			c.JSON(status, gin.H{"error": "Failed to generate PDF", "message": err.Error()})
		}

		metrics.PDFExports.WithLabelValues(strconv.Itoa(status)).Inc()
		metrics.PDFExportDuration.Observe(time.Since(start).Seconds())
	}
}
