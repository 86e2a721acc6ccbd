package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourlovestory/scrapbook/internal/preview"
	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

func newPreviewRouter(t *testing.T) (*gin.Engine, *preview.Service, *preview.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := gin.New()
	repo := preview.NewMemoryRepository()
	tokens := preview.NewService(repo)
	RegisterPreviewRoutes(g, tokens)
	return g, tokens, repo
}

func TestPdfPreview_RendersSections(t *testing.T) {
	g, tokens, _ := newPreviewRouter(t)

	p := scrapbook.NewPage(scrapbook.KindRegular)
	p.Title = "Picnic at the Lake"
	p.Images = []string{"https://img.example/lake.jpg"}
	id, err := tokens.Mint(context.Background(), []scrapbook.Page{p}, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pdf-preview/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "Picnic at the Lake")
	assert.Contains(t, body, "https://img.example/lake.jpg")
	assert.Contains(t, body, "window.pdfReady")

	// rendering must not consume the token
	tok, err := tokens.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, tok)
}

func TestPdfPreview_UnknownToken(t *testing.T) {
	g, _, _ := newPreviewRouter(t)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pdf-preview/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
	assert.NotContains(t, w.Body.String(), "window.pdfReady")
}

func TestPdfPreview_ExpiredToken(t *testing.T) {
	g, _, repo := newPreviewRouter(t)

	stale := &preview.Token{
		ID:        "stale",
		Sections:  []scrapbook.Page{scrapbook.NewPage(scrapbook.KindRegular)},
		CreatedAt: time.Now().Add(-preview.TokenTTL - time.Minute),
	}
	require.NoError(t, repo.Create(context.Background(), stale))

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pdf-preview/stale", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")
}
