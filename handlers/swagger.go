package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>scrapbook — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the editor API and the export pipeline.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "scrapbook", "version": "v0.1.0" },
  "paths": {
    "/api/scrapbook": {
      "get": { "summary": "Get the caller's scrapbook pages", "responses": { "200": { "description": "page list (empty for new users)" } } },
      "put": { "summary": "Replace the caller's page list", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"pages":{"type":"array"}}}}}}, "responses": { "200": { "description": "saved" } } },
      "delete": { "summary": "Delete the caller's scrapbook", "responses": { "204": { "description": "deleted" }, "404": { "description": "no scrapbook" } } }
    },
    "/api/scrapbook/pages/{id}/move": {
      "post": { "summary": "Swap a page with its up/down neighbor", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"direction":{"type":"string","enum":["up","down"]}}}}}}, "responses": { "200": { "description": "reordered page list" }, "404": { "description": "unknown page" }, "409": { "description": "page is locked" } } }
    },
    "/api/pdf-previews": {
      "post": { "summary": "Mint a short-lived export token over the caller's sections", "responses": { "201": { "description": "token and expiry" }, "400": { "description": "scrapbook has no sections" } } }
    },
    "/pdf-preview/{token}": {
      "get": { "summary": "Print-oriented render surface for the headless browser", "responses": { "200": { "description": "HTML surface" }, "404": { "description": "invalid or expired token" } } }
    },
    "/generatePdf": {
      "get": { "summary": "Render the tokenized snapshot to PDF and return a signed download URL", "parameters": [ { "name": "token", "in": "query", "required": true, "schema": { "type": "string" } } ], "responses": { "200": { "description": "downloadUrl and fileName" }, "400": { "description": "missing token" }, "404": { "description": "invalid or expired token" }, "500": { "description": "render or delivery failure" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
