package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

// The surface is the print-oriented view of a scrapbook snapshot, consumed
// only by the automated PDF driver. Every page renders into a fixed
// A4-landscape container; a forced break separates consecutive pages and no
// break may fall inside a page. Once every referenced image has loaded or
// failed, the embedded script sets window.pdfReady and dispatches the
// "pdf-ready" event the driver waits on.

type pageView struct {
	Page        scrapbook.Page
	Description template.HTML
	Groups      []scrapbook.YearGroup
	// Swapped flips the text/image column order on odd page indexes to
	// vary the printed layout.
	Swapped    bool
	BreakAfter bool
}

type surfaceData struct {
	Pages     []pageView
	ImageURLs []string
}

// Surface renders the snapshot to a standalone HTML document.
func Surface(pages []scrapbook.Page) (string, error) {
	data := surfaceData{ImageURLs: scrapbook.ImageURLs(pages)}
	for i, p := range pages {
		v := pageView{
			Page:        p,
			Description: template.HTML(p.Description),
			Swapped:     i%2 == 1,
			BreakAfter:  i < len(pages)-1,
		}
		if p.Type == scrapbook.KindTimeline {
			v.Groups = scrapbook.GroupEventsByYear(p.Events)
		}
		data.Pages = append(data.Pages, v)
	}
	var buf bytes.Buffer
	if err := surfaceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render surface: %w", err)
	}
	return buf.String(), nil
}

// SurfaceError renders the terminal invalid/expired state. No partial
// content and no readiness script: the driver falls back to its timeout.
func SurfaceError(message string) string {
	var buf bytes.Buffer
	// template with a single string field never fails to execute
	_ = errorTmpl.Execute(&buf, message)
	return buf.String()
}

var surfaceTmpl = template.Must(template.New("surface").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Scrapbook PDF Preview</title>
<style>
  * { margin: 0; box-sizing: border-box; }
  body { background: #fff; font-family: Georgia, serif; }
  .sheet {
    width: 100%;
    aspect-ratio: 1.414 / 1;
    padding: 40px;
    background: #fff;
    page-break-inside: avoid;
    overflow: hidden;
  }
  .sheet.break-after { page-break-after: always; }
  .regular-title {
    font-size: 2.5rem;
    font-weight: bold;
    text-transform: uppercase;
    letter-spacing: 0.05em;
    border-bottom: 2px solid #e9d5ff;
    padding-bottom: 16px;
    margin-bottom: 24px;
  }
  .regular-body { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; height: calc(100% - 110px); }
  .regular-body.no-images { grid-template-columns: 1fr; }
  .prose { background: #fef2f2; padding: 24px; border-radius: 8px; font-size: 1.1rem; line-height: 1.8; color: #374151; }
  .prose p { margin-bottom: 1em; }
  .photos { column-count: 2; column-gap: 8px; }
  .photos img { width: 100%; object-fit: cover; border-radius: 8px; display: block; margin-bottom: 8px; break-inside: avoid; }
  .title-sheet {
    height: 100%;
    display: flex; flex-direction: column; align-items: center; justify-content: center;
    text-align: center;
    background: linear-gradient(135deg, #fdf2f8 0%, #fce7f3 50%, #fecdd3 100%);
    position: relative;
  }
  .corners { position: absolute; inset: 24px; pointer-events: none; }
  .corners::before, .corners::after { content: ""; position: absolute; width: 48px; height: 48px; border: 3px solid #db2777; }
  .corners::before { top: 0; left: 0; border-right: none; border-bottom: none; }
  .corners::after { bottom: 0; right: 0; border-left: none; border-top: none; }
  .title-main { font-size: 4rem; font-weight: bold; color: #db2777; text-transform: uppercase; letter-spacing: 0.1em; margin-bottom: 16px; }
  .title-sub { font-size: 1.5rem; color: #9f1239; font-style: italic; }
  .title-caption { font-size: 2rem; color: #db2777; font-style: italic; margin-top: 24px; }
  .timeline-title { font-size: 3rem; font-weight: bold; text-align: center; color: #db2777; margin-bottom: 48px; }
  .timeline-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 32px; padding: 0 40px; }
  .year-badge { display: inline-block; min-width: 120px; padding: 12px 20px; background: #db2777; color: #fff; border-radius: 24px; text-align: center; font-weight: bold; font-size: 1.2rem; margin-bottom: 12px; }
  .event { margin-bottom: 16px; }
  .event-date { font-weight: 600; color: #db2777; font-size: 1.1rem; }
  .event-desc { font-size: 1.1rem; color: #374151; line-height: 1.6; }
  @media print { body { margin: 0; padding: 0; } }
</style>
</head>
<body>
{{range .Pages}}<div class="sheet{{if .BreakAfter}} break-after{{end}}" data-section-id="{{.Page.ID}}">
{{if eq .Page.Type "title"}}  <div class="title-sheet">
    <div class="corners"></div>
    <div class="title-main">{{if .Page.Title}}{{.Page.Title}}{{else}}Our Love Story{{end}}</div>
    {{if .Description}}<div class="title-sub">{{.Description}}</div>{{end}}
    {{if .Page.Subtitle}}<div class="title-caption">{{.Page.Subtitle}}</div>{{end}}
  </div>
{{else if eq .Page.Type "timeline"}}  <div class="timeline-title">{{if .Page.Title}}{{.Page.Title}}{{else}}Our Timeline{{end}}</div>
  <div class="timeline-grid">
  {{range .Groups}}  <div class="year-group">
      <div class="year-badge">{{.Year}}</div>
    {{range .Events}}  <div class="event"><div class="event-date">{{.Date}}</div><div class="event-desc">{{.Description}}</div></div>
    {{end}}</div>
  {{end}}</div>
{{else}}  {{if .Page.Title}}<div class="regular-title">{{.Page.Title}}</div>{{end}}
  <div class="regular-body{{if not .Page.Images}} no-images{{end}}">
  {{if .Swapped}}{{template "photos" .}}{{template "prose" .}}{{else}}{{template "prose" .}}{{template "photos" .}}{{end}}
  </div>
{{end}}</div>
{{end}}
<script>
(function () {
  var urls = {{.ImageURLs}};
  function signal() {
    window.pdfReady = true;
    window.dispatchEvent(new CustomEvent('pdf-ready'));
  }
  if (!urls || urls.length === 0) { signal(); return; }
  var pending = urls.length;
  function settle() { if (--pending === 0) signal(); }
  urls.forEach(function (u) {
    var img = new Image();
    img.onload = settle;
    img.onerror = settle;
    img.src = u;
  });
})();
</script>
</body>
</html>
{{define "prose"}}{{if .Description}}<div class="prose">{{.Description}}</div>{{end}}{{end}}
{{define "photos"}}{{if .Page.Images}}<div class="photos">{{range .Page.Images}}<img src="{{.}}" crossorigin="anonymous">{{end}}</div>{{end}}{{end}}`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Scrapbook PDF Preview</title></head>
<body style="min-height:100vh;display:flex;align-items:center;justify-content:center;background:#fff;font-family:Georgia,serif">
<p style="color:#b91c1c">{{.}}</p>
</body>
</html>`))
