package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ourlovestory/scrapbook/internal/preview"
	"github.com/ourlovestory/scrapbook/pkg/logger"
)

// State is one step of the export pipeline. Steps run strictly in order;
// ERROR is reachable from any of them.
type State string

const (
	StateReceived         State = "RECEIVED"
	StateTokenValidated   State = "TOKEN_VALIDATED"
	StateBrowserLaunched  State = "BROWSER_LAUNCHED"
	StatePageLoaded       State = "PAGE_LOADED"
	StateAwaitingReady    State = "AWAITING_READY_SIGNAL"
	StateReady            State = "READY"
	StateRasterized       State = "RASTERIZED"
	StateUploaded         State = "UPLOADED"
	StateURLMinted        State = "URL_MINTED"
	StateTokenInvalidated State = "TOKEN_INVALIDATED"
	StateComplete         State = "COMPLETE"
	StateError            State = "ERROR"
)

var (
	ErrMissingToken  = errors.New("Missing token parameter")
	ErrTokenNotFound = errors.New("Invalid or expired token")
	ErrTokenExpired  = errors.New("Token has expired")
)

// SignedURLTTL is the validity of the minted download URL, independent of
// the export token's 5 minute window.
const SignedURLTTL = time.Hour

// Driver drives a headless browser against the render surface and returns
// the rasterized PDF bytes. Implementations report pipeline progress
// through observe (BROWSER_LAUNCHED through RASTERIZED).
type Driver interface {
	RenderPDF(ctx context.Context, url string, observe func(State)) ([]byte, error)
}

// Delivery stores rendered bytes and mints time-boxed download URLs.
type Delivery interface {
	Store(ctx context.Context, data []byte, ownerID string) (string, error)
	SignURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error)
}

// Result is the successful outcome of one export.
type Result struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

// Worker converts one export token into a delivered PDF. Each Export call
// is independent; the token store is the only shared state, so concurrent
// exports do not interfere.
type Worker struct {
	tokens   *preview.Service
	driver   Driver
	delivery Delivery
	baseURL  string

	// OnState observes every transition; nil is fine.
	OnState func(State)
	// Record persists export outcomes (status "complete" or "error");
	// nil disables history.
	Record func(ctx context.Context, ownerID, objectPath, fileName, status string)
	// now is swappable for expiry tests.
	now func() time.Time
}

func NewWorker(tokens *preview.Service, driver Driver, delivery Delivery, baseURL string) *Worker {
	return &Worker{
		tokens:   tokens,
		driver:   driver,
		delivery: delivery,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

func (w *Worker) transition(s State) {
	logger.Debugf("export state: %s", s)
	if w.OnState != nil {
		w.OnState(s)
	}
}

// Export runs the full pipeline for one token. Failures are terminal: the
// caller re-initiates with a fresh token if it wants a retry.
func (w *Worker) Export(ctx context.Context, tokenID string) (*Result, error) {
	res, err := w.export(ctx, tokenID)
	if err != nil {
		w.transition(StateError)
		return nil, err
	}
	return res, nil
}

func (w *Worker) export(ctx context.Context, tokenID string) (*Result, error) {
	w.transition(StateReceived)
	if tokenID == "" {
		// fail fast: no token lookup, no browser
		return nil, ErrMissingToken
	}

	tok, err := w.tokens.Resolve(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	if tok == nil {
		return nil, ErrTokenNotFound
	}
	if tok.Expired(w.now()) {
		// proactively drop the stale entry; lazy expiry is the policy
		if derr := w.tokens.Invalidate(ctx, tokenID); derr != nil {
			logger.Warnf("failed to delete expired token %s: %v", tokenID, derr)
		}
		return nil, ErrTokenExpired
	}
	w.transition(StateTokenValidated)

	previewURL := fmt.Sprintf("%s/pdf-preview/%s", w.baseURL, tokenID)
	logger.Infof("generating PDF from %s", previewURL)

	pdf, err := w.driver.RenderPDF(ctx, previewURL, w.transition)
	if err != nil {
		w.record(ctx, tok.OwnerID, "", "", "error")
		return nil, fmt.Errorf("render: %w", err)
	}
	logger.Infof("PDF rendered, size=%.2f MB", float64(len(pdf))/1024/1024)

	objectPath, err := w.delivery.Store(ctx, pdf, tok.OwnerID)
	if err != nil {
		w.record(ctx, tok.OwnerID, "", "", "error")
		return nil, fmt.Errorf("store pdf: %w", err)
	}
	w.transition(StateUploaded)

	url, err := w.delivery.SignURL(ctx, objectPath, SignedURLTTL)
	if err != nil {
		w.record(ctx, tok.OwnerID, objectPath, "", "error")
		return nil, fmt.Errorf("sign url: %w", err)
	}
	w.transition(StateURLMinted)

	// best-effort cleanup: failure is logged, never surfaced
	if err := w.tokens.Invalidate(ctx, tokenID); err != nil {
		logger.Warnf("failed to delete token %s after export: %v", tokenID, err)
	}
	w.transition(StateTokenInvalidated)

	res := &Result{
		DownloadURL: url,
		FileName:    fmt.Sprintf("our-love-story-%s.pdf", w.now().Format("2006-01-02")),
	}
	w.record(ctx, tok.OwnerID, objectPath, res.FileName, "complete")
	w.transition(StateComplete)
	return res, nil
}

func (w *Worker) record(ctx context.Context, ownerID, objectPath, fileName, status string) {
	if w.Record != nil {
		w.Record(ctx, ownerID, objectPath, fileName, status)
	}
}
