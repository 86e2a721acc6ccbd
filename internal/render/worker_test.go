package render

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ourlovestory/scrapbook/internal/preview"
	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

type fakeDriver struct {
	pdf    []byte
	err    error
	called int
}

func (f *fakeDriver) RenderPDF(ctx context.Context, url string, observe func(State)) ([]byte, error) {
	f.called++
	observe(StateBrowserLaunched)
	observe(StatePageLoaded)
	observe(StateAwaitingReady)
	observe(StateReady)
	if f.err != nil {
		return nil, f.err
	}
	observe(StateRasterized)
	return f.pdf, nil
}

type fakeDelivery struct {
	stored   []byte
	ownerID  string
	storeErr error
	signErr  error
}

func (f *fakeDelivery) Store(ctx context.Context, data []byte, ownerID string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.stored = data
	f.ownerID = ownerID
	return fmt.Sprintf("pdfs/%s/scrapbook-123.pdf", ownerID), nil
}

func (f *fakeDelivery) SignURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://storage.example.com/" + objectPath + "?sig=abc", nil
}

type countingRepo struct {
	*preview.MemoryRepository
	gets int
}

func (c *countingRepo) Get(ctx context.Context, id string) (*preview.Token, error) {
	c.gets++
	return c.MemoryRepository.Get(ctx, id)
}

func newTestWorker(t *testing.T) (*Worker, *preview.Service, *fakeDriver, *fakeDelivery, *countingRepo) {
	t.Helper()
	repo := &countingRepo{MemoryRepository: preview.NewMemoryRepository()}
	tokens := preview.NewService(repo)
	driver := &fakeDriver{pdf: []byte("%PDF-1.4 fake")}
	delivery := &fakeDelivery{}
	w := NewWorker(tokens, driver, delivery, "https://scrapbook.example.com")
	return w, tokens, driver, delivery, repo
}

func TestExport_Success(t *testing.T) {
	w, tokens, driver, delivery, _ := newTestWorker(t)
	ctx := context.Background()

	p := scrapbook.NewPage(scrapbook.KindRegular)
	p.Title = "Our First Memory"
	id, err := tokens.Mint(ctx, []scrapbook.Page{p}, "user-1")
	require.NoError(t, err)

	var states []State
	w.OnState = func(s State) { states = append(states, s) }
	w.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC) }

	res, err := w.Export(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "our-love-story-2026-08-28.pdf", res.FileName)
	require.Contains(t, res.DownloadURL, "pdfs/user-1/")
	require.Equal(t, 1, driver.called)
	require.Equal(t, []byte("%PDF-1.4 fake"), delivery.stored)
	require.Equal(t, "user-1", delivery.ownerID)

	require.Equal(t, []State{
		StateReceived, StateTokenValidated,
		StateBrowserLaunched, StatePageLoaded, StateAwaitingReady, StateReady, StateRasterized,
		StateUploaded, StateURLMinted, StateTokenInvalidated, StateComplete,
	}, states)

	// token is single-use: gone after a completed export
	tok, err := tokens.Resolve(ctx, id)
	require.NoError(t, err)
	require.Nil(t, tok)
}

func TestExport_MissingToken(t *testing.T) {
	w, _, driver, _, repo := newTestWorker(t)

	_, err := w.Export(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingToken)
	require.Zero(t, repo.gets, "missing token must not attempt resolution")
	require.Zero(t, driver.called)
}

func TestExport_UnknownToken(t *testing.T) {
	w, _, driver, _, _ := newTestWorker(t)

	_, err := w.Export(context.Background(), "deadbeefdeadbeef")
	require.ErrorIs(t, err, ErrTokenNotFound)
	require.Zero(t, driver.called, "unknown token must never launch a browser")
}

func TestExport_ExpiredTokenIsCleanedUp(t *testing.T) {
	w, tokens, driver, _, _ := newTestWorker(t)
	ctx := context.Background()

	id, err := tokens.Mint(ctx, nil, "user-2")
	require.NoError(t, err)

	// age the token past its TTL
	w.now = func() time.Time { return time.Now().Add(preview.TokenTTL + time.Minute) }

	_, err = w.Export(ctx, id)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.Zero(t, driver.called)

	// the stale entry was proactively deleted
	tok, err := tokens.Resolve(ctx, id)
	require.NoError(t, err)
	require.Nil(t, tok)
}

func TestExport_RenderFailure(t *testing.T) {
	w, tokens, driver, _, _ := newTestWorker(t)
	ctx := context.Background()
	driver.err = errors.New("browser crashed")

	id, err := tokens.Mint(ctx, nil, "user-3")
	require.NoError(t, err)

	var states []State
	w.OnState = func(s State) { states = append(states, s) }

	_, err = w.Export(ctx, id)
	require.Error(t, err)
	require.Contains(t, err.Error(), "browser crashed")
	require.Equal(t, StateError, states[len(states)-1])

	// no cleanup before the invalidation step: the token survives for a retry window
	tok, err := tokens.Resolve(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, tok)
}

func TestExport_UploadFailure(t *testing.T) {
	w, tokens, _, delivery, _ := newTestWorker(t)
	ctx := context.Background()
	delivery.storeErr = errors.New("bucket unavailable")

	id, err := tokens.Mint(ctx, nil, "user-4")
	require.NoError(t, err)

	_, err = w.Export(ctx, id)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bucket unavailable")
}

func TestExport_RecordsOutcome(t *testing.T) {
	w, tokens, driver, _, _ := newTestWorker(t)
	ctx := context.Background()

	type recorded struct{ owner, path, file, status string }
	var recs []recorded
	w.Record = func(ctx context.Context, ownerID, objectPath, fileName, status string) {
		recs = append(recs, recorded{ownerID, objectPath, fileName, status})
	}

	id, err := tokens.Mint(ctx, nil, "user-6")
	require.NoError(t, err)
	_, err = w.Export(ctx, id)
	require.NoError(t, err)

	require.Len(t, recs, 1)
	require.Equal(t, "user-6", recs[0].owner)
	require.Equal(t, "pdfs/user-6/scrapbook-123.pdf", recs[0].path)
	require.Equal(t, "complete", recs[0].status)

	driver.err = errors.New("crash")
	id2, err := tokens.Mint(ctx, nil, "user-6")
	require.NoError(t, err)
	_, err = w.Export(ctx, id2)
	require.Error(t, err)

	require.Len(t, recs, 2)
	require.Equal(t, "error", recs[1].status)
	require.Empty(t, recs[1].path)
}

func TestExport_SignFailure(t *testing.T) {
	w, tokens, _, delivery, _ := newTestWorker(t)
	ctx := context.Background()
	delivery.signErr = errors.New("signing key missing")

	id, err := tokens.Mint(ctx, nil, "user-5")
	require.NoError(t, err)

	_, err = w.Export(ctx, id)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signing key missing")
}
