package preview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

func TestMintResolve_RoundTrip(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	p := scrapbook.NewPage(scrapbook.KindRegular)
	p.Title = "Our First Memory"
	p.Images = []string{"https://cdn.example.com/a.jpg"}
	sections := []scrapbook.Page{p}

	id, err := svc.Mint(ctx, sections, "user-1")
	require.NoError(t, err)
	require.Len(t, id, 64) // 32 random bytes, hex encoded

	// mutating the caller's slice after mint must not affect the snapshot
	sections[0].Title = "edited"
	sections[0].Images[0] = "https://cdn.example.com/b.jpg"

	got, err := svc.Resolve(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "user-1", got.OwnerID)
	require.Equal(t, "Our First Memory", got.Sections[0].Title)
	require.Equal(t, "https://cdn.example.com/a.jpg", got.Sections[0].Images[0])
}

func TestResolve_UnknownToken(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	got, err := svc.Resolve(context.Background(), "deadbeef")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestResolve_IsPureLookup(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	id, err := svc.Mint(ctx, nil, "u")
	require.NoError(t, err)

	// the render surface may re-read the token mid-render
	for i := 0; i < 3; i++ {
		got, err := svc.Resolve(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
	}
}

func TestInvalidate_Idempotent(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	id, err := svc.Mint(ctx, nil, "u")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, id))
	require.NoError(t, svc.Invalidate(ctx, id))

	got, err := svc.Resolve(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestExpired_Boundary(t *testing.T) {
	minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := &Token{CreatedAt: minted}

	require.False(t, tok.Expired(minted.Add(TokenTTL-time.Millisecond)))
	require.True(t, tok.Expired(minted.Add(TokenTTL+time.Millisecond)))
}

func TestMint_UniqueIDs(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := svc.Mint(ctx, nil, "u")
		require.NoError(t, err)
		require.False(t, seen[id])
		seen[id] = true
	}
}
