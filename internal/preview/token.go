package preview

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

// TokenTTL is the validity window of an export token. The window only needs
// to cover one render pass; the signed download URL has its own, longer TTL.
const TokenTTL = 5 * time.Minute

// Token is a bearer capability referencing a point-in-time snapshot of a
// user's scrapbook. Anyone holding the ID can read the snapshot until it
// expires, so IDs come from crypto/rand. The token is not a security
// boundary against a targeted attacker inside the expiry window.
type Token struct {
	ID        string           `json:"id" bson:"_id"`
	Sections  []scrapbook.Page `json:"sections" bson:"sections"`
	OwnerID   string           `json:"userId" bson:"userId"`
	CreatedAt time.Time        `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the token is past its TTL at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > TokenTTL
}

// Repository provides token persistence operations. Get returns (nil, nil)
// when the token does not exist; Delete is idempotent.
type Repository interface {
	Create(ctx context.Context, t *Token) error
	Get(ctx context.Context, id string) (*Token, error)
	Delete(ctx context.Context, id string) error
}

// Service wraps a Repository with token minting.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Mint snapshots the given sections under a fresh unguessable ID and
// returns the ID. The sections are deep-copied at mint time.
func (s *Service) Mint(ctx context.Context, sections []scrapbook.Page, ownerID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	id := hex.EncodeToString(b)
	doc := scrapbook.Document{Pages: sections}
	t := &Token{
		ID:        id,
		Sections:  doc.Snapshot(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve is a pure lookup: it never mutates or deletes the entry, because
// the render surface may re-fetch the token mid-render (page reload).
// Expiry is the caller's decision via Token.Expired.
func (s *Service) Resolve(ctx context.Context, id string) (*Token, error) {
	return s.repo.Get(ctx, id)
}

// Invalidate deletes the token. Idempotent.
func (s *Service) Invalidate(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
