package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ourlovestory/scrapbook/internal/scrapbook"
	"github.com/ourlovestory/scrapbook/internal/scrapbook/repository"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*scrapbook.Document, error)
	Save(ctx context.Context, ownerID string, pages []scrapbook.Page) error
	Delete(ctx context.Context, ownerID string) error
}

// Service defines the scrapbook business operations used by the handler layer.
type Service interface {
	Get(ctx context.Context, ownerID string) (*scrapbook.Document, error)
	Save(ctx context.Context, ownerID string, pages []scrapbook.Page) error
	Move(ctx context.Context, ownerID, pageID, direction string) (*scrapbook.Document, error)
	Delete(ctx context.Context, ownerID string) error
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return &repoService{repo: repository.NewMemoryRepo()}
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(col *mongo.Collection) Service {
	return &repoService{repo: repository.NewMongoRepo(col)}
}

type repoService struct {
	repo Repository
}

func (s *repoService) Get(ctx context.Context, ownerID string) (*scrapbook.Document, error) {
	d, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *repoService) Save(ctx context.Context, ownerID string, pages []scrapbook.Page) error {
	// assign stable IDs to pages created client-side without one
	for i := range pages {
		if pages[i].ID == "" {
			pages[i].ID = uuid.NewString()
		}
	}
	return s.repo.Save(ctx, ownerID, pages)
}

// Move swaps a page with its up/down neighbor and persists the permutation.
func (s *repoService) Move(ctx context.Context, ownerID, pageID, direction string) (*scrapbook.Document, error) {
	d, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	switch direction {
	case "up":
		err = d.MoveUp(pageID)
	case "down":
		err = d.MoveDown(pageID)
	default:
		return nil, errors.New("direction must be up or down")
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, ownerID, d.Pages); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *repoService) Delete(ctx context.Context, ownerID string) error {
	if err := s.repo.Delete(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
