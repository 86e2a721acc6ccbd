package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

type persistedScrapbook struct {
	OwnerID   string           `bson:"ownerId"`
	Pages     []scrapbook.Page `bson:"pages"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

// MongoRepo implements a MongoDB-backed repository. One document per owner,
// whole-page-list writes: the editor syncs the full section list on each
// debounced save, so partial updates buy nothing.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// one scrapbook per owner
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Get(ctx context.Context, ownerID string) (*scrapbook.Document, error) {
	var p persistedScrapbook
	err := m.col.FindOne(ctx, bson.M{"ownerId": ownerID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &scrapbook.Document{OwnerID: p.OwnerID, Pages: p.Pages}, nil
}

func (m *MongoRepo) Save(ctx context.Context, ownerID string, pages []scrapbook.Page) error {
	set := bson.M{"ownerId": ownerID, "pages": pages, "updatedAt": time.Now().UTC()}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, bson.M{"ownerId": ownerID}, bson.M{"$set": set}, opts)
	return err
}

func (m *MongoRepo) Delete(ctx context.Context, ownerID string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
