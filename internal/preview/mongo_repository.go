package preview

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepository persists tokens in the "pdfPreviews" collection keyed by
// token id. Expiry is checked lazily by callers; a Mongo TTL index on
// createdAt could replace that, but export volume keeps the collection
// small either way.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, t *Token) error {
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Token, error) {
	var t Token
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
