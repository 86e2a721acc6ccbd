package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ourlovestory/scrapbook/internal/database"
)

// Record is the Mongo representation of one export attempt. ObjectPath is
// empty for failed attempts.
type Record struct {
	OwnerID    string    `bson:"userId" json:"userId"`
	ObjectPath string    `bson:"objectPath,omitempty" json:"objectPath,omitempty"`
	FileName   string    `bson:"fileName,omitempty" json:"fileName,omitempty"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

const collection = "export_history"

// Save appends an export record. If mongoURI is empty the function is a
// no-op, so history stays optional in development setups.
func Save(ctx context.Context, mongoURI, databaseName string, rec *Record) error {
	if mongoURI == "" {
		return nil
	}
	client, err := database.ConnectMongo(ctx, mongoURI, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	col := client.Database(databaseName).Collection(collection)
	if _, err := col.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("save export record: %w", err)
	}
	return nil
}

// List returns a user's export records, newest first. Returns nil when
// mongoURI is empty.
func List(ctx context.Context, mongoURI, databaseName, ownerID string, limit int64) ([]Record, error) {
	if mongoURI == "" {
		return nil, nil
	}
	client, err := database.ConnectMongo(ctx, mongoURI, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	col := client.Database(databaseName).Collection(collection)
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit)
	cur, err := col.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
