package history

import (
	"context"
	"testing"
	"time"
)

func TestSaveListNoopWhenMongoURIEmpty(t *testing.T) {
	rec := &Record{OwnerID: "u1", ObjectPath: "pdfs/u1/scrapbook-1.pdf", Status: "complete", CreatedAt: time.Now()}
	// should be noop and not error when mongoURI empty
	if err := Save(context.Background(), "", "", rec); err != nil {
		t.Fatalf("expected no error for empty mongoURI, got %v", err)
	}
	// List should return nil, nil when mongoURI empty
	if got, err := List(context.Background(), "", "", "u1", 10); err != nil || got != nil {
		t.Fatalf("expected nil result for empty mongoURI, got %v err=%v", got, err)
	}
}
