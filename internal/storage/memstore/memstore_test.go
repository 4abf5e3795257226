package memstore

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gryroach/ugc-service/internal/storage"
)

type record struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Score int    `bson:"score"`
}

func TestStore_InsertAndFindOne(t *testing.T) {
	ctx := context.Background()
	store := New()

	if err := store.InsertOne(ctx, "records", record{ID: "a", Name: "first", Score: 3}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	var got record
	if err := store.FindOne(ctx, "records", bson.M{"_id": "a"}, &got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Name != "first" || got.Score != 3 {
		t.Errorf("unexpected document: %+v", got)
	}

	err := store.FindOne(ctx, "records", bson.M{"_id": "missing"}, &got)
	if !errors.Is(err, storage.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestStore_FindManyOperators(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, r := range []record{
		{ID: "a", Score: 1},
		{ID: "b", Score: 5},
		{ID: "c", Score: 9},
	} {
		if err := store.InsertOne(ctx, "records", r); err != nil {
			t.Fatalf("InsertOne failed: %v", err)
		}
	}

	var got []record
	filter := bson.M{"score": bson.M{"$gte": 2, "$lte": 8}}
	if err := store.FindMany(ctx, "records", filter, storage.Sort{}, 0, 10, &got); err != nil {
		t.Fatalf("FindMany failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected only b, got %+v", got)
	}

	got = nil
	filter = bson.M{"score": bson.M{"$ne": 5}}
	if err := store.FindMany(ctx, "records", filter, storage.Sort{Field: "score"}, 0, 10, &got); err != nil {
		t.Fatalf("FindMany failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("expected a then c, got %+v", got)
	}
}

func TestStore_FindManySortSkipLimit(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, r := range []record{
		{ID: "a", Score: 3},
		{ID: "b", Score: 1},
		{ID: "c", Score: 2},
	} {
		if err := store.InsertOne(ctx, "records", r); err != nil {
			t.Fatalf("InsertOne failed: %v", err)
		}
	}

	var got []record
	if err := store.FindMany(ctx, "records", bson.M{}, storage.Sort{Field: "score", Order: storage.SortDesc}, 1, 1, &got); err != nil {
		t.Fatalf("FindMany failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("expected the middle document by descending score, got %+v", got)
	}
}

func TestStore_UpdateOneSetAndInc(t *testing.T) {
	ctx := context.Background()
	store := New()

	if err := store.InsertOne(ctx, "records", record{ID: "a", Name: "old", Score: 1}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	result, err := store.UpdateOne(ctx, "records",
		bson.M{"_id": "a"},
		bson.M{"$set": bson.M{"name": "new"}, "$inc": bson.M{"score": 4}},
		false,
	)
	if err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}
	if result.MatchedCount != 1 || result.ModifiedCount != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	var got record
	if err := store.FindOne(ctx, "records", bson.M{"_id": "a"}, &got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Name != "new" || got.Score != 5 {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestStore_UpdateOneNoMatchWithoutUpsert(t *testing.T) {
	ctx := context.Background()
	store := New()

	result, err := store.UpdateOne(ctx, "records", bson.M{"_id": "missing"}, bson.M{"$set": bson.M{"name": "x"}}, false)
	if err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}
	if result.MatchedCount != 0 || result.UpsertedID != nil {
		t.Errorf("expected a miss, got %+v", result)
	}
}

func TestStore_UpsertSeedsFromEqualityFilter(t *testing.T) {
	ctx := context.Background()
	store := New()

	result, err := store.UpdateOne(ctx, "records",
		bson.M{"name": "seeded", "score": bson.M{"$ne": 7}},
		bson.M{"$set": bson.M{"score": 7}, "$setOnInsert": bson.M{"_id": "a"}},
		true,
	)
	if err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}
	if result.UpsertedID == nil {
		t.Fatal("expected an upsert insert")
	}

	var got record
	if err := store.FindOne(ctx, "records", bson.M{"_id": "a"}, &got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	// Equality fields seed the document; operator conditions do not.
	if got.Name != "seeded" || got.Score != 7 {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestStore_UniqueIndex(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.EnsureUniqueIndex("records", "name")

	if err := store.InsertOne(ctx, "records", record{ID: "a", Name: "dup"}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}
	err := store.InsertOne(ctx, "records", record{ID: "b", Name: "dup"})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The same index guards the upsert insert path.
	_, err = store.UpdateOne(ctx, "records",
		bson.M{"name": "dup", "score": bson.M{"$ne": 1}},
		bson.M{"$set": bson.M{"score": 1}, "$setOnInsert": bson.M{"_id": "c"}},
		true,
	)
	if err != nil {
		t.Fatalf("expected the matching document to be updated, got %v", err)
	}
}

func TestStore_DeleteOne(t *testing.T) {
	ctx := context.Background()
	store := New()

	if err := store.InsertOne(ctx, "records", record{ID: "a", Score: 1}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	// A conditional delete that does not match removes nothing.
	deleted, err := store.DeleteOne(ctx, "records", bson.M{"_id": "a", "score": 2})
	if err != nil || deleted != 0 {
		t.Fatalf("expected no deletion, got %d (%v)", deleted, err)
	}

	deleted, err = store.DeleteOne(ctx, "records", bson.M{"_id": "a", "score": 1})
	if err != nil || deleted != 1 {
		t.Fatalf("expected one deletion, got %d (%v)", deleted, err)
	}
	if store.Len("records") != 0 {
		t.Errorf("expected empty collection, got %d", store.Len("records"))
	}
}

func TestStore_AggregateGroup(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, r := range []record{
		{ID: "a", Name: "x", Score: 1},
		{ID: "b", Name: "x", Score: -1},
		{ID: "c", Name: "x", Score: 1},
		{ID: "d", Name: "y", Score: 1},
	} {
		if err := store.InsertOne(ctx, "records", r); err != nil {
			t.Fatalf("InsertOne failed: %v", err)
		}
	}

	pipeline := []bson.M{
		{"$match": bson.M{"name": "x"}},
		{"$group": bson.M{
			"_id":      nil,
			"positive": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$score", 1}}, 1, 0}}},
			"total":    bson.M{"$sum": 1},
		}},
	}

	var rows []struct {
		Positive int64 `bson:"positive"`
		Total    int64 `bson:"total"`
	}
	if err := store.Aggregate(ctx, "records", pipeline, &rows); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Positive != 2 || rows[0].Total != 3 {
		t.Errorf("unexpected aggregation result: %+v", rows)
	}
}

func TestStore_AggregateEmptyMatch(t *testing.T) {
	ctx := context.Background()
	store := New()

	pipeline := []bson.M{
		{"$match": bson.M{"name": "nobody"}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": 1}}},
	}
	rows := []bson.M{}
	if err := store.Aggregate(ctx, "records", pipeline, &rows); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows for an empty group input, got %+v", rows)
	}
}

func TestStore_FailWith(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.FailWith(storage.ErrUnavailable)

	if err := store.InsertOne(ctx, "records", record{ID: "a"}); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	store.FailWith(nil)
	if err := store.InsertOne(ctx, "records", record{ID: "a"}); err != nil {
		t.Fatalf("expected recovery after clearing the fault, got %v", err)
	}
}
