// Package memstore provides an in-memory storage.Store used as a test double.
// It mirrors the MongoDB behavior the repositories rely on: equality and
// range filters, conditional upserts, unique indexes with duplicate-key
// errors, single-key sorting and the grouping aggregation subset used by the
// statistics reads.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gryroach/ugc-service/internal/storage"
)

// Store is an in-memory document store. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	collections map[string][]bson.M
	indexes     map[string][][]string
	failWith    error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string][]bson.M),
		indexes:     make(map[string][][]string),
	}
}

// EnsureUniqueIndex declares a compound unique index over the given fields.
func (s *Store) EnsureUniqueIndex(collection string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[collection] = append(s.indexes[collection], fields)
}

// FailWith forces every subsequent operation to fail with err until called
// again with nil. Used to exercise store-unavailable paths.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Len reports the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// InsertOne persists a document.
func (s *Store) InsertOne(_ context.Context, collection string, document interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	doc, err := normalizeDocument(document)
	if err != nil {
		return err
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = uuid.NewString()
	}
	if err := s.checkUnique(collection, doc, -1); err != nil {
		return err
	}
	s.collections[collection] = append(s.collections[collection], doc)
	return nil
}

// FindOne decodes the first matching document into result.
func (s *Store) FindOne(_ context.Context, collection string, filter bson.M, result interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	query, err := normalizeFilter(filter)
	if err != nil {
		return err
	}
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, query)
		if err != nil {
			return err
		}
		if ok {
			return decodeDocument(doc, result)
		}
	}
	return storage.ErrNoDocument
}

// FindMany decodes an ordered page of matching documents into results.
func (s *Store) FindMany(_ context.Context, collection string, filter bson.M, sortSpec storage.Sort, skip, limit int64, results interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	query, err := normalizeFilter(filter)
	if err != nil {
		return err
	}
	matched := make([]bson.M, 0)
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, query)
		if err != nil {
			return err
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	if sortSpec.Field != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp, ok := compareValues(matched[i][sortSpec.Field], matched[j][sortSpec.Field])
			if !ok {
				return false
			}
			if sortSpec.Order == storage.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		matched = nil
	} else {
		matched = matched[skip:]
	}
	if limit >= 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return decodeDocuments(matched, results)
}

// UpdateOne applies update to the first matching document, inserting one
// when upsert is enabled and nothing matches.
func (s *Store) UpdateOne(_ context.Context, collection string, filter, update bson.M, upsert bool) (*storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	query, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	for i, doc := range s.collections[collection] {
		ok, err := matches(doc, query)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		updated, err := applyUpdate(doc, update, false)
		if err != nil {
			return nil, err
		}
		if err := s.checkUnique(collection, updated, i); err != nil {
			return nil, err
		}
		result := &storage.UpdateResult{MatchedCount: 1}
		if !reflect.DeepEqual(doc, updated) {
			result.ModifiedCount = 1
		}
		s.collections[collection][i] = updated
		return result, nil
	}

	if !upsert {
		return &storage.UpdateResult{}, nil
	}

	// Upserted documents are seeded from the filter's equality fields, the
	// same way MongoDB builds them.
	seed := bson.M{}
	for field, cond := range query {
		if _, isOperator := cond.(bson.M); isOperator {
			continue
		}
		seed[field] = cond
	}
	inserted, err := applyUpdate(seed, update, true)
	if err != nil {
		return nil, err
	}
	if _, ok := inserted["_id"]; !ok {
		inserted["_id"] = uuid.NewString()
	}
	if err := s.checkUnique(collection, inserted, -1); err != nil {
		return nil, err
	}
	s.collections[collection] = append(s.collections[collection], inserted)
	return &storage.UpdateResult{UpsertedID: inserted["_id"]}, nil
}

// DeleteOne removes the first matching document.
func (s *Store) DeleteOne(_ context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}

	query, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	docs := s.collections[collection]
	for i, doc := range docs {
		ok, err := matches(doc, query)
		if err != nil {
			return 0, err
		}
		if ok {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// Count returns the number of matching documents.
func (s *Store) Count(_ context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}

	query, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, query)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// Aggregate supports the $match + $group pipeline shape used by the
// statistics reads: $group accumulators are $sum over a constant or over a
// $cond/$eq expression.
func (s *Store) Aggregate(_ context.Context, collection string, pipeline []bson.M, results interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	rows := append([]bson.M(nil), s.collections[collection]...)

	for _, stage := range pipeline {
		if len(stage) != 1 {
			return fmt.Errorf("memstore: each pipeline stage must have exactly one operator")
		}
		for op, rawSpec := range stage {
			switch op {
			case "$match":
				spec, ok := rawSpec.(bson.M)
				if !ok {
					return fmt.Errorf("memstore: $match expects a document")
				}
				query, err := normalizeFilter(spec)
				if err != nil {
					return err
				}
				kept := make([]bson.M, 0, len(rows))
				for _, doc := range rows {
					matchedDoc, err := matches(doc, query)
					if err != nil {
						return err
					}
					if matchedDoc {
						kept = append(kept, doc)
					}
				}
				rows = kept
			case "$group":
				spec, ok := rawSpec.(bson.M)
				if !ok {
					return fmt.Errorf("memstore: $group expects a document")
				}
				row, err := groupRows(rows, spec)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					rows = nil
				} else {
					rows = []bson.M{row}
				}
			default:
				return fmt.Errorf("memstore: unsupported pipeline stage %q", op)
			}
		}
	}
	return decodeDocuments(rows, results)
}

// checkUnique verifies doc against every unique index of the collection,
// ignoring the document at position self.
func (s *Store) checkUnique(collection string, doc bson.M, self int) error {
	for _, fields := range s.indexes[collection] {
		for i, existing := range s.collections[collection] {
			if i == self {
				continue
			}
			same := true
			for _, field := range fields {
				cmp, ok := compareValues(existing[field], doc[field])
				if !ok || cmp != 0 {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: index on %v", storage.ErrDuplicateKey, fields)
			}
		}
	}
	if id, ok := doc["_id"]; ok {
		for i, existing := range s.collections[collection] {
			if i == self {
				continue
			}
			if cmp, comparable := compareValues(existing["_id"], id); comparable && cmp == 0 {
				return fmt.Errorf("%w: _id", storage.ErrDuplicateKey)
			}
		}
	}
	return nil
}
