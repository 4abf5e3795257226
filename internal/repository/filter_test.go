package repository

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildQuery_Equality(t *testing.T) {
	query, err := BuildQuery([]Filter{Eq("title", "Dune")})
	if err != nil {
		t.Fatalf("BuildQuery failed: %v", err)
	}
	if query["title"] != "Dune" {
		t.Errorf("expected title=Dune, got %v", query["title"])
	}
}

func TestBuildQuery_RangeMergesUnderOneField(t *testing.T) {
	query, err := BuildQuery([]Filter{Gte("rating", 3), Lte("rating", 8)})
	if err != nil {
		t.Fatalf("BuildQuery failed: %v", err)
	}
	conditions, ok := query["rating"].(bson.M)
	if !ok {
		t.Fatalf("expected rating conditions document, got %T", query["rating"])
	}
	if conditions["$gte"] != 3 || conditions["$lte"] != 8 {
		t.Errorf("expected $gte=3 $lte=8, got %v", conditions)
	}
}

func TestBuildQuery_DropsAbsentValues(t *testing.T) {
	var absent *int
	present := 5

	query, err := BuildQuery([]Filter{
		Eq("a", nil),
		Eq("b", absent),
		Gte("c", &present),
	})
	if err != nil {
		t.Fatalf("BuildQuery failed: %v", err)
	}
	if len(query) != 1 {
		t.Fatalf("expected absent filters to be dropped, got %v", query)
	}
	conditions := query["c"].(bson.M)
	if conditions["$gte"] != 5 {
		t.Errorf("expected pointer value to be dereferenced, got %v", conditions)
	}
}

func TestBuildQuery_UnknownComparator(t *testing.T) {
	_, err := BuildQuery([]Filter{{Field: "rating", Op: "contains", Value: 1}})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestProperty_BuildQueryFilters(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every present equality filter appears in the query", prop.ForAll(
		func(field string, value int) bool {
			query, err := BuildQuery([]Filter{Eq(field, value)})
			if err != nil {
				t.Logf("BuildQuery failed: %v", err)
				return false
			}
			return query[field] == value
		},
		gen.Identifier(),
		gen.Int(),
	))

	properties.Property("nil-valued filters never constrain the query", prop.ForAll(
		func(field string) bool {
			query, err := BuildQuery([]Filter{Eq(field, nil), Gte(field, nil), Lte(field, nil)})
			if err != nil {
				t.Logf("BuildQuery failed: %v", err)
				return false
			}
			return len(query) == 0
		},
		gen.Identifier(),
	))

	properties.Property("gte and lte bounds always land under the same field", prop.ForAll(
		func(field string, low, high int) bool {
			query, err := BuildQuery([]Filter{Gte(field, low), Lte(field, high)})
			if err != nil {
				t.Logf("BuildQuery failed: %v", err)
				return false
			}
			conditions, ok := query[field].(bson.M)
			return ok && conditions["$gte"] == low && conditions["$lte"] == high
		},
		gen.Identifier(),
		gen.Int(),
		gen.Int(),
	))

	properties.TestingRun(t)
}
