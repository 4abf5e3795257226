package repository

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// Comparator selects how a filter constrains its field.
type Comparator string

const (
	CompareEq  Comparator = "eq"
	CompareGte Comparator = "gte"
	CompareLte Comparator = "lte"
)

// Filter is one field constraint. Filters are always AND-ed together;
// OR-composition is a deliberate scope limit.
type Filter struct {
	Field string
	Op    Comparator
	Value interface{}
}

// Eq constrains a field to equal value.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: CompareEq, Value: value}
}

// Gte constrains a field to be greater than or equal to value.
func Gte(field string, value interface{}) Filter {
	return Filter{Field: field, Op: CompareGte, Value: value}
}

// Lte constrains a field to be less than or equal to value.
func Lte(field string, value interface{}) Filter {
	return Filter{Field: field, Op: CompareLte, Value: value}
}

// BuildQuery translates filters into a store-native query. Filters whose
// value is absent (nil, or a nil pointer) impose no constraint and are
// dropped; pointer values are dereferenced. An unknown comparator yields
// ErrInvalidFilter.
func BuildQuery(filters []Filter) (bson.M, error) {
	query := bson.M{}
	for _, f := range filters {
		value, ok := filterValue(f.Value)
		if !ok {
			continue
		}
		switch f.Op {
		case CompareEq, "":
			query[f.Field] = value
		case CompareGte, CompareLte:
			conditions, ok := query[f.Field].(bson.M)
			if !ok {
				conditions = bson.M{}
				query[f.Field] = conditions
			}
			conditions["$"+string(f.Op)] = value
		default:
			return nil, fmt.Errorf("%w: unknown comparator %q for field %q", ErrInvalidFilter, f.Op, f.Field)
		}
	}
	return query, nil
}

// filterValue unwraps pointers and reports whether the value is present.
func filterValue(value interface{}) (interface{}, bool) {
	if value == nil {
		return nil, false
	}
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		return v.Elem().Interface(), true
	}
	return value, true
}
