package memstore

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// normalizeDocument runs a value through a BSON round-trip so stored
// documents and filter operands compare with the same wire types.
func normalizeDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("memstore: marshal document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("memstore: unmarshal document: %w", err)
	}
	return doc, nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	doc, err := normalizeDocument(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return doc["v"], nil
}

// normalizeFilter normalizes every operand while preserving operator
// documents such as {"$gte": 7}.
func normalizeFilter(filter bson.M) (bson.M, error) {
	query := bson.M{}
	for field, cond := range filter {
		if operators, ok := cond.(bson.M); ok && isOperatorDoc(operators) {
			normalized := bson.M{}
			for op, operand := range operators {
				value, err := normalizeValue(operand)
				if err != nil {
					return nil, err
				}
				normalized[op] = value
			}
			query[field] = normalized
			continue
		}
		value, err := normalizeValue(cond)
		if err != nil {
			return nil, err
		}
		query[field] = value
	}
	return query, nil
}

func isOperatorDoc(doc bson.M) bool {
	for key := range doc {
		if !strings.HasPrefix(key, "$") {
			return false
		}
	}
	return len(doc) > 0
}

// matches evaluates a normalized filter against a stored document.
func matches(doc, query bson.M) (bool, error) {
	for field, cond := range query {
		if operators, ok := cond.(bson.M); ok && isOperatorDoc(operators) {
			for op, operand := range operators {
				ok, err := matchOperator(doc[field], op, operand)
				if err != nil {
					return false, err
				}
				if !ok {
					return false, nil
				}
			}
			continue
		}
		cmp, comparable := compareValues(doc[field], cond)
		if !comparable || cmp != 0 {
			return false, nil
		}
	}
	return true, nil
}

func matchOperator(value interface{}, op string, operand interface{}) (bool, error) {
	cmp, comparable := compareValues(value, operand)
	switch op {
	case "$eq":
		return comparable && cmp == 0, nil
	case "$ne":
		return !comparable || cmp != 0, nil
	case "$gte":
		return comparable && cmp >= 0, nil
	case "$lte":
		return comparable && cmp <= 0, nil
	case "$gt":
		return comparable && cmp > 0, nil
	case "$lt":
		return comparable && cmp < 0, nil
	default:
		return false, fmt.Errorf("memstore: unsupported filter operator %q", op)
	}
}

// compareValues orders two normalized BSON values. The second return value
// reports whether the values are comparable at all.
func compareValues(a, b interface{}) (int, bool) {
	if a == nil && b == nil {
		return 0, true
	}
	if a == nil || b == nil {
		return 0, false
	}
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		if !ok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if ab == bb {
			return 0, true
		}
		return 1, true
	}
	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case primitive.DateTime:
		return float64(n), true
	default:
		return 0, false
	}
}

// applyUpdate clones doc and applies $set, $inc and, on insert,
// $setOnInsert. Replacement-style updates are not supported.
func applyUpdate(doc, update bson.M, insert bool) (bson.M, error) {
	updated := bson.M{}
	for k, v := range doc {
		updated[k] = v
	}
	for op, rawSpec := range update {
		spec, ok := rawSpec.(bson.M)
		if !ok {
			return nil, fmt.Errorf("memstore: update operator %q expects a document", op)
		}
		switch op {
		case "$set":
			for field, value := range spec {
				normalized, err := normalizeValue(value)
				if err != nil {
					return nil, err
				}
				updated[field] = normalized
			}
		case "$inc":
			for field, value := range spec {
				delta, ok := asNumber(value)
				if !ok {
					return nil, fmt.Errorf("memstore: $inc on %q needs a numeric operand", field)
				}
				current, _ := asNumber(updated[field])
				sum := current + delta
				if sum == math.Trunc(sum) {
					updated[field] = int64(sum)
				} else {
					updated[field] = sum
				}
			}
		case "$setOnInsert":
			if !insert {
				continue
			}
			for field, value := range spec {
				normalized, err := normalizeValue(value)
				if err != nil {
					return nil, err
				}
				updated[field] = normalized
			}
		default:
			return nil, fmt.Errorf("memstore: unsupported update operator %q", op)
		}
	}
	return updated, nil
}

// groupRows folds rows into a single $group result row.
func groupRows(rows []bson.M, spec bson.M) (bson.M, error) {
	row := bson.M{}
	for key, rawExpr := range spec {
		if key == "_id" {
			row["_id"] = nil
			continue
		}
		expr, ok := rawExpr.(bson.M)
		if !ok {
			return nil, fmt.Errorf("memstore: accumulator %q expects a document", key)
		}
		operand, ok := expr["$sum"]
		if !ok || len(expr) != 1 {
			return nil, fmt.Errorf("memstore: only $sum accumulators are supported, got %v", expr)
		}
		var total int64
		for _, doc := range rows {
			value, err := evalSumOperand(operand, doc)
			if err != nil {
				return nil, err
			}
			total += value
		}
		row[key] = total
	}
	return row, nil
}

func evalSumOperand(operand interface{}, doc bson.M) (int64, error) {
	if n, ok := asNumber(operand); ok {
		return int64(n), nil
	}
	expr, ok := operand.(bson.M)
	if !ok {
		return 0, fmt.Errorf("memstore: unsupported $sum operand %v", operand)
	}
	rawCond, ok := expr["$cond"]
	if !ok {
		return 0, fmt.Errorf("memstore: unsupported $sum expression %v", expr)
	}
	cond, ok := rawCond.(bson.A)
	if !ok || len(cond) != 3 {
		return 0, fmt.Errorf("memstore: $cond expects [if, then, else]")
	}
	matched, err := evalEq(cond[0], doc)
	if err != nil {
		return 0, err
	}
	branch := cond[2]
	if matched {
		branch = cond[1]
	}
	n, ok := asNumber(branch)
	if !ok {
		return 0, fmt.Errorf("memstore: $cond branches must be numeric")
	}
	return int64(n), nil
}

func evalEq(rawExpr interface{}, doc bson.M) (bool, error) {
	expr, ok := rawExpr.(bson.M)
	if !ok {
		return false, fmt.Errorf("memstore: $cond condition must be a document")
	}
	rawArgs, ok := expr["$eq"]
	if !ok {
		return false, fmt.Errorf("memstore: only $eq conditions are supported")
	}
	args, ok := rawArgs.(bson.A)
	if !ok || len(args) != 2 {
		return false, fmt.Errorf("memstore: $eq expects two arguments")
	}
	left, err := resolveOperand(args[0], doc)
	if err != nil {
		return false, err
	}
	right, err := resolveOperand(args[1], doc)
	if err != nil {
		return false, err
	}
	cmp, comparable := compareValues(left, right)
	return comparable && cmp == 0, nil
}

func resolveOperand(operand interface{}, doc bson.M) (interface{}, error) {
	if ref, ok := operand.(string); ok && strings.HasPrefix(ref, "$") {
		return doc[strings.TrimPrefix(ref, "$")], nil
	}
	return normalizeValue(operand)
}

func decodeDocument(doc bson.M, result interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memstore: marshal result: %w", err)
	}
	if err := bson.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("memstore: decode result: %w", err)
	}
	return nil
}

func decodeDocuments(docs []bson.M, results interface{}) error {
	v := reflect.ValueOf(results)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("memstore: results must be a pointer to a slice")
	}
	slice := v.Elem()
	out := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decodeDocument(doc, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	slice.Set(out)
	return nil
}
