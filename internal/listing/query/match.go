package query

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strings"
)

// Match evaluates the predicate against a record using its JSON field names.
// It backs in-process gateways; remote gateways translate the predicate
// into their own query language instead.
func (p Predicate) Match(record any) (bool, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("encode record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}
	norm, err := normalize(p)
	if err != nil {
		return false, err
	}
	return evalNode(norm, doc)
}

// normalize round-trips the predicate through JSON so that typed values
// ([]Predicate, int, bool pointers) compare like decoded documents.
func normalize(p Predicate) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode predicate: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode predicate: %w", err)
	}
	return out, nil
}

func evalNode(node map[string]any, doc map[string]any) (bool, error) {
	for key, val := range node {
		var (
			ok  bool
			err error
		)
		switch key {
		case "and", "or":
			ok, err = evalList(key, val, doc)
		case "not":
			sub, isMap := val.(map[string]any)
			if !isMap {
				return false, fmt.Errorf("not: expected object, got %T", val)
			}
			ok, err = evalNode(sub, doc)
			ok = !ok
		default:
			ok, err = evalField(key, val, doc[key])
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func evalList(kind string, val any, doc map[string]any) (bool, error) {
	items, isList := val.([]any)
	if !isList {
		return false, fmt.Errorf("%s: expected list, got %T", kind, val)
	}
	if len(items) == 0 {
		return kind == "and", nil
	}
	for _, it := range items {
		sub, isMap := it.(map[string]any)
		if !isMap {
			return false, fmt.Errorf("%s: expected object, got %T", kind, it)
		}
		ok, err := evalNode(sub, doc)
		if err != nil {
			return false, err
		}
		if kind == "or" && ok {
			return true, nil
		}
		if kind == "and" && !ok {
			return false, nil
		}
	}
	return kind == "and", nil
}

func evalField(field string, cond any, have any) (bool, error) {
	ops, isMap := cond.(map[string]any)
	if !isMap {
		return false, fmt.Errorf("field %s: expected operator object, got %T", field, cond)
	}
	for op, want := range ops {
		ok, err := evalOp(op, have, want)
		if err != nil {
			return false, fmt.Errorf("field %s: %w", field, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalOp(op string, have, want any) (bool, error) {
	switch op {
	case "eq":
		return equalValues(have, want), nil
	case "ne":
		return !equalValues(have, want), nil
	case "gt", "ge", "lt", "le":
		c, ok := compareValues(have, want)
		if !ok {
			return false, nil
		}
		switch op {
		case "gt":
			return c > 0, nil
		case "ge":
			return c >= 0, nil
		case "lt":
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case "between":
		bounds, ok := want.([]any)
		if !ok || len(bounds) != 2 {
			return false, fmt.Errorf("between: expected two bounds")
		}
		lo, okLo := compareValues(have, bounds[0])
		hi, okHi := compareValues(have, bounds[1])
		return okLo && okHi && lo >= 0 && hi <= 0, nil
	case "contains":
		switch h := have.(type) {
		case string:
			s, _ := want.(string)
			return strings.Contains(h, s), nil
		case []any:
			for _, v := range h {
				if equalValues(v, want) {
					return true, nil
				}
			}
		}
		return false, nil
	case "beginsWith":
		h, _ := have.(string)
		s, _ := want.(string)
		return strings.HasPrefix(h, s), nil
	}
	return false, fmt.Errorf("unsupported operator %q", op)
}

func equalValues(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		return ab == bb
	}
	return a == nil && b == nil
}

func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv), true
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv), true
		}
	}
	return 0, false
}
