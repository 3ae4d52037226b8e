package mongodb

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// translate turns a decoded gateway predicate into a Mongo filter.
func translate(node map[string]any) (bson.M, error) {
	if len(node) == 0 {
		return bson.M{}, nil
	}
	clauses := make([]bson.M, 0, len(node))
	for key, val := range node {
		var (
			clause bson.M
			err    error
		)
		switch key {
		case "and", "or":
			clause, err = translateList(key, val)
		case "not":
			sub, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("not: expected object, got %T", val)
			}
			inner, err := translate(sub)
			if err != nil {
				return nil, err
			}
			clause = bson.M{"$nor": []bson.M{inner}}
		default:
			clause, err = translateField(key, val)
		}
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return bson.M{"$and": clauses}, nil
}

func translateList(key string, val any) (bson.M, error) {
	items, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected list, got %T", key, val)
	}
	if len(items) == 0 {
		if key == "and" {
			return bson.M{}, nil
		}
		// An empty disjunction matches nothing.
		return bson.M{"_id": bson.M{"$exists": false}}, nil
	}
	subs := make([]bson.M, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected object, got %T", key, it)
		}
		sub, err := translate(m)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return bson.M{"$" + key: subs}, nil
}

func translateField(field string, val any) (bson.M, error) {
	key, ok := fieldNames[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	ops, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected operator object, got %T", field, val)
	}

	cond := bson.M{}
	for op, v := range ops {
		if key == "_id" {
			id, err := objectIDValue(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field, err)
			}
			v = id
		}
		switch op {
		case "eq":
			cond["$eq"] = v
		case "ne":
			cond["$ne"] = v
		case "gt":
			cond["$gt"] = v
		case "ge":
			cond["$gte"] = v
		case "lt":
			cond["$lt"] = v
		case "le":
			cond["$lte"] = v
		case "between":
			bounds, ok := v.([]any)
			if !ok || len(bounds) != 2 {
				return nil, fmt.Errorf("%s: between expects two bounds", field)
			}
			cond["$gte"] = bounds[0]
			cond["$lte"] = bounds[1]
		case "contains":
			if arrayFields[key] {
				cond["$elemMatch"] = bson.M{"$eq": v}
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s: contains expects a string", field)
			}
			cond["$regex"] = primitive.Regex{Pattern: regexp.QuoteMeta(s)}
		case "beginsWith":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s: beginsWith expects a string", field)
			}
			cond["$regex"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s)}
		default:
			return nil, fmt.Errorf("%s: unsupported operator %q", field, op)
		}
	}
	return bson.M{key: cond}, nil
}

// objectIDValue converts id operands, including between bounds, to ObjectIDs.
func objectIDValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		id, err := primitive.ObjectIDFromHex(t)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", t)
		}
		return id, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			id, err := objectIDValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = id
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid id operand %T", v)
	}
}
