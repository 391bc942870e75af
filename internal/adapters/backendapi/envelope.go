package backendapi

import (
	"encoding/json"
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"
)

const (
	// listExpr finds the first array-valued envelope field.
	listExpr = "[data, content, items, results][?type(@) == 'array'] | [0]"
	// objectExpr unwraps {data: {...}} while leaving bare objects alone.
	objectExpr = "[data, @][?type(@) == 'object'] | [0]"
)

// unwrapList decodes a list that arrives either bare or inside an envelope.
// A null body or an envelope without a list is an empty result.
func unwrapList[T any](raw json.RawMessage) ([]T, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	var list any
	switch v := doc.(type) {
	case nil:
		return []T{}, nil
	case []any:
		list = v
	case map[string]any:
		found, err := jmespath.Search(listExpr, v)
		if err != nil {
			return nil, fmt.Errorf("search list envelope: %w", err)
		}
		if found == nil {
			return []T{}, nil
		}
		list = found
	default:
		return nil, fmt.Errorf("decode list: unexpected %T body", doc)
	}
	return reshape[[]T](list)
}

// unwrapObject decodes an object that arrives either bare or as {data: {...}}.
func unwrapObject[T any](raw json.RawMessage) (T, error) {
	var zero T
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, fmt.Errorf("decode object: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return zero, fmt.Errorf("decode object: unexpected %T body", doc)
	}
	found, err := jmespath.Search(objectExpr, obj)
	if err != nil {
		return zero, fmt.Errorf("search object envelope: %w", err)
	}
	if found == nil {
		found = obj
	}
	return reshape[T](found)
}

// reshape round-trips a generic JSON value into T so typed decoders run.
func reshape[T any](v any) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("re-encode: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
