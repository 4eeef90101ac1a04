// Package search implements schema-tolerant traversal, lookup and
// summarization over OIC integration design documents. Design documents have
// no published schema and vary by tenant and version, so everything here is
// heuristic and best-effort: operations never fail on valid JSON, they
// degrade to empty results.
package search

import "sort"

// Visit receives one key/value pair. Returning false stops the walk.
type Visit func(key string, value any) bool

// Walk performs a depth-first pre-order traversal of a decoded JSON value,
// calling visit for every key/value pair of every mapping at any depth.
// Mappings that occur as sequence elements carry no key of their own; they
// are offered to visit with an empty key before being descended into, so
// every mapping in the document is seen regardless of where it hangs.
// Mapping keys are visited in sorted order so two walks over the same value
// always agree. The input is never mutated and Walk can be re-invoked on the
// same value.
func Walk(value any, visit Visit) {
	walk(value, visit)
}

func walk(value any, visit Visit) bool {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			child := v[key]
			if !visit(key, child) {
				return false
			}
			if !walk(child, visit) {
				return false
			}
		}
	case []any:
		for _, child := range v {
			if m, ok := child.(map[string]any); ok {
				if !visit("", m) {
					return false
				}
			}
			if !walk(child, visit) {
				return false
			}
		}
	}
	return true
}

// Unwrap returns the real payload of an upstream document. Some responses
// nest the payload one level under a "content" key; the rule is applied once
// here so call sites never re-implement it.
func Unwrap(doc any) any {
	if m, ok := doc.(map[string]any); ok {
		if inner, ok := m["content"].(map[string]any); ok {
			return inner
		}
	}
	return doc
}
