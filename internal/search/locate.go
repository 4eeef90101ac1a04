package search

import "strings"

// nodeName returns the name field of a mapping, or "" when absent or not a
// string. Unnamed mappings are never match candidates.
func nodeName(m map[string]any) string {
	name, _ := m["name"].(string)
	return name
}

// FindExact returns every mapping in the document whose name field equals
// name case-insensitively, in traversal order, truncated at max results.
func FindExact(doc any, name string, max int) []map[string]any {
	return findNodes(doc, max, func(candidate string) bool {
		return strings.EqualFold(candidate, name)
	})
}

// FindFuzzy is FindExact with case-folded substring containment instead of
// equality.
func FindFuzzy(doc any, name string, max int) []map[string]any {
	folded := strings.ToLower(name)
	return findNodes(doc, max, func(candidate string) bool {
		return strings.Contains(strings.ToLower(candidate), folded)
	})
}

// FindNodes tries an exact name match first and falls back to a fuzzy
// substring match only when the exact pass yields nothing.
func FindNodes(doc any, name string, max int) []map[string]any {
	if nodes := FindExact(doc, name, max); len(nodes) > 0 {
		return nodes
	}
	return FindFuzzy(doc, name, max)
}

func findNodes(doc any, max int, match func(string) bool) []map[string]any {
	nodes := make([]map[string]any, 0)
	if max <= 0 {
		return nodes
	}
	Walk(doc, func(_ string, value any) bool {
		m, ok := value.(map[string]any)
		if !ok {
			return true
		}
		if name := nodeName(m); name != "" && match(name) {
			nodes = append(nodes, m)
		}
		return len(nodes) < max
	})
	return nodes
}

// MatchEndpoints returns the entries of the document's endpoint collection
// whose role field equals role case-insensitively. Both the "endPoints" and
// "endpoints" spellings occur in the wild; the collection may sit at any
// depth.
func MatchEndpoints(doc any, role string) []map[string]any {
	matched := make([]map[string]any, 0)
	Walk(doc, func(key string, value any) bool {
		if !strings.EqualFold(key, "endpoints") {
			return true
		}
		entries, ok := value.([]any)
		if !ok {
			return true
		}
		for _, entry := range entries {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			entryRole, _ := m["role"].(string)
			if strings.EqualFold(entryRole, role) {
				matched = append(matched, m)
			}
		}
		return true
	})
	return matched
}
