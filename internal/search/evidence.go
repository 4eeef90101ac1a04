package search

import "strings"

// DefaultMaxSnippets bounds the text-evidence list when the caller does not
// say otherwise.
const DefaultMaxSnippets = 5

// textEvidenceKeys marks keys whose string values are worth quoting
// verbatim, matched by case-insensitive containment.
var textEvidenceKeys = []string{"sql", "statement", "query"}

// structureEvidenceKeys marks keys whose whole subtree is evidence, matched
// by case-insensitive equality.
var structureEvidenceKeys = []string{
	"parameters",
	"request",
	"response",
	"payload",
	"binding",
	"connectivityProperties",
	"trackingVariables",
}

// Evidence is what Extract pulls out of a single node.
type Evidence struct {
	Snippets []string       `json:"snippets"`
	Bindings map[string]any `json:"bindings"`
}

// Extract scans one node and partitions hits into text evidence (SQL-like
// fragments, deduplicated, first-seen order, truncated at maxSnippets) and
// structure evidence (parameter/binding blocks keyed by the matched key name,
// first occurrence of a key wins). maxSnippets <= 0 selects the default.
func Extract(node any, maxSnippets int) Evidence {
	if maxSnippets <= 0 {
		maxSnippets = DefaultMaxSnippets
	}
	ev := Evidence{
		Snippets: make([]string, 0, maxSnippets),
		Bindings: make(map[string]any),
	}
	seen := make(map[string]struct{})
	Walk(node, func(key string, value any) bool {
		if isTextEvidenceKey(key) {
			if s, ok := value.(string); ok && len(ev.Snippets) < maxSnippets {
				s = strings.TrimSpace(s)
				if _, dup := seen[s]; !dup {
					seen[s] = struct{}{}
					ev.Snippets = append(ev.Snippets, s)
				}
			}
		}
		if isStructureEvidenceKey(key) {
			if _, dup := ev.Bindings[key]; !dup {
				ev.Bindings[key] = value
			}
		}
		return true
	})
	return ev
}

func isTextEvidenceKey(key string) bool {
	folded := strings.ToLower(key)
	for _, want := range textEvidenceKeys {
		if strings.Contains(folded, want) {
			return true
		}
	}
	return false
}

func isStructureEvidenceKey(key string) bool {
	for _, want := range structureEvidenceKeys {
		if strings.EqualFold(key, want) {
			return true
		}
	}
	return false
}
