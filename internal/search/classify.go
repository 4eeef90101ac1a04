package search

import (
	"fmt"
	"strings"
)

const (
	// DefaultOutlineCap bounds outline output; truncation is silent.
	DefaultOutlineCap = 500
	// maxControlExamples bounds the example list in a control summary.
	maxControlExamples = 25
)

// controlLabels tallies known control-flow constructs. A type token may
// contain several of these substrings; every match counts.
var controlLabels = []struct {
	label   string
	needles []string
}{
	{"Branch", []string{"switch", "branch"}},
	{"Loop", []string{"foreach", "for-each", "loop", "while"}},
	{"Route", []string{"route"}},
	{"Fault", []string{"throw", "fault"}},
	{"Scope", []string{"scope"}},
}

// outlineRules classify a node for the outline, checked in order with the
// first match winning. The order is load-bearing: a "switch-scope" token must
// read as a scope, not a branch.
var outlineRules = []struct {
	label   string
	needles []string
}{
	{"Scope", []string{"scope"}},
	{"Branch", []string{"switch", "branch", "otherwise"}},
	{"Map", []string{"map", "assign"}},
	{"Invoke", []string{"invoke", "call"}},
	{"Fault", []string{"throw", "fault"}},
	{"Loop", []string{"foreach", "for-each", "loop", "while"}},
	{"Data Stitch", []string{"stitch"}},
}

// ControlExample records one classified node for a control summary.
type ControlExample struct {
	Label string `json:"label"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ControlSummary tallies control-flow constructs found in a document.
type ControlSummary struct {
	Counts   map[string]int   `json:"counts"`
	Examples []ControlExample `json:"examples"`
}

// typeToken derives the string a node is classified by: the first non-empty
// of its type, name and role fields, lowercased.
func typeToken(m map[string]any) string {
	for _, field := range []string{"type", "name", "role"} {
		if s, ok := m[field].(string); ok && s != "" {
			return strings.ToLower(s)
		}
	}
	return ""
}

// ClassifyControls walks the whole document once and counts occurrences of
// known control-flow constructs, keeping a bounded list of examples. A node
// whose token matches several labels increments all of them.
func ClassifyControls(doc any) ControlSummary {
	summary := ControlSummary{
		Counts:   make(map[string]int),
		Examples: make([]ControlExample, 0, maxControlExamples),
	}
	Walk(doc, func(_ string, value any) bool {
		m, ok := value.(map[string]any)
		if !ok {
			return true
		}
		token := typeToken(m)
		if token == "" {
			return true
		}
		for _, rule := range controlLabels {
			if !containsAny(token, rule.needles) {
				continue
			}
			summary.Counts[rule.label]++
			if len(summary.Examples) < maxControlExamples {
				name, _ := m["name"].(string)
				role, _ := m["role"].(string)
				summary.Examples = append(summary.Examples, ControlExample{
					Label: rule.label,
					Name:  name,
					Role:  role,
				})
			}
		}
		return true
	})
	return summary
}

// Outline renders a human-readable list of an integration's major steps in
// traversal order: first one Trigger line per source-role endpoint, then one
// line per node matched by the outline rules. Traversal order is the walker's
// sorted-key order, not source-document order; within any one sequence of
// steps the document order is preserved, but sibling keys are visited
// alphabetically so repeated runs always agree. Output is silently truncated
// at maxLines (<= 0 selects the default).
func Outline(doc any, maxLines int) []string {
	if maxLines <= 0 {
		maxLines = DefaultOutlineCap
	}
	lines := make([]string, 0)

	for _, ep := range MatchEndpoints(doc, "source") {
		if len(lines) >= maxLines {
			return lines
		}
		lines = append(lines, triggerLine(ep))
	}

	Walk(doc, func(_ string, value any) bool {
		if len(lines) >= maxLines {
			return false
		}
		m, ok := value.(map[string]any)
		if !ok {
			return true
		}
		token := typeToken(m)
		if token == "" {
			return true
		}
		for _, rule := range outlineRules {
			if containsAny(token, rule.needles) {
				if name := nodeName(m); name != "" {
					lines = append(lines, rule.label+" | "+name)
				} else {
					lines = append(lines, rule.label)
				}
				break
			}
		}
		return true
	})
	return lines
}

// triggerLine describes the connection bound to a source endpoint, tolerating
// the identifier and adapter-type fields moving around between tenants.
func triggerLine(endpoint map[string]any) string {
	id := ""
	connType := ""
	if conn, ok := endpoint["connection"].(map[string]any); ok {
		for _, field := range []string{"id", "code", "name"} {
			if s, ok := conn[field].(string); ok && s != "" {
				id = s
				break
			}
		}
		for _, field := range []string{"adapterType", "type"} {
			if s, ok := conn[field].(string); ok && s != "" {
				connType = s
				break
			}
		}
	}
	if id == "" {
		id = nodeName(endpoint)
	}
	if id == "" {
		return "Trigger"
	}
	if connType == "" {
		return "Trigger | " + id
	}
	return fmt.Sprintf("Trigger | %s (%s)", id, connType)
}

func containsAny(token string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(token, needle) {
			return true
		}
	}
	return false
}
