package search

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// DefaultMaxQueryResults bounds Query output.
const DefaultMaxQueryResults = 50

// Query evaluates a JSONPath expression against a design document and
// returns the matched values, truncated at maxResults (<= 0 selects the
// default). An invalid expression is the only error case.
func Query(doc any, selector string, maxResults int) ([]any, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxQueryResults
	}
	expr, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", selector, err)
	}
	results := expr.Get(doc)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
