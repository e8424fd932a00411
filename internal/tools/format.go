// ABOUTME: Renders capability result records into the single text block MCP results carry.
// ABOUTME: Ordering is preserved exactly as returned by the provider.

package tools

import (
	"fmt"
	"strings"

	"github.com/2389/docs-gateway/internal/provider"
)

// FormatSearchResults renders search hits as a numbered list. An empty
// result set yields a fixed no-results line instead of an empty render.
func FormatSearchResults(phrase string, results []provider.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for: %s", phrase)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s':\n\n", phrase)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.Context != "" {
			fmt.Fprintf(&b, "   Context: %s\n", r.Context)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRecommendations renders related-page suggestions as a numbered
// list. An empty result set yields a fixed no-recommendations line.
func FormatRecommendations(url string, results []provider.Recommendation) string {
	if len(results) == 0 {
		return fmt.Sprintf("No recommendations found for: %s", url)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recommendations for %s:\n\n", url)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", r.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
