package taxonomy

import (
	"fmt"
	"strings"
)

// PromptListing renders active categories as `"Name": description` lines for
// embedding into the extraction prompt.
func PromptListing(cats []*Category) string {
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		lines = append(lines, fmt.Sprintf("%q: %s", c.Name, c.Description))
	}
	return strings.Join(lines, "\n")
}

// Names returns the set of active category names.
func Names(cats []*Category) map[string]bool {
	set := make(map[string]bool, len(cats))
	for _, c := range cats {
		set[c.Name] = true
	}
	return set
}
