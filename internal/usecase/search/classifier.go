package search

import (
	"strings"
	"unicode"

	"github.com/talentmesh/profilesearch/internal/domain/search/policy"
)

// isExactTerm classifies a query as exact-term (names, companies, specific
// technologies) versus semantic (roles, concepts). Exact-term queries shift
// fusion weight toward lexical matching.
//
// Heuristics, in order:
//   - quoted text is always exact
//   - a single word longer than three characters is exact unless it is a
//     generic role title ("developer", "engineer", ...)
//   - up to three words containing a capital letter or digit look like a
//     proper noun or product name, so exact
func isExactTerm(text string, pol policy.Policy) bool {
	if strings.Contains(text, `"`) {
		return true
	}

	words := strings.Fields(text)
	switch {
	case len(words) == 1:
		return len(words[0]) > 3 && !pol.IsGenericTitle(words[0])
	case len(words) <= 3:
		for _, w := range words {
			for _, r := range w {
				if unicode.IsUpper(r) || unicode.IsDigit(r) {
					return true
				}
			}
		}
	}
	return false
}
