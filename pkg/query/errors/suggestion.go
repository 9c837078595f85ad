package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestionDistance bounds the edit distance of a "did you mean" match.
const maxSuggestionDistance = 3

// SuggestFieldName suggests a field name close to unknown. Subsequence
// matches (e.g. "ttl" for "title") are preferred, then the valid name with
// the smallest edit distance.
func SuggestFieldName(unknown string, validFields []string) string {
	if match := closestMatch(unknown, validFields); match != "" {
		return fmt.Sprintf("did you mean %q?", match)
	}
	if len(validFields) == 0 {
		return ""
	}

	sorted := append([]string(nil), validFields...)
	sort.Strings(sorted)
	if len(sorted) > 5 {
		return fmt.Sprintf("valid fields include: %s, ...", strings.Join(sorted[:5], ", "))
	}
	return fmt.Sprintf("valid fields: %s", strings.Join(sorted, ", "))
}

// SuggestOperator lists the operators a field accepts.
func SuggestOperator(validOperators []string) string {
	if len(validOperators) == 0 {
		return ""
	}
	quoted := make([]string, len(validOperators))
	for i, op := range validOperators {
		quoted[i] = fmt.Sprintf("%q", op)
	}
	return fmt.Sprintf("valid operators: %s", strings.Join(quoted, ", "))
}

func closestMatch(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", maxSuggestionDistance+1
	lower := strings.ToLower(target)
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}
