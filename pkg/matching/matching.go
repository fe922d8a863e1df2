// Package matching implements the permissive entity matcher used to resolve
// names mentioned in chat against database records. Recall is deliberately
// favored over precision: every match goes through the confirmation gate
// before anything is written.
package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bls-living/sda-engine/pkg/apperrors"
)

// Matches reports whether query matches candidate. Both sides are
// lowercased and trimmed. A contiguous substring hit wins outright;
// otherwise every whitespace-separated token of the query must appear
// somewhere in the candidate, in any order.
func Matches(query, candidate string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))

	if q == "" || c == "" {
		return false
	}

	if strings.Contains(c, q) {
		return true
	}

	for _, token := range strings.Fields(q) {
		if !strings.Contains(c, token) {
			return false
		}
	}
	return true
}

// AmbiguousMatchError reports that a query matched more than one candidate.
// The first match (by stable name order) is still usable; the workflow
// surfaces the alternatives in the confirmation prompt.
type AmbiguousMatchError struct {
	Query string
	Names []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("query %q matched %d candidates: %s", e.Query, len(e.Names), strings.Join(e.Names, ", "))
}

// ResolveOne finds the candidate matching query. Candidates are ordered by
// name (original order breaks ties) before matching, so the result is
// deterministic regardless of input order.
//
// Zero matches return apperrors.ErrNotFound. Multiple matches return the
// first along with an *AmbiguousMatchError listing every matched name; the
// caller decides whether to proceed or ask.
func ResolveOne[T any](query string, items []T, nameOf func(T) string) (T, *AmbiguousMatchError, error) {
	var zero T

	ordered := make([]T, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.ToLower(nameOf(ordered[i])) < strings.ToLower(nameOf(ordered[j]))
	})

	var matched []T
	var names []string
	for _, item := range ordered {
		if Matches(query, nameOf(item)) {
			matched = append(matched, item)
			names = append(names, nameOf(item))
		}
	}

	switch len(matched) {
	case 0:
		return zero, nil, fmt.Errorf("no match for %q: %w", query, apperrors.ErrNotFound)
	case 1:
		return matched[0], nil, nil
	default:
		return matched[0], &AmbiguousMatchError{Query: query, Names: names}, nil
	}
}
