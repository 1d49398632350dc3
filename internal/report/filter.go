package report

import (
	"errors"

	"github.com/polymute/polymute/internal/mutation"
)

// Filter maps mutation outcomes to status letters that should be logged
// as a progress line during a run.
type Filter map[mutation.Outcome]struct{}

// ErrInvalidFilter is returned when an invalid status filter string is
// passed to --show-status.
var ErrInvalidFilter = errors.New("invalid statuses filter, only 'lktv' letters allowed")

// ParseFilter parses a --show-status filter string into a Filter map. Valid
// letters are l(ived=survived), k(illed), t(imeout), v(not viable). An empty
// string means no filtering: every outcome is logged.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return nil, nil
	}

	result := Filter{}

	for _, r := range s {
		switch r {
		case 'l':
			result[mutation.Survived] = struct{}{}
		case 'k':
			result[mutation.Killed] = struct{}{}
		case 't':
			result[mutation.Timeout] = struct{}{}
		case 'v':
			result[mutation.Unviable] = struct{}{}
		default:
			return nil, ErrInvalidFilter
		}
	}

	return result, nil
}

// Allows reports whether outcome should be logged under this filter. A nil
// Filter allows everything.
func (f Filter) Allows(outcome mutation.Outcome) bool {
	if f == nil {
		return true
	}

	_, ok := f[outcome]

	return ok
}
