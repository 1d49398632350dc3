// Package exclusion provides path exclusion rules, based on regex patterns,
// applied when the snapshotter copies a project tree for a mutant run.
package exclusion

import (
	"fmt"
	"regexp"

	"github.com/spf13/viper"

	"github.com/polymute/polymute/internal/configuration"
)

// Rules represents a collection of regex patterns for path exclusion.
type Rules []*regexp.Regexp

// New creates exclusion rules from the run.exclude-files configuration key.
func New() (Rules, error) {
	var rules Rules

	// configuration.Get can't type-cast to []string a value coming from the
	// config file, because viper.Get(k) returns []interface{} in that case.
	flagValues := viper.GetStringSlice(configuration.RunExcludeFilesKey)

	for i, s := range flagValues {
		r, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("error in exclude-files param value #%d: %w", i, err)
		}

		rules = append(rules, r)
	}

	return rules, nil
}

// IsFileExcluded returns true if the given path matches any of the exclusion rules.
func (r Rules) IsFileExcluded(path string) bool {
	if len(r) == 0 {
		return false
	}

	for _, rule := range r {
		if rule.MatchString(path) {
			return true
		}
	}

	return false
}
