package mapper

import (
	"fmt"
	"sort"

	"github.com/etnz/hs-debianize/deb"
)

// SplitRule maps the upstream versions strictly below Before to the base
// name Base. A version exactly at the boundary belongs to the next rule
// (or the default), i.e. to the higher range.
type SplitRule struct {
	Before deb.Version
	Base   string
}

// Splits is the ordered version-split table of one upstream package:
// rules ascending by boundary, plus the base name for every version at or
// above the last boundary. The table is data, not code; override entries
// can amend it without changing the engine.
type Splits struct {
	// Default is the base name used when no rule matches.
	Default string

	// Rules is ordered ascending by Before. Ranges are therefore
	// non-overlapping and exhaustive.
	Rules []SplitRule
}

// Base selects the base name for an upstream version: the first rule
// whose boundary lies strictly above the version, falling back to the
// default base.
func (s Splits) Base(v deb.Version) string {
	for _, r := range s.Rules {
		if deb.Compare(v, r.Before) < 0 {
			return r.Base
		}
	}
	return s.Default
}

// validate checks the structural invariant: boundaries strictly
// ascending, every base non-empty.
func (s Splits) validate() error {
	if s.Default == "" {
		return fmt.Errorf("split table has no default base")
	}
	if !sort.SliceIsSorted(s.Rules, func(i, j int) bool {
		return deb.Compare(s.Rules[i].Before, s.Rules[j].Before) < 0
	}) {
		return fmt.Errorf("split boundaries are not ascending")
	}
	for i := 1; i < len(s.Rules); i++ {
		if deb.Compare(s.Rules[i-1].Before, s.Rules[i].Before) == 0 {
			return fmt.Errorf("duplicate split boundary %s", s.Rules[i].Before)
		}
	}
	for _, r := range s.Rules {
		if r.Base == "" {
			return fmt.Errorf("split rule before %s has no base", r.Before)
		}
	}
	return nil
}
