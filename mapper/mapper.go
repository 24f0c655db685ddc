// Package mapper resolves upstream package identities to downstream
// Debian package names. Resolution is a pure function of the identity and
// the override tables: an exact-identity override always wins, then a
// matching version-split rule, then the deterministic default transform.
package mapper

import (
	"fmt"
	"strings"

	"github.com/etnz/hs-debianize/deb"
)

// Identity is an upstream package identity: declared name plus version.
// Immutable once read from the upstream manifest.
type Identity struct {
	Name    string
	Version deb.Version
}

// String renders the identity as "name-version".
func (id Identity) String() string {
	if id.Version.IsZero() {
		return id.Name
	}
	return id.Name + "-" + id.Version.String()
}

// Details qualifies the role a downstream package name plays for one
// upstream unit: the source package or one of its binary variants.
type Details int

const (
	// Source is the source package ("haskell-<base>").
	Source Details = iota
	// Dev is the development files binary ("libhaskell-<base>-dev").
	Dev
	// Prof is the profiling libraries binary ("libhaskell-<base>-prof").
	Prof
	// Doc is the documentation binary ("libhaskell-<base>-doc").
	Doc
	// Utils is an executable binary, named after the program itself.
	Utils
)

// String returns the role name.
func (d Details) String() string {
	switch d {
	case Source:
		return "source"
	case Dev:
		return "dev"
	case Prof:
		return "prof"
	case Doc:
		return "doc"
	case Utils:
		return "utils"
	}
	return fmt.Sprintf("details(%d)", int(d))
}

// Name is a downstream package name, decomposed into its base identity
// and its role qualifier. Always produced by MapName, never
// hand-constructed elsewhere.
type Name struct {
	Base    string
	Details Details
}

// String renders the canonical downstream package name.
func (n Name) String() string {
	switch n.Details {
	case Source:
		return "haskell-" + n.Base
	case Dev:
		return "libhaskell-" + n.Base + "-dev"
	case Prof:
		return "libhaskell-" + n.Base + "-prof"
	case Doc:
		return "libhaskell-" + n.Base + "-doc"
	default:
		return n.Base
	}
}

// ParseName recognizes a rendered downstream name and recovers its base
// and details. The second return is false when the name does not follow
// the canonical shape (it is then treated as a Utils name).
func ParseName(s string) (Name, bool) {
	switch {
	case strings.HasPrefix(s, "libhaskell-") && strings.HasSuffix(s, "-dev"):
		return Name{Base: strings.TrimSuffix(strings.TrimPrefix(s, "libhaskell-"), "-dev"), Details: Dev}, true
	case strings.HasPrefix(s, "libhaskell-") && strings.HasSuffix(s, "-prof"):
		return Name{Base: strings.TrimSuffix(strings.TrimPrefix(s, "libhaskell-"), "-prof"), Details: Prof}, true
	case strings.HasPrefix(s, "libhaskell-") && strings.HasSuffix(s, "-doc"):
		return Name{Base: strings.TrimSuffix(strings.TrimPrefix(s, "libhaskell-"), "-doc"), Details: Doc}, true
	case strings.HasPrefix(s, "haskell-"):
		return Name{Base: strings.TrimPrefix(s, "haskell-"), Details: Source}, true
	default:
		return Name{Base: s, Details: Utils}, false
	}
}

// UnresolvedIdentityError reports that no rule and no default mechanism
// produce a legal package name for an identity. Fatal to finalization.
type UnresolvedIdentityError struct {
	Identity Identity
	Name     string
	Reason   string
}

func (e *UnresolvedIdentityError) Error() string {
	return fmt.Sprintf("cannot name package for %s: %s (candidate %q)", e.Identity, e.Reason, e.Name)
}

// DefaultBase is the deterministic default transformation of an upstream
// name: lower-cased with underscores replaced by hyphens, the only two
// changes needed to make a typical upstream name legal downstream.
func DefaultBase(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	return name
}

// MapName resolves an upstream identity to a downstream package name for
// the requested role. Resolution order: exact-name override, version-split
// rule, default transform. The rendered name is validated against Debian
// naming rules; failure yields *UnresolvedIdentityError.
//
// MapName has no side effects; it is a pure function of its tables.
func MapName(id Identity, details Details, ov *Overrides) (Name, error) {
	var base string
	switch {
	case ov != nil && ov.Names[id.Name] != "":
		base = ov.Names[id.Name]
	case ov != nil && ov.splitFor(id.Name) != nil:
		base = ov.splitFor(id.Name).Base(id.Version)
	default:
		base = DefaultBase(id.Name)
	}

	n := Name{Base: base, Details: details}
	if !deb.ValidName(n.String()) {
		return Name{}, &UnresolvedIdentityError{
			Identity: id,
			Name:     n.String(),
			Reason:   "name violates Debian package naming rules",
		}
	}
	return n, nil
}

// SplitRange returns the effective version-split rules for an identity:
// the override table's rules when present, otherwise a single-rule table
// built from the default transform.
func SplitRange(id Identity, ov *Overrides) Splits {
	if ov != nil {
		if s := ov.splitFor(id.Name); s != nil {
			return *s
		}
	}
	return Splits{Default: DefaultBase(id.Name)}
}
