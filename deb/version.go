package deb

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a Debian package version.
// The textual format is: [epoch:]upstream_version[-debian_revision].
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-version
type Version struct {
	// Epoch is the version-ordering override prefix. Zero means no epoch.
	Epoch int

	// Upstream is the upstream version part.
	Upstream string

	// Revision is the debian revision part (everything after the last
	// hyphen). Empty for native or revision-less versions.
	Revision string
}

// ParseVersion parses a Debian version string.
// It splits the epoch on the first colon and the revision on the last hyphen.
func ParseVersion(s string) (Version, error) {
	var v Version
	rest := s
	if i := strings.Index(rest, ":"); i != -1 {
		epoch, err := strconv.Atoi(rest[:i])
		if err != nil || epoch < 0 {
			return Version{}, fmt.Errorf("invalid epoch in version %q", s)
		}
		v.Epoch = epoch
		rest = rest[i+1:]
	}
	if i := strings.LastIndex(rest, "-"); i != -1 {
		v.Revision = rest[i+1:]
		rest = rest[:i]
	}
	if rest == "" {
		return Version{}, fmt.Errorf("empty upstream version in %q", s)
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if isDigit(c) || isAlpha(c) || strings.IndexByte(".+-:~", c) != -1 {
			continue
		}
		return Version{}, fmt.Errorf("invalid character %q in version %q", c, s)
	}
	v.Upstream = rest
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
// It is intended for static policy tables and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version in its canonical textual form,
// omitting a zero epoch and an empty revision.
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d:", v.Epoch)
	}
	b.WriteString(v.Upstream)
	if v.Revision != "" {
		b.WriteString("-")
		b.WriteString(v.Revision)
	}
	return b.String()
}

// IsZero reports whether the version is the zero value.
func (v Version) IsZero() bool {
	return v.Epoch == 0 && v.Upstream == "" && v.Revision == ""
}

// Compare returns -1, 0 or 1 when a sorts before, equal to or after b
// under the Debian version ordering rules: epochs compare numerically,
// then the upstream parts, then the revisions, each using the
// digit/non-digit run comparison where '~' sorts before everything.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-version
func Compare(a, b Version) int {
	switch {
	case a.Epoch < b.Epoch:
		return -1
	case a.Epoch > b.Epoch:
		return 1
	}
	if c := verrevcmp(a.Upstream, b.Upstream); c != 0 {
		return c
	}
	return verrevcmp(a.Revision, b.Revision)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// charOrder assigns the dpkg sort weight of a character within a
// non-digit run: '~' before end-of-string, digits with end-of-string,
// letters before anything else. A digit only reaches here when the
// other fragment still has non-digit characters left.
func charOrder(c byte) int {
	switch {
	case c == '~':
		return -1
	case c == 0 || isDigit(c):
		return 0
	case isAlpha(c):
		return int(c)
	default:
		return int(c) + 256
	}
}

// verrevcmp compares two version fragments by alternating non-digit and
// digit runs, the algorithm used by dpkg for both the upstream version
// and the debian revision.
func verrevcmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		// Non-digit run.
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			var ac, bc byte
			if i < len(a) {
				ac = a[i]
			}
			if j < len(b) {
				bc = b[j]
			}
			if d := charOrder(ac) - charOrder(bc); d != 0 {
				if d < 0 {
					return -1
				}
				return 1
			}
			i++
			j++
		}
		// Digit run: skip leading zeros, then the longer run wins,
		// then the first differing digit.
		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}
		si, sj := i, j
		for i < len(a) && isDigit(a[i]) {
			i++
		}
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		if la, lb := i-si, j-sj; la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a[si:i], b[sj:j]); c != 0 {
			return c
		}
	}
	return 0
}

// ValidName reports whether s is a legal Debian package name. Names must
// consist only of lower case letters (a-z), digits (0-9), plus (+) and
// minus (-) signs, and periods (.), be at least two characters long and
// start with an alphanumeric character.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#s-f-package
func ValidName(s string) bool {
	if len(s) < 2 {
		return false
	}
	if !(s[0] >= 'a' && s[0] <= 'z') && !isDigit(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || isDigit(c) || c == '+' || c == '-' || c == '.' {
			continue
		}
		return false
	}
	return true
}
