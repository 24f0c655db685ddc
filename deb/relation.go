package deb

import (
	"fmt"
	"sort"
	"strings"
)

// RelOp is a version constraint operator in a dependency relation.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-relationships.html#s-depsyntax
type RelOp string

const (
	OpStrictlyEarlier RelOp = "<<"
	OpEarlierEqual    RelOp = "<="
	OpExactlyEqual    RelOp = "="
	OpLaterEqual      RelOp = ">="
	OpStrictlyLater   RelOp = ">>"
)

// Relation is a single dependency on a named package, optionally
// constrained to a version range boundary.
type Relation struct {
	// Name is the depended-on package name, or a dh substitution
	// variable such as "${misc:Depends}".
	Name string

	// Op is the constraint operator. Empty means unversioned.
	Op RelOp

	// Version is the constraint boundary. Ignored when Op is empty.
	Version Version
}

// String renders the relation in control-file syntax: "name (>= 1.2)".
func (r Relation) String() string {
	if r.Op == "" {
		return r.Name
	}
	return fmt.Sprintf("%s (%s %s)", r.Name, r.Op, r.Version)
}

// Group is a set of alternative relations, any one of which satisfies
// the dependency. Rendered "a | b".
type Group []Relation

// String renders the group with " | " separators.
func (g Group) String() string {
	parts := make([]string, len(g))
	for i, r := range g {
		parts[i] = r.String()
	}
	return strings.Join(parts, " | ")
}

// Deps is a conjunction of groups: every group must be satisfied.
// Rendered comma-separated, the syntax of Depends and Build-Depends.
type Deps []Group

// String renders the dependency list with ", " separators.
func (d Deps) String() string {
	parts := make([]string, len(d))
	for i, g := range d {
		parts[i] = g.String()
	}
	return strings.Join(parts, ", ")
}

// ParseRelation parses a single relation such as "foo (>= 1.2)".
func ParseRelation(s string) (Relation, error) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open == -1 {
		if s == "" {
			return Relation{}, fmt.Errorf("empty relation")
		}
		return Relation{Name: s}, nil
	}
	if !strings.HasSuffix(s, ")") {
		return Relation{}, fmt.Errorf("unterminated constraint in %q", s)
	}
	name := strings.TrimSpace(s[:open])
	if name == "" {
		return Relation{}, fmt.Errorf("missing package name in %q", s)
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	var op RelOp
	for _, cand := range []RelOp{OpStrictlyEarlier, OpEarlierEqual, OpLaterEqual, OpStrictlyLater, OpExactlyEqual} {
		if strings.HasPrefix(inner, string(cand)) {
			op = cand
			break
		}
	}
	if op == "" {
		return Relation{}, fmt.Errorf("invalid constraint operator in %q", s)
	}
	ver, err := ParseVersion(strings.TrimSpace(strings.TrimPrefix(inner, string(op))))
	if err != nil {
		return Relation{}, fmt.Errorf("parsing constraint of %q: %w", s, err)
	}
	return Relation{Name: name, Op: op, Version: ver}, nil
}

// ParseDeps parses a comma-separated dependency list with "|" alternatives,
// the syntax of the Depends and Build-Depends control fields.
func ParseDeps(s string) (Deps, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var deps Deps
	for _, groupText := range strings.Split(s, ",") {
		groupText = strings.TrimSpace(groupText)
		if groupText == "" {
			continue
		}
		var g Group
		for _, relText := range strings.Split(groupText, "|") {
			r, err := ParseRelation(relText)
			if err != nil {
				return nil, err
			}
			g = append(g, r)
		}
		deps = append(deps, g)
	}
	return deps, nil
}

// Mentions reports whether any relation in the list references name.
func (d Deps) Mentions(name string) bool {
	for _, g := range d {
		for _, r := range g {
			if r.Name == name {
				return true
			}
		}
	}
	return false
}

// Rename re-points every relation referencing old to new and returns the
// number of relations changed.
func (d Deps) Rename(old, new string) int {
	n := 0
	for gi := range d {
		for ri := range d[gi] {
			if d[gi][ri].Name == old {
				d[gi][ri].Name = new
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the dependency list.
func (d Deps) Clone() Deps {
	if d == nil {
		return nil
	}
	out := make(Deps, len(d))
	for i, g := range d {
		out[i] = append(Group(nil), g...)
	}
	return out
}

// canonical returns the group strings sorted within and across groups,
// the order-insensitive denotation of the dependency list.
func (d Deps) canonical() []string {
	groups := make([]string, len(d))
	for i, g := range d {
		alts := make([]string, len(g))
		for j, r := range g {
			alts[j] = r.String()
		}
		sort.Strings(alts)
		groups[i] = strings.Join(alts, " | ")
	}
	sort.Strings(groups)
	return groups
}

// EqualSets reports whether a and b denote the same set of dependency
// relations, ignoring the order of groups and of alternatives.
func EqualSets(a, b Deps) bool {
	ca, cb := a.canonical(), b.canonical()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}
