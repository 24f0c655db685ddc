// Package validate checks a packaging declaration for structural
// consistency: naming that re-derives through the mapper, dependency
// references that resolve, and install rules that point at declared
// packages. It also compares declarations field by field and
// cross-checks a built .deb against the declaration it was built from.
package validate

import (
	"fmt"
	"strings"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/deb"
	"github.com/etnz/hs-debianize/mapper"
)

// Violation is one failed consistency check. Field locates the defect,
// Message explains it.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Validate runs every consistency check and returns the violations
// found. An empty result means the declaration is coherent; Validate
// never mutates it.
func Validate(a *atoms.Atoms, ov *mapper.Overrides) []Violation {
	var vs []Violation
	fail := func(field, format string, args ...interface{}) {
		vs = append(vs, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !a.SourceName.IsSet() {
		fail("Source", "no source package name")
	} else if !deb.ValidName(a.SourceName.Get()) {
		fail("Source", "%q violates Debian package naming rules", a.SourceName.Get())
	}
	if !a.SourceVersion.IsSet() {
		fail("Version", "no source package version")
	}
	if !a.Maintainer.IsSet() {
		fail("Maintainer", "no maintainer")
	}
	if len(a.Binaries()) == 0 {
		fail("Package", "no binary packages declared")
	}

	declared := make(map[string]bool, len(a.Binaries()))
	for _, b := range a.Binaries() {
		if declared[b.Name] {
			fail("Package", "%s declared twice", b.Name)
		}
		declared[b.Name] = true
		if !deb.ValidName(b.Name) {
			fail("Package", "%q violates Debian package naming rules", b.Name)
		}
		for _, f := range b.InstallFiles {
			if f == "" {
				fail(b.Name+".install", "empty install entry")
			} else if strings.HasPrefix(f, "/") {
				fail(b.Name+".install", "%q must be relative to the package root", f)
			}
		}
	}

	// With the upstream manifest at hand, every non-executable binary
	// name must re-derive through the mapper and the override tables.
	if up := a.Upstream; up != nil {
		if v, err := deb.ParseVersion(up.Version); err == nil {
			id := mapper.Identity{Name: up.Name, Version: v}
			for _, b := range a.Binaries() {
				if b.Role == mapper.Utils {
					continue
				}
				want, err := mapper.MapName(id, b.Role, ov)
				if err != nil {
					fail(b.Name, "name does not resolve: %v", err)
					continue
				}
				if b.Name != want.String() {
					fail(b.Name, "does not re-derive from %s (mapper yields %s)", id, want)
				}
			}
		}
	}

	checkDeps := func(field string, d deb.Deps) {
		for _, g := range d {
			for _, r := range g {
				if declared[r.Name] || strings.HasPrefix(r.Name, "${") {
					continue
				}
				if !deb.ValidName(r.Name) {
					fail(field, "dependency %q is neither a declared package nor a legal external name", r.Name)
				}
			}
		}
	}
	if a.BuildDepends.IsSet() {
		checkDeps("Build-Depends", a.BuildDepends.Get())
	}
	for _, b := range a.Binaries() {
		if b.Depends.IsSet() {
			checkDeps(b.Name+" Depends", b.Depends.Get())
		}
		if b.Recommends.IsSet() {
			checkDeps(b.Name+" Recommends", b.Recommends.Get())
		}
		if b.Suggests.IsSet() {
			checkDeps(b.Name+" Suggests", b.Suggests.Get())
		}
	}
	return vs
}
