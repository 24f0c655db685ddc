package validate

import (
	"fmt"
	"strings"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/deb"
)

// Change is one field whose value differs between two declarations.
// An empty Old means the field was added, an empty New that it was
// removed.
type Change struct {
	Field string
	Old   string
	New   string
}

func (c Change) String() string {
	switch {
	case c.Old == "":
		return fmt.Sprintf("%s: added %q", c.Field, c.New)
	case c.New == "":
		return fmt.Sprintf("%s: removed %q", c.Field, c.Old)
	default:
		return fmt.Sprintf("%s: %q -> %q", c.Field, c.Old, c.New)
	}
}

// DiffReport is the field-by-field difference between two declarations.
type DiffReport struct {
	Changes []Change
}

// Empty reports whether the two declarations were equivalent.
func (r DiffReport) Empty() bool { return len(r.Changes) == 0 }

func (r DiffReport) String() string {
	lines := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// Compare diffs declaration b against a: Old values come from a, New
// values from b. A nil b compares against the empty declaration, so
// every set field of a appears as removed. Dependency fields compare as
// sets, ignoring group and alternative order. Compare(a, a) is empty.
func Compare(a, b *atoms.Atoms) DiffReport {
	if a == nil {
		a = atoms.New(nil)
	}
	if b == nil {
		b = atoms.New(nil)
	}

	var r DiffReport
	field := func(name, old, new string) {
		if old != new {
			r.Changes = append(r.Changes, Change{Field: name, Old: old, New: new})
		}
	}
	depsField := func(name string, old, new atoms.Field[deb.Deps]) {
		if deb.EqualSets(old.Get(), new.Get()) {
			return
		}
		field(name, old.Get().String(), new.Get().String())
	}

	field("Source", a.SourceName.Get(), b.SourceName.Get())
	field("Version", versionString(a), versionString(b))
	field("Maintainer", a.Maintainer.Get(), b.Maintainer.Get())
	field("Uploaders", strings.Join(a.Uploaders.Get(), ", "), strings.Join(b.Uploaders.Get(), ", "))
	field("Section", a.Section.Get(), b.Section.Get())
	field("Priority", a.Priority.Get(), b.Priority.Get())
	field("Standards-Version", a.StandardsVersion.Get(), b.StandardsVersion.Get())
	field("Compat", compatString(a), compatString(b))
	field("Homepage", a.Homepage.Get(), b.Homepage.Get())
	field("License", a.License.Get(), b.License.Get())
	field("Copyright", a.Copyright.Get(), b.Copyright.Get())
	field("Changelog", a.ChangelogComment.Get(), b.ChangelogComment.Get())
	depsField("Build-Depends", a.BuildDepends, b.BuildDepends)
	field("Rules", strings.Join(a.RulesFragments, "\n"), strings.Join(b.RulesFragments, "\n"))

	seen := make(map[string]bool)
	for _, ab := range a.Binaries() {
		seen[ab.Name] = true
		bb := b.Binary(ab.Name)
		if bb == nil {
			r.Changes = append(r.Changes, Change{Field: "Package", Old: ab.Name})
			continue
		}
		prefix := ab.Name + " "
		field(prefix+"Architecture", ab.Architecture.Get(), bb.Architecture.Get())
		field(prefix+"Section", ab.Section.Get(), bb.Section.Get())
		field(prefix+"Synopsis", ab.Synopsis.Get(), bb.Synopsis.Get())
		field(prefix+"Description", ab.Description.Get(), bb.Description.Get())
		depsField(prefix+"Depends", ab.Depends, bb.Depends)
		depsField(prefix+"Recommends", ab.Recommends, bb.Recommends)
		depsField(prefix+"Suggests", ab.Suggests, bb.Suggests)
		field(prefix+"Install", strings.Join(ab.InstallFiles, "\n"), strings.Join(bb.InstallFiles, "\n"))
	}
	for _, bb := range b.Binaries() {
		if !seen[bb.Name] {
			r.Changes = append(r.Changes, Change{Field: "Package", New: bb.Name})
		}
	}
	return r
}

func versionString(a *atoms.Atoms) string {
	if !a.SourceVersion.IsSet() {
		return ""
	}
	return a.SourceVersion.Get().String()
}

func compatString(a *atoms.Atoms) string {
	if !a.CompatLevel.IsSet() {
		return ""
	}
	return fmt.Sprintf("%d", a.CompatLevel.Get())
}
