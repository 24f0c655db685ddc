// Package atoms models the downstream packaging declaration as it
// accumulates through the pipeline: created empty or from defaults,
// filled by the input and customize phases, completed by the
// finalization engine, frozen afterwards.
//
// Every slot is a Field with an explicit origin state, and all merging
// follows the "first writer wins" discipline: a later-applied value never
// overwrites an already-present value for the same field.
package atoms

import (
	"errors"
	"fmt"

	"github.com/etnz/hs-debianize/cabal"
	"github.com/etnz/hs-debianize/deb"
	"github.com/etnz/hs-debianize/mapper"
)

// ErrFrozen is returned by mutators after the declaration has been
// finalized.
var ErrFrozen = errors.New("atoms: declaration is frozen")

// InconsistentOverrideError reports a remap whose old name appears in no
// still-valid field, indicating a dangling override.
type InconsistentOverrideError struct {
	Old string
	New string
}

func (e *InconsistentOverrideError) Error() string {
	return fmt.Sprintf("remap %s -> %s: %s is not referenced by any binary package or dependency", e.Old, e.New, e.Old)
}

// Binary is the declaration of one binary package.
type Binary struct {
	// Name is the downstream package name, produced by the mapper.
	Name string

	// Role is the name's details qualifier, recorded so re-finalization
	// derives consistent per-role defaults.
	Role mapper.Details

	Architecture Field[string]
	Section      Field[string]
	Synopsis     Field[string]
	Description  Field[string]
	Depends      Field[deb.Deps]
	Recommends   Field[deb.Deps]
	Suggests     Field[deb.Deps]

	// InstallFiles are the debian/<name>.install entries.
	InstallFiles []string
}

// clone returns a deep copy of the binary declaration.
func (b *Binary) clone() *Binary {
	c := *b
	if b.Depends.IsSet() {
		c.Depends = Field[deb.Deps]{}
		c.Depends.set(b.Depends.Get().Clone(), b.Depends.Origin())
	}
	if b.Recommends.IsSet() {
		c.Recommends = Field[deb.Deps]{}
		c.Recommends.set(b.Recommends.Get().Clone(), b.Recommends.Origin())
	}
	if b.Suggests.IsSet() {
		c.Suggests = Field[deb.Deps]{}
		c.Suggests.set(b.Suggests.Get().Clone(), b.Suggests.Origin())
	}
	c.InstallFiles = append([]string(nil), b.InstallFiles...)
	return &c
}

// Atoms is the packaging declaration aggregate.
type Atoms struct {
	// Upstream is the read-only upstream manifest this declaration was
	// derived from. May be nil when reconstructed from disk only.
	Upstream *cabal.PackageDescription

	SourceName       Field[string]
	SourceVersion    Field[deb.Version]
	Maintainer       Field[string]
	Uploaders        Field[[]string]
	Section          Field[string]
	Priority         Field[string]
	StandardsVersion Field[string]
	CompatLevel      Field[int]
	Homepage         Field[string]

	// License is the debian/copyright short name; Copyright the holder
	// line(s) of the copyright file.
	License   Field[string]
	Copyright Field[string]

	BuildDepends     Field[deb.Deps]
	ChangelogComment Field[string]

	// RulesFragments are free-form debian/rules fragments appended after
	// the generated skeleton, in the order supplied.
	RulesFragments []string

	binaries []*Binary
	frozen   bool
}

// New creates a declaration for an upstream description. desc may be nil.
func New(desc *cabal.PackageDescription) *Atoms {
	return &Atoms{Upstream: desc}
}

// Binaries returns the binary declarations in their declared order.
func (a *Atoms) Binaries() []*Binary { return a.binaries }

// Binary returns the named binary declaration, or nil.
func (a *Atoms) Binary(name string) *Binary {
	for _, b := range a.binaries {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// AddBinary returns the named binary declaration, creating it when
// absent. Creation fails on a frozen declaration.
func (a *Atoms) AddBinary(name mapper.Name) (*Binary, error) {
	if b := a.Binary(name.String()); b != nil {
		return b, nil
	}
	if a.frozen {
		return nil, ErrFrozen
	}
	b := &Binary{Name: name.String(), Role: name.Details}
	a.binaries = append(a.binaries, b)
	return b, nil
}

// Merge applies other onto a with set-if-absent semantics: every field of
// other fills the corresponding unset field of a, present values are left
// untouched. Binaries are matched by name; unmatched ones are appended.
func (a *Atoms) Merge(other *Atoms) error {
	if a.frozen {
		return ErrFrozen
	}
	if other == nil {
		return nil
	}

	mergeField(&a.SourceName, other.SourceName)
	mergeField(&a.SourceVersion, other.SourceVersion)
	mergeField(&a.Maintainer, other.Maintainer)
	mergeField(&a.Uploaders, other.Uploaders)
	mergeField(&a.Section, other.Section)
	mergeField(&a.Priority, other.Priority)
	mergeField(&a.StandardsVersion, other.StandardsVersion)
	mergeField(&a.CompatLevel, other.CompatLevel)
	mergeField(&a.Homepage, other.Homepage)
	mergeField(&a.License, other.License)
	mergeField(&a.Copyright, other.Copyright)
	mergeDeps(&a.BuildDepends, other.BuildDepends)
	mergeField(&a.ChangelogComment, other.ChangelogComment)

	if a.Upstream == nil {
		a.Upstream = other.Upstream
	}
	if len(a.RulesFragments) == 0 {
		a.RulesFragments = append([]string(nil), other.RulesFragments...)
	}

	for _, ob := range other.binaries {
		existing := a.Binary(ob.Name)
		if existing == nil {
			a.binaries = append(a.binaries, ob.clone())
			continue
		}
		mergeField(&existing.Architecture, ob.Architecture)
		mergeField(&existing.Section, ob.Section)
		mergeField(&existing.Synopsis, ob.Synopsis)
		mergeField(&existing.Description, ob.Description)
		mergeDeps(&existing.Depends, ob.Depends)
		mergeDeps(&existing.Recommends, ob.Recommends)
		mergeDeps(&existing.Suggests, ob.Suggests)
		if len(existing.InstallFiles) == 0 {
			existing.InstallFiles = append([]string(nil), ob.InstallFiles...)
		}
	}
	return nil
}

// mergeDeps is mergeField for dependency fields. Relation slices are
// mutated in place by Rename, so the copy must not share backing arrays
// with the source.
func mergeDeps(dst *Field[deb.Deps], src Field[deb.Deps]) {
	if src.IsSet() && !dst.IsSet() {
		dst.set(src.Get().Clone(), src.Origin())
	}
}

// RenameBinary retroactively replaces an already-computed binary package
// name, re-pointing every dependency relation that references the old
// name. It returns *InconsistentOverrideError when the old name appears
// in no still-valid field.
func (a *Atoms) RenameBinary(old, new string) error {
	if a.frozen {
		return ErrFrozen
	}

	touched := 0
	for _, b := range a.binaries {
		if b.Name == old {
			b.Name = new
			touched++
		}
		for _, f := range []*Field[deb.Deps]{&b.Depends, &b.Recommends, &b.Suggests} {
			if f.IsSet() {
				touched += f.Get().Rename(old, new)
			}
		}
	}
	if a.BuildDepends.IsSet() {
		touched += a.BuildDepends.Get().Rename(old, new)
	}

	if touched == 0 {
		return &InconsistentOverrideError{Old: old, New: new}
	}
	return nil
}

// Customizer is a caller-supplied transformation applied between the
// input and finalize phases. Each customizer must obey the first-writer-
// wins merge discipline (use Field.Set / Field.Override deliberately).
type Customizer func(*Atoms) error

// Customize applies the transformations in the order supplied.
func (a *Atoms) Customize(fns ...Customizer) error {
	if a.frozen {
		return ErrFrozen
	}
	for _, fn := range fns {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

// Freeze marks the declaration read-only. Called by the finalization
// engine after it succeeds; mutators return ErrFrozen afterwards.
func (a *Atoms) Freeze() { a.frozen = true }

// Frozen reports whether the declaration has been frozen.
func (a *Atoms) Frozen() bool { return a.frozen }

// Clone returns an unfrozen deep copy, used for dry runs and idempotence
// checks.
func (a *Atoms) Clone() *Atoms {
	c := *a
	c.frozen = false
	if a.BuildDepends.IsSet() {
		c.BuildDepends = Field[deb.Deps]{}
		c.BuildDepends.set(a.BuildDepends.Get().Clone(), a.BuildDepends.Origin())
	}
	if a.Uploaders.IsSet() {
		c.Uploaders = Field[[]string]{}
		c.Uploaders.set(append([]string(nil), a.Uploaders.Get()...), a.Uploaders.Origin())
	}
	c.RulesFragments = append([]string(nil), a.RulesFragments...)
	c.binaries = make([]*Binary, len(a.binaries))
	for i, b := range a.binaries {
		c.binaries[i] = b.clone()
	}
	return &c
}
