// Package finalize is the completion engine of the pipeline: it fills
// every still-unset field of a packaging declaration from the upstream
// manifest, the policy tables and the override tables, then freezes the
// declaration.
//
// Finalization is idempotent. Re-running it on an already-complete
// declaration computes nothing new, and a frozen declaration is returned
// untouched. User-supplied values always survive: the engine only ever
// writes through Field.Compute, which loses against any present value.
package finalize

import (
	"fmt"
	"strings"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/cabal"
	"github.com/etnz/hs-debianize/deb"
	"github.com/etnz/hs-debianize/mapper"
	"github.com/etnz/hs-debianize/policy"
)

// Finalize completes the declaration in place. Independent field
// failures are accumulated into an Errors value so one run reports them
// all; structural failures (unparsable upstream version, unresolvable
// package names) abort immediately. The declaration is frozen only on
// full success.
func Finalize(a *atoms.Atoms, pol *policy.Tables, ov *mapper.Overrides, l Listener) error {
	if a.Frozen() {
		return nil
	}
	if pol == nil {
		pol = policy.Default()
	}
	if l == nil {
		l = func(fmt.Stringer) {}
	}
	e := &engine{a: a, pol: pol, ov: ov, emit: l}

	id, err := e.identity()
	if err != nil {
		return err
	}
	if err := e.source(id); err != nil {
		return err
	}
	e.ambient()
	if err := e.declareBinaries(id); err != nil {
		return err
	}
	e.binaryDefaults()
	if err := e.dependencies(id); err != nil {
		return err
	}
	e.license()

	if len(e.errs) > 0 {
		return e.errs
	}
	a.Freeze()
	e.emit(EventFinalized{
		Source:   a.SourceName.Get(),
		Version:  a.SourceVersion.Get().String(),
		Binaries: len(a.Binaries()),
	})
	return nil
}

type engine struct {
	a    *atoms.Atoms
	pol  *policy.Tables
	ov   *mapper.Overrides
	emit Listener
	errs Errors
}

func (e *engine) missing(field, reason string) {
	e.errs = append(e.errs, &MissingFieldError{Field: field, Reason: reason})
}

func (e *engine) computed(field, value string) {
	e.emit(EventFieldComputed{Field: field, Value: value})
}

// identity parses the upstream identity the whole derivation hangs on.
// A declaration without a manifest is legal only when its source fields
// were supplied by the caller.
func (e *engine) identity() (mapper.Identity, error) {
	up := e.a.Upstream
	if up == nil {
		if !e.a.SourceName.IsSet() || !e.a.SourceVersion.IsSet() {
			return mapper.Identity{}, &MissingFieldError{
				Field:  "Source",
				Reason: "no upstream manifest and no caller-supplied source identity",
			}
		}
		return mapper.Identity{}, nil
	}
	v, err := deb.ParseVersion(up.Version)
	if err != nil {
		return mapper.Identity{}, fmt.Errorf("upstream version %q: %w", up.Version, err)
	}
	return mapper.Identity{Name: up.Name, Version: v}, nil
}

func (e *engine) source(id mapper.Identity) error {
	if !e.a.SourceName.IsSet() {
		n, err := mapper.MapName(id, mapper.Source, e.ov)
		if err != nil {
			return err
		}
		e.a.SourceName.Compute(n.String())
		e.computed("Source", n.String())
	}
	if !e.a.SourceVersion.IsSet() {
		v := id.Version
		v.Epoch = e.pol.Epoch(id.Name, v)
		v.Revision = "1"
		e.a.SourceVersion.Compute(v)
		e.computed("Version", v.String())
	}
	return nil
}

// ambient fills the fields that depend only on the manifest and the
// policy tables, before the per-binary passes read them.
func (e *engine) ambient() {
	a, up := e.a, e.a.Upstream

	if !a.Maintainer.IsSet() {
		if up == nil || up.Maintainer == "" {
			e.missing("Maintainer", "not declared upstream")
		} else if a.Maintainer.Compute(up.Maintainer) {
			e.computed("Maintainer", up.Maintainer)
		}
	}
	a.Section.Compute(e.pol.SourceSection)
	a.Priority.Compute(e.pol.Priority)
	a.StandardsVersion.Compute(e.pol.StandardsVersion)
	a.CompatLevel.Compute(e.pol.CompatLevel)
	if up != nil && up.Homepage != "" {
		a.Homepage.Compute(up.Homepage)
	}
	a.ChangelogComment.Compute("Initial release of the generated packaging.")
}

// declareBinaries builds the default binary-package list: the dev, prof
// and doc triplet for a library component, one package per executable.
func (e *engine) declareBinaries(id mapper.Identity) error {
	a := e.a
	if len(a.Binaries()) > 0 {
		return nil
	}
	up := a.Upstream
	if up == nil {
		e.missing("Package", "no binary packages declared and no manifest to derive them from")
		return nil
	}

	add := func(details mapper.Details, install ...string) error {
		n, err := mapper.MapName(id, details, e.ov)
		if err != nil {
			return err
		}
		b, err := a.AddBinary(n)
		if err != nil {
			return err
		}
		b.InstallFiles = append(b.InstallFiles, install...)
		e.emit(EventBinaryAdded{Package: b.Name, Role: details.String()})
		return nil
	}

	if up.Library != nil {
		for _, details := range []mapper.Details{mapper.Dev, mapper.Prof, mapper.Doc} {
			if err := add(details); err != nil {
				return err
			}
		}
	}
	for _, exe := range up.Executables {
		n, err := mapper.MapName(mapper.Identity{Name: exe.Name, Version: id.Version}, mapper.Utils, e.ov)
		if err != nil {
			return err
		}
		b, err := a.AddBinary(n)
		if err != nil {
			return err
		}
		if len(b.InstallFiles) == 0 {
			b.InstallFiles = []string{"usr/bin/" + exe.Name}
		}
		e.emit(EventBinaryAdded{Package: b.Name, Role: mapper.Utils.String()})
	}
	if len(a.Binaries()) == 0 {
		e.missing("Package", "manifest declares neither a library nor executables")
	}
	return nil
}

// binaryDefaults fills architecture, section and description of every
// binary. A defect in one binary never blocks the others.
func (e *engine) binaryDefaults() {
	up := e.a.Upstream
	for _, b := range e.a.Binaries() {
		if b.Role == mapper.Doc {
			b.Architecture.Compute(e.pol.ArchAll)
		} else {
			b.Architecture.Compute(e.pol.ArchAny)
		}
		switch b.Role {
		case mapper.Doc:
			b.Section.Compute(e.pol.DocSection)
		case mapper.Utils:
			b.Section.Compute(e.pol.UtilsSection)
		default:
			b.Section.Compute(e.pol.SourceSection)
		}

		if !b.Synopsis.IsSet() {
			if up == nil || up.Synopsis == "" {
				if !b.Description.IsSet() {
					e.missing("Description of "+b.Name, "no synopsis declared upstream")
				}
			} else {
				b.Synopsis.Compute(up.Synopsis + roleSuffix(b.Role))
			}
		}
		if !b.Description.IsSet() && up != nil {
			if up.Description != "" {
				b.Description.Compute(up.Description)
			} else if up.Synopsis != "" {
				b.Description.Compute(up.Synopsis)
			}
		}
	}
}

func roleSuffix(d mapper.Details) string {
	switch d {
	case mapper.Dev:
		return "; development files"
	case mapper.Prof:
		return "; profiling libraries"
	case mapper.Doc:
		return "; documentation"
	default:
		return ""
	}
}

// dependencies derives Build-Depends and the per-binary Depends from the
// upstream dependency ranges.
func (e *engine) dependencies(id mapper.Identity) error {
	a, up := e.a, e.a.Upstream

	devDeps, err := e.translateAll(mapper.Dev)
	if err != nil {
		return err
	}
	profDeps, err := e.translateAll(mapper.Prof)
	if err != nil {
		return err
	}

	if !a.BuildDepends.IsSet() {
		bd := deb.Deps{
			{deb.Relation{
				Name:    "debhelper-compat",
				Op:      deb.OpExactlyEqual,
				Version: deb.Version{Upstream: fmt.Sprintf("%d", a.CompatLevel.Get())},
			}},
			{deb.Relation{Name: "ghc"}},
		}
		if up != nil && up.Library != nil {
			bd = append(bd, deb.Group{deb.Relation{Name: "ghc-prof"}})
		}
		bd = append(bd, devDeps...)
		a.BuildDepends.Compute(bd)
		e.computed("Build-Depends", bd.String())
	}

	for _, b := range a.Binaries() {
		if b.Depends.IsSet() {
			continue
		}
		switch b.Role {
		case mapper.Dev:
			if len(devDeps) > 0 {
				b.Depends.Compute(devDeps.Clone())
			}
		case mapper.Prof:
			deps := deb.Deps{}
			if dev, err := mapper.MapName(id, mapper.Dev, e.ov); err == nil {
				if a.Binary(dev.String()) != nil {
					deps = append(deps, deb.Group{deb.Relation{Name: dev.String()}})
				}
			}
			deps = append(deps, profDeps...)
			if len(deps) > 0 {
				b.Depends.Compute(deps)
			}
		}
	}
	return nil
}

// translateAll translates every upstream dependency to the given binary
// role, skipping self-references and packages marked missing downstream.
func (e *engine) translateAll(details mapper.Details) (deb.Deps, error) {
	up := e.a.Upstream
	if up == nil {
		return nil, nil
	}
	var out deb.Deps
	for _, dep := range up.Dependencies {
		if dep.Name == up.Name {
			continue
		}
		if e.ov != nil && e.ov.Missing(dep.Name) {
			continue
		}
		deps, err := TranslateDependency(dep, details, e.pol, e.ov)
		if err != nil {
			return nil, err
		}
		out = append(out, deps...)
	}
	return out, nil
}

func (e *engine) license() {
	a, up := e.a, e.a.Upstream

	if !a.License.IsSet() {
		switch {
		case up == nil || up.License == "":
			e.missing("License", "not declared upstream")
		default:
			l, ok := e.pol.License(up.License)
			if !ok {
				e.missing("License", fmt.Sprintf("no canonical encoding for %q", up.License))
				break
			}
			a.License.Compute(l.ShortName)
			e.computed("License", l.ShortName)
		}
	}
	if !a.Copyright.IsSet() && up != nil && up.Copyright != "" {
		a.Copyright.Compute(up.Copyright)
	}
}

// TranslateDependency converts one upstream dependency range to Debian
// relation syntax for the given binary role. Each bound becomes its own
// conjunct: ">=2.0 && <3.0" yields "(>= 2.0), (<< 3.0)". Bound versions
// gain the epoch the policy tables assign them.
func TranslateDependency(dep cabal.Dependency, details mapper.Details, pol *policy.Tables, ov *mapper.Overrides) (deb.Deps, error) {
	// The lowest bound selects the version-split range the name maps
	// through; an exact bound counts as its own lowest bound.
	var resolveAt deb.Version
	for _, r := range dep.Ranges {
		if r.Op == cabal.RangeGE || r.Op == cabal.RangeGT || r.Op == cabal.RangeEQ {
			v, err := deb.ParseVersion(r.Version)
			if err != nil {
				return nil, fmt.Errorf("dependency %s: bound %q: %w", dep.Name, r.Version, err)
			}
			resolveAt = v
			break
		}
	}

	n, err := mapper.MapName(mapper.Identity{Name: dep.Name, Version: resolveAt}, details, ov)
	if err != nil {
		return nil, err
	}
	if len(dep.Ranges) == 0 {
		return deb.Deps{{deb.Relation{Name: n.String()}}}, nil
	}

	var out deb.Deps
	for _, r := range dep.Ranges {
		v, err := deb.ParseVersion(strings.TrimSpace(r.Version))
		if err != nil {
			return nil, fmt.Errorf("dependency %s: bound %q: %w", dep.Name, r.Version, err)
		}
		v.Epoch = pol.Epoch(dep.Name, v)
		out = append(out, deb.Group{deb.Relation{Name: n.String(), Op: boundOp(r.Op), Version: v}})
	}
	return out, nil
}

// boundOp maps an upstream range operator to the Debian relation operator.
func boundOp(op cabal.RangeOp) deb.RelOp {
	switch op {
	case cabal.RangeEQ:
		return deb.OpExactlyEqual
	case cabal.RangeGE:
		return deb.OpLaterEqual
	case cabal.RangeGT:
		return deb.OpStrictlyLater
	case cabal.RangeLE:
		return deb.OpEarlierEqual
	default:
		return deb.OpStrictlyEarlier
	}
}
