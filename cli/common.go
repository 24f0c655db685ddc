package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/cabal"
	"github.com/etnz/hs-debianize/deb"
	"github.com/etnz/hs-debianize/debdir"
	"github.com/etnz/hs-debianize/mapper"
	"github.com/etnz/hs-debianize/policy"
)

// printer forwards engine events to stderr unless --quiet is set.
func printer(e fmt.Stringer) {
	if quiet {
		return
	}
	fmt.Fprintln(os.Stderr, e)
}

func loadPolicy() (*policy.Tables, error) {
	pol := policy.Default()
	if policyPath != "" {
		if err := pol.Amend(policyPath); err != nil {
			return nil, err
		}
	}
	return pol, nil
}

func loadOverrides() (*mapper.Overrides, error) {
	if overridesPath == "" {
		return nil, nil
	}
	return mapper.LoadOverrides(overridesPath)
}

// loadDeclaration builds the pre-finalization declaration: the manifest,
// merged with whatever the debian/ directory already declares, then the
// --set customizations. Values found on disk win over later computation.
func loadDeclaration() (*atoms.Atoms, error) {
	desc, err := cabal.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	a := atoms.New(desc)

	existing, err := debdir.Read(debianDir)
	switch {
	case err == nil:
		if err := a.Merge(existing); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		// first run, nothing to merge
	default:
		return nil, err
	}

	// A newer upstream release supersedes the version recorded in the
	// changelog: keep the epoch from the packaging history, restart the
	// revision at 1.
	if a.SourceVersion.IsSet() {
		if uv, err := deb.ParseVersion(desc.Version); err == nil {
			cur := a.SourceVersion.Get()
			if deb.Compare(deb.Version{Upstream: cur.Upstream}, uv) < 0 {
				uv.Epoch = cur.Epoch
				uv.Revision = "1"
				a.SourceVersion.Override(uv)
			}
		}
	}

	fns, err := customizers()
	if err != nil {
		return nil, err
	}
	if err := a.Customize(fns...); err != nil {
		return nil, err
	}
	return a, nil
}

// customizers turns the --set flags into declaration transformations.
func customizers() ([]atoms.Customizer, error) {
	var fns []atoms.Customizer
	for _, kv := range setValues {
		field, value, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("--set %q: want field=value", kv)
		}
		fn, err := setField(strings.ToLower(strings.TrimSpace(field)), strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func setField(field, value string) (atoms.Customizer, error) {
	switch field {
	case "source":
		return func(a *atoms.Atoms) error { a.SourceName.Override(value); return nil }, nil
	case "version":
		v, err := deb.ParseVersion(value)
		if err != nil {
			return nil, fmt.Errorf("--set version: %w", err)
		}
		return func(a *atoms.Atoms) error { a.SourceVersion.Override(v); return nil }, nil
	case "maintainer":
		return func(a *atoms.Atoms) error { a.Maintainer.Override(value); return nil }, nil
	case "section":
		return func(a *atoms.Atoms) error { a.Section.Override(value); return nil }, nil
	case "priority":
		return func(a *atoms.Atoms) error { a.Priority.Override(value); return nil }, nil
	case "homepage":
		return func(a *atoms.Atoms) error { a.Homepage.Override(value); return nil }, nil
	case "license":
		return func(a *atoms.Atoms) error { a.License.Override(value); return nil }, nil
	case "copyright":
		return func(a *atoms.Atoms) error { a.Copyright.Override(value); return nil }, nil
	case "standards-version":
		return func(a *atoms.Atoms) error { a.StandardsVersion.Override(value); return nil }, nil
	case "compat":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("--set compat: %w", err)
		}
		return func(a *atoms.Atoms) error { a.CompatLevel.Override(n); return nil }, nil
	case "changelog":
		return func(a *atoms.Atoms) error { a.ChangelogComment.Override(value); return nil }, nil
	default:
		return nil, fmt.Errorf("--set: unknown field %q", field)
	}
}
