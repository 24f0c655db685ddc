package mapper

import (
	"bytes"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/etnz/hs-debianize/deb"
)

// Overrides carries the caller-supplied mapping amendments applied at
// finalization time: exact-name overrides, per-package version-split
// tables and the "known missing" dependency list. The zero value and nil
// are both valid empty tables.
type Overrides struct {
	// Names maps an upstream name to an explicit downstream base name.
	// An entry here dominates every other resolution mechanism.
	Names map[string]string

	// MissingDeps lists upstream dependency names that are provided by
	// the build environment and must not be inferred as packaging
	// dependencies.
	MissingDeps map[string]bool

	splits map[string]*Splits
}

// splitFor returns the version-split table for an upstream name, or nil.
func (o *Overrides) splitFor(name string) *Splits {
	if o == nil {
		return nil
	}
	return o.splits[name]
}

// Missing reports whether an upstream dependency is declared
// environment-provided.
func (o *Overrides) Missing(name string) bool {
	return o != nil && o.MissingDeps[name]
}

// AddSplit installs (or replaces) the version-split table of an upstream
// name after validating its structural invariant.
func (o *Overrides) AddSplit(name string, s Splits) error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("split table for %s: %w", name, err)
	}
	if o.splits == nil {
		o.splits = make(map[string]*Splits)
	}
	o.splits[name] = &s
	return nil
}

// overridesDTO is the YAML shape of an overrides file.
type overridesDTO struct {
	Names       map[string]string `yaml:"names"`
	MissingDeps []string          `yaml:"missing_deps"`
	Splits      map[string]struct {
		Default string `yaml:"default"`
		Rules   []struct {
			Before string `yaml:"before"`
			Base   string `yaml:"base"`
		} `yaml:"rules"`
	} `yaml:"splits"`
}

// LoadOverrides reads an overrides YAML file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}

	var dto overridesDTO
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", path, err)
	}

	ov := &Overrides{
		Names:       dto.Names,
		MissingDeps: make(map[string]bool, len(dto.MissingDeps)),
	}
	for _, m := range dto.MissingDeps {
		ov.MissingDeps[m] = true
	}
	for name, s := range dto.Splits {
		splits := Splits{Default: s.Default}
		for _, r := range s.Rules {
			before, err := deb.ParseVersion(r.Before)
			if err != nil {
				return nil, fmt.Errorf("split boundary for %s: %w", name, err)
			}
			splits.Rules = append(splits.Rules, SplitRule{Before: before, Base: r.Base})
		}
		if err := ov.AddSplit(name, splits); err != nil {
			return nil, err
		}
	}
	return ov, nil
}
