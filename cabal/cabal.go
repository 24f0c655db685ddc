// Package cabal models the upstream package manifest: the package's own
// self-declared name, version, license, components and dependency ranges.
// The description is read once at pipeline start and never mutated by the
// engine; every downstream field is derived from it, not written back.
package cabal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// RangeOp is a version bound operator in an upstream dependency range.
type RangeOp string

const (
	RangeEQ RangeOp = "=="
	RangeGE RangeOp = ">="
	RangeGT RangeOp = ">"
	RangeLE RangeOp = "<="
	RangeLT RangeOp = "<"
)

// Range is one bound of an upstream dependency constraint. A dependency
// carries a conjunction of bounds.
type Range struct {
	Op      RangeOp `yaml:"op" json:"op"`
	Version string  `yaml:"version" json:"version"`
}

// Dependency is an upstream package dependency with its version bounds.
// In the manifest it may be written either structured or as a single
// string such as "bar >=2.0 && <3.0".
type Dependency struct {
	Name   string  `yaml:"name" json:"name"`
	Ranges []Range `yaml:"ranges" json:"ranges"`
}

// Executable declares an executable component of the upstream package.
type Executable struct {
	Name string `yaml:"name" json:"name"`
}

// Library declares the library component of the upstream package.
type Library struct {
	// ExposedModules is informational only; its presence does not affect
	// finalization beyond marking the package as a library.
	ExposedModules []string `yaml:"exposed_modules" json:"exposed_modules"`
}

// PackageDescription is the upstream manifest: declared identity,
// license, components and dependency ranges. Read-only after Load.
type PackageDescription struct {
	Name         string       `yaml:"name" json:"name"`
	Version      string       `yaml:"version" json:"version"`
	License      string       `yaml:"license" json:"license"`
	Synopsis     string       `yaml:"synopsis" json:"synopsis"`
	Description  string       `yaml:"description" json:"description"`
	Homepage     string       `yaml:"homepage" json:"homepage"`
	Maintainer   string       `yaml:"maintainer" json:"maintainer"`
	Copyright    string       `yaml:"copyright" json:"copyright"`
	Library      *Library     `yaml:"library" json:"library"`
	Executables  []Executable `yaml:"executables" json:"executables"`
	Dependencies []Dependency `yaml:"dependencies" json:"dependencies"`
}

// Load reads and parses a package manifest. YAML and JSON are supported,
// selected by file extension, both with strict field checking.
func Load(path string) (*PackageDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var desc PackageDescription
	if err := unmarshal(path, data, &desc); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("manifest %s declares no package name", path)
	}
	if desc.Version == "" {
		return nil, fmt.Errorf("manifest %s declares no version", path)
	}
	return &desc, nil
}

// unmarshal parses JSON or YAML based on file extension.
func unmarshal(path string, data []byte, v interface{}) error {
	ext := strings.ToLower(filepath.Ext(path))
	r := bytes.NewReader(data)
	if ext == ".yaml" || ext == ".yml" {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		return dec.Decode(v)
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// UnmarshalYAML accepts either the structured mapping form or the compact
// string form "name >=lo && <hi".
func (d *Dependency) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := ParseDependency(value.Value)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	type plain Dependency
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = Dependency(p)
	return nil
}

// ParseDependency parses the compact dependency syntax: a package name
// followed by zero or more "&&"-joined bounds, e.g. "bar >=2.0 && <3.0".
func ParseDependency(s string) (Dependency, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dependency{}, fmt.Errorf("empty dependency")
	}
	name := s
	rest := ""
	if i := strings.IndexAny(s, " <>="); i != -1 {
		name = s[:i]
		rest = strings.TrimSpace(s[i:])
	}
	if name == "" {
		return Dependency{}, fmt.Errorf("dependency %q has no package name", s)
	}

	dep := Dependency{Name: name}
	if rest == "" {
		return dep, nil
	}
	for _, bound := range strings.Split(rest, "&&") {
		bound = strings.TrimSpace(bound)
		if bound == "" {
			return Dependency{}, fmt.Errorf("dependency %q has an empty bound", s)
		}
		var op RangeOp
		for _, cand := range []RangeOp{RangeEQ, RangeGE, RangeLE, RangeGT, RangeLT} {
			if strings.HasPrefix(bound, string(cand)) {
				op = cand
				break
			}
		}
		if op == "" {
			return Dependency{}, fmt.Errorf("dependency %q has an invalid bound %q", s, bound)
		}
		ver := strings.TrimSpace(strings.TrimPrefix(bound, string(op)))
		if ver == "" {
			return Dependency{}, fmt.Errorf("dependency %q has a bound without a version", s)
		}
		dep.Ranges = append(dep.Ranges, Range{Op: op, Version: ver})
	}
	return dep, nil
}

// String renders the dependency in the compact syntax.
func (d Dependency) String() string {
	if len(d.Ranges) == 0 {
		return d.Name
	}
	bounds := make([]string, len(d.Ranges))
	for i, r := range d.Ranges {
		bounds[i] = string(r.Op) + r.Version
	}
	return d.Name + " " + strings.Join(bounds, " && ")
}
