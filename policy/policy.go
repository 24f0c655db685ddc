// Package policy holds the static packaging-policy tables: canonical
// license encodings, default priorities and sections, the standards
// version, the debhelper compatibility level and the epoch boundaries of
// known packages. The tables are versioned data, not code: Default builds
// the built-in revision and Amend layers overrides from a YAML file on
// top, later layers winning per key.
package policy

import (
	"bytes"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/etnz/hs-debianize/deb"
)

// License is the canonical packaging-system encoding of an upstream
// license identifier.
//
// Reference: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/
type License struct {
	// ShortName is the machine-readable license short name used in
	// debian/copyright (e.g. "BSD-3-clause", "Expat").
	ShortName string `yaml:"short_name"`

	// Text is the boilerplate license paragraph, or a pointer to the
	// common-licenses file for licenses shipped with base-files.
	Text string `yaml:"text"`
}

// EpochRule records the epoch a package's debian versions must carry and
// the upstream version boundary below which it applies: an upstream
// version at or below the boundary would sort incorrectly against the
// packaging history without the epoch prefix.
type EpochRule struct {
	Epoch    int    `yaml:"epoch"`
	Boundary string `yaml:"boundary"`
}

// Tables is the process-lifetime, read-only policy data. Construct it
// once with Default (optionally Amend) and pass it explicitly into the
// finalization engine; it is never mutated afterwards.
type Tables struct {
	// Licenses maps normalized upstream license identifiers to their
	// debian/copyright encodings.
	Licenses map[string]License `yaml:"licenses"`

	// Priority is the default package priority.
	Priority string `yaml:"priority"`

	// SourceSection, DocSection and UtilsSection are the archive
	// sections assigned to library, documentation and executable
	// packages respectively.
	SourceSection string `yaml:"source_section"`
	DocSection    string `yaml:"doc_section"`
	UtilsSection  string `yaml:"utils_section"`

	// StandardsVersion is the debian-policy version the generated
	// packaging declares conformance with.
	StandardsVersion string `yaml:"standards_version"`

	// CompatLevel is the debhelper compatibility level.
	CompatLevel int `yaml:"compat_level"`

	// ArchAny and ArchAll are the architecture values for compiled and
	// architecture-independent packages.
	ArchAny string `yaml:"arch_any"`
	ArchAll string `yaml:"arch_all"`

	// Epochs maps upstream package names to their epoch rules.
	Epochs map[string]EpochRule `yaml:"epochs"`
}

// Default returns the built-in revision of the policy tables.
func Default() *Tables {
	return &Tables{
		Licenses: map[string]License{
			"bsd2":         {ShortName: "BSD-2-clause", Text: bsd2Text},
			"bsd3":         {ShortName: "BSD-3-clause", Text: bsd3Text},
			"mit":          {ShortName: "Expat", Text: mitText},
			"isc":          {ShortName: "ISC", Text: iscText},
			"gpl2":         {ShortName: "GPL-2", Text: commonLicense("GPL-2")},
			"gpl3":         {ShortName: "GPL-3", Text: commonLicense("GPL-3")},
			"lgpl21":       {ShortName: "LGPL-2.1", Text: commonLicense("LGPL-2.1")},
			"lgpl3":        {ShortName: "LGPL-3", Text: commonLicense("LGPL-3")},
			"apache2":      {ShortName: "Apache-2.0", Text: commonLicense("Apache-2.0")},
			"apache20":     {ShortName: "Apache-2.0", Text: commonLicense("Apache-2.0")},
			"mpl2":         {ShortName: "MPL-2.0", Text: "See https://www.mozilla.org/MPL/2.0/"},
			"mpl20":        {ShortName: "MPL-2.0", Text: "See https://www.mozilla.org/MPL/2.0/"},
			"gpl20":        {ShortName: "GPL-2", Text: commonLicense("GPL-2")},
			"gpl30":        {ShortName: "GPL-3", Text: commonLicense("GPL-3")},
			"publicdomain": {ShortName: "public-domain", Text: "This work is in the public domain."},
		},
		Priority:         "optional",
		SourceSection:    "haskell",
		DocSection:       "doc",
		UtilsSection:     "misc",
		StandardsVersion: "4.6.2",
		CompatLevel:      13,
		ArchAny:          "any",
		ArchAll:          "all",
		Epochs:           map[string]EpochRule{},
	}
}

// Amend merges a YAML amendment file over the tables. Scalar fields are
// replaced when set, map entries are merged per key with the amendment
// winning.
func (t *Tables) Amend(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading policy amendment: %w", err)
	}

	var amend Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&amend); err != nil {
		return fmt.Errorf("parsing policy amendment %s: %w", path, err)
	}

	if amend.Priority != "" {
		t.Priority = amend.Priority
	}
	if amend.SourceSection != "" {
		t.SourceSection = amend.SourceSection
	}
	if amend.DocSection != "" {
		t.DocSection = amend.DocSection
	}
	if amend.UtilsSection != "" {
		t.UtilsSection = amend.UtilsSection
	}
	if amend.StandardsVersion != "" {
		t.StandardsVersion = amend.StandardsVersion
	}
	if amend.CompatLevel != 0 {
		t.CompatLevel = amend.CompatLevel
	}
	if amend.ArchAny != "" {
		t.ArchAny = amend.ArchAny
	}
	if amend.ArchAll != "" {
		t.ArchAll = amend.ArchAll
	}
	for k, v := range amend.Licenses {
		t.Licenses[normalizeLicense(k)] = v
	}
	for k, v := range amend.Epochs {
		if _, err := deb.ParseVersion(v.Boundary); err != nil {
			return fmt.Errorf("epoch boundary for %s: %w", k, err)
		}
		t.Epochs[k] = v
	}
	return nil
}

// License looks up the canonical encoding of an upstream license
// identifier. Identifiers are matched case-insensitively and common
// spelling variants ("BSD-3-Clause", "BSD3", "BSD-3") are folded.
func (t *Tables) License(id string) (License, bool) {
	l, ok := t.Licenses[normalizeLicense(id)]
	return l, ok
}

// Epoch returns the epoch the debian version of the named package must
// carry for the given upstream version, or 0 when none applies.
func (t *Tables) Epoch(name string, v deb.Version) int {
	rule, ok := t.Epochs[name]
	if !ok {
		return 0
	}
	boundary, err := deb.ParseVersion(rule.Boundary)
	if err != nil {
		return 0
	}
	if deb.Compare(v, boundary) <= 0 {
		return rule.Epoch
	}
	return 0
}

// normalizeLicense folds an upstream license identifier to its table key:
// lowercase with separators and the "-clause"/"-only" noise removed.
func normalizeLicense(id string) string {
	var b bytes.Buffer
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c == '-' || c == '.' || c == ' ' || c == '_':
			// separators are insignificant
		default:
			b.WriteByte(c)
		}
	}
	s := b.String()
	for _, suffix := range []string{"clause", "only", "orlater"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			s = s[:len(s)-len(suffix)]
		}
	}
	return s
}

// commonLicense returns the copyright pointer paragraph for licenses
// shipped under /usr/share/common-licenses.
func commonLicense(name string) string {
	return fmt.Sprintf("On Debian systems, the complete text of the %s license\ncan be found in \"/usr/share/common-licenses/%s\".", name, name)
}

const bsd2Text = `Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the conditions of the
BSD 2-clause license are met.`

const bsd3Text = `Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the conditions of the
BSD 3-clause license are met, including the prohibition on using the
names of the copyright holders for endorsement without permission.`

const mitText = `Permission is hereby granted, free of charge, to any person obtaining
a copy of this software and associated documentation files (the
"Software"), to deal in the Software without restriction.`

const iscText = `Permission to use, copy, modify, and/or distribute this software for
any purpose with or without fee is hereby granted.`
