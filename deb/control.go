package deb

import (
	"fmt"
	"strings"
)

// SourceStanza maps to the source paragraph of a debian/control file.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#source-package-control-files-debian-control
type SourceStanza struct {
	Source           string
	Maintainer       string
	Uploaders        []string
	Section          string
	Priority         string
	BuildDepends     Deps
	StandardsVersion string
	Homepage         string

	// ExtraFields holds any non-standard fields of the paragraph.
	ExtraFields map[string]string
}

// BinaryStanza maps to a binary package paragraph of a debian/control file.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#binary-package-control-files-debian-control
type BinaryStanza struct {
	Package      string
	Architecture string
	Section      string
	Depends      Deps
	Recommends   Deps
	Suggests     Deps

	// Description carries the synopsis on the first line and the
	// extended description on the following lines.
	Description string

	// ExtraFields holds any non-standard fields of the paragraph.
	ExtraFields map[string]string
}

// stanzaField is one key/value of a parsed control paragraph, with folded
// continuation lines already joined.
type stanzaField struct {
	Key   string
	Value string
}

// parseStanza parses one control paragraph into its ordered fields.
// Continuation lines (starting with space or tab) are folded into the
// preceding field, preserving line breaks.
func parseStanza(content string) []stanzaField {
	var fields []stanzaField
	var currentKey string
	var currentValue strings.Builder

	flush := func() {
		if currentKey != "" {
			fields = append(fields, stanzaField{Key: currentKey, Value: strings.TrimSpace(currentValue.String())})
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			currentValue.WriteString("\n" + line)
		} else if strings.Contains(line, ":") {
			flush()
			parts := strings.SplitN(line, ":", 2)
			currentKey = parts[0]
			currentValue.Reset()
			currentValue.WriteString(strings.TrimSpace(parts[1]))
		}
	}
	flush()
	return fields
}

// SplitStanzas splits a control file into its blank-line separated
// paragraphs, dropping empty ones.
func SplitStanzas(content string) []string {
	var out []string
	for _, s := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseSourceStanza parses the source paragraph of a control file.
func ParseSourceStanza(content string) (*SourceStanza, error) {
	s := &SourceStanza{ExtraFields: make(map[string]string)}
	for _, f := range parseStanza(content) {
		switch ControlField(f.Key) {
		case FieldSource:
			s.Source = f.Value
		case FieldMaintainer:
			s.Maintainer = f.Value
		case FieldUploaders:
			s.Uploaders = splitList(f.Value)
		case FieldSection:
			s.Section = f.Value
		case FieldPriority:
			s.Priority = f.Value
		case FieldBuildDepends:
			deps, err := ParseDeps(foldValue(f.Value))
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", FieldBuildDepends, err)
			}
			s.BuildDepends = deps
		case FieldStandardsVersion:
			s.StandardsVersion = f.Value
		case FieldHomepage:
			s.Homepage = f.Value
		default:
			s.ExtraFields[f.Key] = f.Value
		}
	}
	if s.Source == "" {
		return nil, fmt.Errorf("stanza has no %s field", FieldSource)
	}
	return s, nil
}

// ParseBinaryStanza parses a binary package paragraph of a control file.
func ParseBinaryStanza(content string) (*BinaryStanza, error) {
	b := &BinaryStanza{ExtraFields: make(map[string]string)}
	for _, f := range parseStanza(content) {
		switch ControlField(f.Key) {
		case FieldPackage:
			b.Package = f.Value
		case FieldArchitecture:
			b.Architecture = f.Value
		case FieldSection:
			b.Section = f.Value
		case FieldDepends, FieldRecommends, FieldSuggests:
			deps, err := ParseDeps(foldValue(f.Value))
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", f.Key, err)
			}
			switch ControlField(f.Key) {
			case FieldDepends:
				b.Depends = deps
			case FieldRecommends:
				b.Recommends = deps
			case FieldSuggests:
				b.Suggests = deps
			}
		case FieldDescription:
			b.Description = unfoldDescription(f.Value)
		default:
			b.ExtraFields[f.Key] = f.Value
		}
	}
	if b.Package == "" {
		return nil, fmt.Errorf("stanza has no %s field", FieldPackage)
	}
	return b, nil
}

// Render produces the control-file text of the source paragraph.
func (s *SourceStanza) Render() string {
	var b strings.Builder
	writeField(&b, FieldSource, s.Source)
	writeField(&b, FieldMaintainer, s.Maintainer)
	writeField(&b, FieldUploaders, strings.Join(s.Uploaders, ", "))
	writeField(&b, FieldSection, s.Section)
	writeField(&b, FieldPriority, s.Priority)
	writeField(&b, FieldBuildDepends, s.BuildDepends.String())
	writeField(&b, FieldStandardsVersion, s.StandardsVersion)
	writeField(&b, FieldHomepage, s.Homepage)
	for k, v := range s.ExtraFields {
		writeField(&b, ControlField(k), v)
	}
	return b.String()
}

// Render produces the control-file text of the binary paragraph,
// applying the description indentation rules.
func (b *BinaryStanza) Render() string {
	var w strings.Builder
	writeField(&w, FieldPackage, b.Package)
	writeField(&w, FieldArchitecture, b.Architecture)
	writeField(&w, FieldSection, b.Section)
	writeField(&w, FieldDepends, b.Depends.String())
	writeField(&w, FieldRecommends, b.Recommends.String())
	writeField(&w, FieldSuggests, b.Suggests.String())
	for k, v := range b.ExtraFields {
		writeField(&w, ControlField(k), v)
	}
	if b.Description != "" {
		lines := strings.Split(b.Description, "\n")
		writeField(&w, FieldDescription, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				fmt.Fprintf(&w, " .\n")
			} else if strings.HasPrefix(line, " ") {
				fmt.Fprintf(&w, "%s\n", line)
			} else {
				fmt.Fprintf(&w, " %s\n", line)
			}
		}
	}
	return w.String()
}

// writeField writes "Key: value" when the value is non-empty.
func writeField(b *strings.Builder, field ControlField, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", field, value)
	}
}

// foldValue joins a folded multi-line field value back into one line.
func foldValue(v string) string {
	lines := strings.Split(v, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}

// unfoldDescription strips the one-space indentation of extended
// description lines and restores " ." blank separators.
func unfoldDescription(v string) string {
	lines := strings.Split(v, "\n")
	for i, l := range lines {
		if i == 0 {
			continue
		}
		l = strings.TrimPrefix(strings.TrimPrefix(l, " "), "\t")
		if strings.TrimSpace(l) == "." {
			l = ""
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}

// splitList splits a comma-separated string into a slice of strings,
// trimming whitespace from each element. It returns nil for empty input.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var res []string
	for _, p := range parts {
		res = append(res, strings.TrimSpace(p))
	}
	return res
}
