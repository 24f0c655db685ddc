package deb

import (
	"strings"
	"testing"
)

func TestParseSourceStanza(t *testing.T) {
	content := `Source: haskell-mylib
Maintainer: Jane Doe <jane@example.com>
Uploaders: A <a@example.com>, B <b@example.com>
Section: haskell
Priority: optional
Build-Depends: debhelper-compat (= 13),
 libhaskell-base-dev (>= 4.0)
Standards-Version: 4.6.2
Homepage: https://example.com/mylib
X-Custom: value
`
	s, err := ParseSourceStanza(content)
	if err != nil {
		t.Fatalf("ParseSourceStanza failed: %v", err)
	}
	if s.Source != "haskell-mylib" {
		t.Errorf("Source = %q", s.Source)
	}
	if len(s.Uploaders) != 2 {
		t.Errorf("Uploaders = %v", s.Uploaders)
	}
	if len(s.BuildDepends) != 2 {
		t.Fatalf("BuildDepends = %v", s.BuildDepends)
	}
	if got := s.BuildDepends[1].String(); got != "libhaskell-base-dev (>= 4.0)" {
		t.Errorf("folded build-dep = %q", got)
	}
	if s.ExtraFields["X-Custom"] != "value" {
		t.Errorf("extra field missing: %v", s.ExtraFields)
	}
}

func TestParseBinaryStanzaDescription(t *testing.T) {
	content := `Package: libhaskell-mylib-doc
Architecture: all
Section: doc
Depends: ${misc:Depends}
Description: example library; documentation
 This package provides the documentation.
 .
 Second paragraph.
`
	b, err := ParseBinaryStanza(content)
	if err != nil {
		t.Fatalf("ParseBinaryStanza failed: %v", err)
	}
	if b.Package != "libhaskell-mylib-doc" {
		t.Errorf("Package = %q", b.Package)
	}
	want := "example library; documentation\nThis package provides the documentation.\n\nSecond paragraph."
	if b.Description != want {
		t.Errorf("Description = %q, want %q", b.Description, want)
	}
}

func TestBinaryStanzaRenderRoundTrip(t *testing.T) {
	in := &BinaryStanza{
		Package:      "libhaskell-mylib-dev",
		Architecture: "any",
		Section:      "haskell",
		Depends:      Deps{{Relation{Name: "libhaskell-base-dev", Op: OpLaterEqual, Version: MustParseVersion("4.0")}}},
		Description:  "example library; development files\nExtended text.\n\nMore text.",
	}
	out, err := ParseBinaryStanza(in.Render())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if out.Package != in.Package || out.Architecture != in.Architecture || out.Section != in.Section {
		t.Errorf("header mismatch: %+v", out)
	}
	if !EqualSets(out.Depends, in.Depends) {
		t.Errorf("Depends = %v", out.Depends)
	}
	if out.Description != in.Description {
		t.Errorf("Description = %q, want %q", out.Description, in.Description)
	}
}

func TestSplitStanzas(t *testing.T) {
	content := "Source: a\n\nPackage: b\n\n\nPackage: c\n"
	got := SplitStanzas(content)
	if len(got) != 3 {
		t.Fatalf("expected 3 stanzas, got %d", len(got))
	}
	if !strings.HasPrefix(got[0], "Source: a") {
		t.Errorf("first stanza = %q", got[0])
	}
}

func TestSourceStanzaRenderSkipsEmpty(t *testing.T) {
	s := &SourceStanza{Source: "haskell-mylib", Maintainer: "M <m@example.com>"}
	out := s.Render()
	if strings.Contains(out, "Homepage") || strings.Contains(out, "Build-Depends") {
		t.Errorf("empty fields rendered: %q", out)
	}
}
