package debdir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/cabal"
	"github.com/etnz/hs-debianize/deb"
	"github.com/etnz/hs-debianize/mapper"
	"github.com/etnz/hs-debianize/policy"
)

func declaration(t *testing.T) *atoms.Atoms {
	t.Helper()
	a := atoms.New(&cabal.PackageDescription{Name: "mylib", Version: "1.3.0"})
	a.SourceName.Set("haskell-mylib")
	a.SourceVersion.Set(deb.MustParseVersion("1.3.0-1"))
	a.Maintainer.Set("Jane Doe <jane@example.com>")
	a.Section.Set("haskell")
	a.Priority.Set("optional")
	a.StandardsVersion.Set("4.6.2")
	a.CompatLevel.Set(13)
	a.Homepage.Set("https://example.com/mylib")
	a.License.Set("BSD-3-clause")
	a.Copyright.Set("2026 Jane Doe")
	bd, _ := deb.ParseDeps("debhelper-compat (= 13), ghc")
	a.BuildDepends.Set(bd)
	a.RulesFragments = append(a.RulesFragments, "override_dh_auto_test:\n\t@echo skipped")

	dev, err := a.AddBinary(mapper.Name{Base: "mylib", Details: mapper.Dev})
	if err != nil {
		t.Fatalf("AddBinary failed: %v", err)
	}
	dev.Architecture.Set("any")
	dev.Section.Set("haskell")
	dev.Synopsis.Set("a small example library; development files")
	dev.Description.Set("A longer description.")
	deps, _ := deb.ParseDeps("libhaskell-bar-dev (>= 2.0)")
	dev.Depends.Set(deps)
	dev.InstallFiles = []string{"usr/lib/haskell/mylib"}
	return a
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	a := declaration(t)

	ops, err := Write(dir, a, policy.Default(), nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(ops) == 0 {
		t.Fatal("no file operations reported")
	}
	for _, op := range ops {
		if op.OldDigest != "" {
			t.Errorf("%s reported as pre-existing in a fresh directory", op.Path)
		}
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.SourceName.Get() != "haskell-mylib" {
		t.Errorf("Source = %q", got.SourceName.Get())
	}
	if got.SourceName.Origin() != atoms.User {
		t.Errorf("on-disk values must read back as user-supplied, got %s", got.SourceName.Origin())
	}
	if got.SourceVersion.Get().String() != "1.3.0-1" {
		t.Errorf("Version = %s", got.SourceVersion.Get())
	}
	if got.CompatLevel.Get() != 13 {
		t.Errorf("Compat = %d", got.CompatLevel.Get())
	}
	if got.License.Get() != "BSD-3-clause" {
		t.Errorf("License = %q", got.License.Get())
	}
	if got.Copyright.Get() != "2026 Jane Doe" {
		t.Errorf("Copyright = %q", got.Copyright.Get())
	}

	dev := got.Binary("libhaskell-mylib-dev")
	if dev == nil {
		t.Fatalf("binaries = %v", got.Binaries())
	}
	if dev.Role != mapper.Dev {
		t.Errorf("role = %s", dev.Role)
	}
	if dev.Synopsis.Get() != "a small example library; development files" {
		t.Errorf("synopsis = %q", dev.Synopsis.Get())
	}
	if dev.Description.Get() != "A longer description." {
		t.Errorf("description = %q", dev.Description.Get())
	}
	if !dev.Depends.Get().Mentions("libhaskell-bar-dev") {
		t.Errorf("depends = %q", dev.Depends.Get())
	}
	if len(dev.InstallFiles) != 1 || dev.InstallFiles[0] != "usr/lib/haskell/mylib" {
		t.Errorf("install files = %v", dev.InstallFiles)
	}
	if len(got.RulesFragments) != 1 || !strings.Contains(got.RulesFragments[0], "override_dh_auto_test") {
		t.Errorf("rules fragments = %v", got.RulesFragments)
	}
}

func TestWriteSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	a := declaration(t)

	if _, err := Write(dir, a, policy.Default(), nil); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	ops, err := Write(dir, a, policy.Default(), nil)
	if err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	for _, op := range ops {
		if op.OldDigest != op.NewDigest {
			t.Errorf("%s rewritten on unchanged content", op.Path)
		}
	}
}

func TestWriteChangelogKeepsTimestamp(t *testing.T) {
	dir := t.TempDir()
	a := declaration(t)

	if _, err := Write(dir, a, policy.Default(), nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	before, _ := os.ReadFile(filepath.Join(dir, "changelog"))
	if _, err := Write(dir, a, policy.Default(), nil); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	after, _ := os.ReadFile(filepath.Join(dir, "changelog"))
	if string(before) != string(after) {
		t.Error("changelog rewritten for an unchanged version")
	}

	// A version bump produces a fresh entry.
	b := a.Clone()
	b.SourceVersion.Override(deb.MustParseVersion("1.3.1-1"))
	if _, err := Write(dir, b, policy.Default(), nil); err != nil {
		t.Fatalf("third Write failed: %v", err)
	}
	bumped, _ := os.ReadFile(filepath.Join(dir, "changelog"))
	if !strings.HasPrefix(string(bumped), "haskell-mylib (1.3.1-1) unstable") {
		t.Errorf("changelog = %q", string(bumped))
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	a := declaration(t)
	if _, err := Write(dir, a, policy.Default(), nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	control, err := os.ReadFile(filepath.Join(dir, "control"))
	if err != nil {
		t.Fatalf("control not written: %v", err)
	}
	for _, want := range []string{
		"Source: haskell-mylib",
		"Standards-Version: 4.6.2",
		"Package: libhaskell-mylib-dev",
		"Depends: libhaskell-bar-dev (>= 2.0)",
		"Description: a small example library; development files",
		" A longer description.",
	} {
		if !strings.Contains(string(control), want) {
			t.Errorf("control misses %q:\n%s", want, control)
		}
	}

	copyright, err := os.ReadFile(filepath.Join(dir, "copyright"))
	if err != nil {
		t.Fatalf("copyright not written: %v", err)
	}
	for _, want := range []string{
		"Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/",
		"Upstream-Name: mylib",
		"Copyright: 2026 Jane Doe",
		"License: BSD-3-clause",
		" Redistribution and use",
	} {
		if !strings.Contains(string(copyright), want) {
			t.Errorf("copyright misses %q:\n%s", want, copyright)
		}
	}

	rules, err := os.ReadFile(filepath.Join(dir, "rules"))
	if err != nil {
		t.Fatalf("rules not written: %v", err)
	}
	if !strings.HasPrefix(string(rules), "#!/usr/bin/make -f") {
		t.Errorf("rules = %q", rules)
	}
	if !strings.Contains(string(rules), "override_dh_auto_test:") {
		t.Errorf("rules misses fragment:\n%s", rules)
	}

	format, err := os.ReadFile(filepath.Join(dir, "source", "format"))
	if err != nil {
		t.Fatalf("source/format not written: %v", err)
	}
	if string(format) != "3.0 (quilt)\n" {
		t.Errorf("source/format = %q", format)
	}
}

func TestReadMissingDir(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Read succeeded on a missing directory")
	}
}
