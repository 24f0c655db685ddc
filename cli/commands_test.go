package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/hs-debianize/atoms"
)

const testManifest = `name: mylib
version: 1.3.0
license: BSD-3-Clause
synopsis: a small example library
maintainer: Jane Doe <jane@example.com>
library:
  exposed_modules: [Data.MyLib]
dependencies:
  - bar >=2.0 && <3.0
`

// run executes the root command with a fresh argument list.
func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeManifest(t *testing.T) (manifest, debian string) {
	t.Helper()
	dir := t.TempDir()
	manifest = filepath.Join(dir, "package.yaml")
	if err := os.WriteFile(manifest, []byte(testManifest), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return manifest, filepath.Join(dir, "debian")
}

func TestGenerateEndToEnd(t *testing.T) {
	manifest, debian := writeManifest(t)

	if err := run(t, "generate", "-q", "-m", manifest, "-d", debian); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	control, err := os.ReadFile(filepath.Join(debian, "control"))
	if err != nil {
		t.Fatalf("control not written: %v", err)
	}
	for _, want := range []string{
		"Source: haskell-mylib",
		"Package: libhaskell-mylib-dev",
		"Package: libhaskell-mylib-prof",
		"Package: libhaskell-mylib-doc",
		"libhaskell-bar-dev (>= 2.0)",
	} {
		if !strings.Contains(string(control), want) {
			t.Errorf("control misses %q:\n%s", want, control)
		}
	}

	changelog, err := os.ReadFile(filepath.Join(debian, "changelog"))
	if err != nil {
		t.Fatalf("changelog not written: %v", err)
	}
	if !strings.HasPrefix(string(changelog), "haskell-mylib (1.3.0-1) unstable") {
		t.Errorf("changelog = %q", changelog)
	}
}

func TestGenerateThenDiffIsClean(t *testing.T) {
	manifest, debian := writeManifest(t)

	if err := run(t, "generate", "-q", "-m", manifest, "-d", debian); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := run(t, "diff", "-q", "-m", manifest, "-d", debian); err != nil {
		t.Errorf("diff reported staleness right after generate: %v", err)
	}
}

func TestDiffDetectsStaleness(t *testing.T) {
	manifest, debian := writeManifest(t)

	if err := run(t, "generate", "-q", "-m", manifest, "-d", debian); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	bumped := strings.Replace(testManifest, "version: 1.3.0", "version: 1.4.0", 1)
	if err := os.WriteFile(manifest, []byte(bumped), 0644); err != nil {
		t.Fatalf("rewriting manifest: %v", err)
	}

	if err := run(t, "diff", "-q", "-m", manifest, "-d", debian); err == nil {
		t.Error("diff missed the pending version bump")
	}
}

func TestGenerateDryRun(t *testing.T) {
	manifest, debian := writeManifest(t)

	if err := run(t, "generate", "-q", "--dry-run", "-m", manifest, "-d", debian); err != nil {
		t.Fatalf("dry-run failed: %v", err)
	}
	if _, err := os.Stat(debian); !os.IsNotExist(err) {
		t.Error("dry-run touched the debian directory")
	}
	// Flag state persists across invocations in this process.
	if err := run(t, "generate", "-q", "--dry-run=false", "-m", manifest, "-d", debian); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
}

func TestSetCustomizer(t *testing.T) {
	setValues = []string{"maintainer=Someone Else <else@example.com>", "compat=14"}
	defer func() { setValues = nil }()

	fns, err := customizers()
	if err != nil {
		t.Fatalf("customizers failed: %v", err)
	}
	a := atoms.New(nil)
	if err := a.Customize(fns...); err != nil {
		t.Fatalf("Customize failed: %v", err)
	}
	if got := a.Maintainer.Get(); got != "Someone Else <else@example.com>" {
		t.Errorf("Maintainer = %q", got)
	}
	if got := a.CompatLevel.Get(); got != 14 {
		t.Errorf("CompatLevel = %d", got)
	}
}

func TestSetCustomizerRejectsUnknownField(t *testing.T) {
	setValues = []string{"no-such-field=value"}
	defer func() { setValues = nil }()

	if _, err := customizers(); err == nil {
		t.Fatal("unknown --set field accepted")
	}
}

func TestEnvConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "debianize.yaml")
	content := "manifest: /tmp/elsewhere/package.yaml\ndebian: /tmp/elsewhere/debian\n"
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("DEBIANIZE", cfg)

	oldManifest, oldDebian := manifestPath, debianDir
	defer func() { manifestPath, debianDir = oldManifest, oldDebian }()
	// Earlier tests passed -m explicitly; clear the flag state so the
	// config file applies.
	rootCmd.PersistentFlags().Lookup("manifest").Changed = false
	rootCmd.PersistentFlags().Lookup("debian").Changed = false
	if err := applyEnvConfig(rootCmd, nil); err != nil {
		t.Fatalf("applyEnvConfig failed: %v", err)
	}
	if manifestPath != "/tmp/elsewhere/package.yaml" {
		t.Errorf("manifest = %q", manifestPath)
	}
}
