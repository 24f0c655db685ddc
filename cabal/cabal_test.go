package cabal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDependency(t *testing.T) {
	tests := []struct {
		input  string
		name   string
		ranges []Range
	}{
		{"bar", "bar", nil},
		{"bar >=2.0", "bar", []Range{{RangeGE, "2.0"}}},
		{"bar >=2.0 && <3.0", "bar", []Range{{RangeGE, "2.0"}, {RangeLT, "3.0"}}},
		{"base ==4.17.2", "base", []Range{{RangeEQ, "4.17.2"}}},
		{"text >1.0 && <=2.1", "text", []Range{{RangeGT, "1.0"}, {RangeLE, "2.1"}}},
	}

	for _, tt := range tests {
		dep, err := ParseDependency(tt.input)
		if err != nil {
			t.Fatalf("ParseDependency(%q) failed: %v", tt.input, err)
		}
		if dep.Name != tt.name {
			t.Errorf("ParseDependency(%q).Name = %q, want %q", tt.input, dep.Name, tt.name)
		}
		if len(dep.Ranges) != len(tt.ranges) {
			t.Fatalf("ParseDependency(%q) ranges = %v, want %v", tt.input, dep.Ranges, tt.ranges)
		}
		for i, r := range tt.ranges {
			if dep.Ranges[i] != r {
				t.Errorf("ParseDependency(%q) range %d = %v, want %v", tt.input, i, dep.Ranges[i], r)
			}
		}
		if got := dep.String(); got != tt.input {
			t.Errorf("String() = %q, want %q", got, tt.input)
		}
	}
}

func TestParseDependencyInvalid(t *testing.T) {
	for _, input := range []string{"", ">=2.0", "bar ~2.0", "bar >= && <3.0"} {
		if _, err := ParseDependency(input); err == nil {
			t.Errorf("ParseDependency(%q) expected error", input)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mylib.yaml")
	content := `name: mylib
version: "1.3.0"
license: BSD-3
synopsis: example library
maintainer: Jane Doe <jane@example.com>
library:
  exposed_modules: [Data.MyLib]
executables:
  - name: mylib-tool
dependencies:
  - bar >=2.0 && <3.0
  - name: base
    ranges:
      - op: ">="
        version: "4.0"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	desc, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if desc.Name != "mylib" || desc.Version != "1.3.0" {
		t.Errorf("identity = %s/%s", desc.Name, desc.Version)
	}
	if desc.Library == nil {
		t.Error("library component missing")
	}
	if len(desc.Executables) != 1 || desc.Executables[0].Name != "mylib-tool" {
		t.Errorf("executables = %v", desc.Executables)
	}
	if len(desc.Dependencies) != 2 {
		t.Fatalf("dependencies = %v", desc.Dependencies)
	}
	if desc.Dependencies[0].Name != "bar" || len(desc.Dependencies[0].Ranges) != 2 {
		t.Errorf("compact dependency = %v", desc.Dependencies[0])
	}
	if desc.Dependencies[1].Name != "base" || desc.Dependencies[1].Ranges[0].Op != RangeGE {
		t.Errorf("structured dependency = %v", desc.Dependencies[1])
	}
}

func TestLoadRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("version: \"1.0\"\n"), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for manifest without name")
	}
}
