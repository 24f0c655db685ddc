package validate

import (
	"testing"

	"github.com/etnz/hs-debianize/deb"
)

func TestCompareSelfIsEmpty(t *testing.T) {
	a := declaration(t)
	if r := Compare(a, a); !r.Empty() {
		t.Errorf("Compare(a, a) = %v", r.Changes)
	}
	if r := Compare(a, a.Clone()); !r.Empty() {
		t.Errorf("Compare(a, clone) = %v", r.Changes)
	}
}

func TestCompareAgainstNil(t *testing.T) {
	a := declaration(t)
	r := Compare(a, nil)
	if r.Empty() {
		t.Fatal("diff against nil is empty")
	}
	for _, c := range r.Changes {
		if c.New != "" {
			t.Errorf("nil declaration contributed a value: %v", c)
		}
	}
}

func TestCompareFieldChange(t *testing.T) {
	a := declaration(t)
	b := a.Clone()
	b.Maintainer.Override("Someone Else <else@example.com>")

	r := Compare(a, b)
	if len(r.Changes) != 1 {
		t.Fatalf("changes = %v", r.Changes)
	}
	c := r.Changes[0]
	if c.Field != "Maintainer" || c.Old != "Jane Doe <jane@example.com>" {
		t.Errorf("change = %+v", c)
	}
}

func TestCompareDepsOrderInsensitive(t *testing.T) {
	a := declaration(t)
	b := a.Clone()

	reordered, _ := deb.ParseDeps("${misc:Depends}, libhaskell-bar-dev (>= 2.0)")
	b.Binary("libhaskell-mylib-dev").Depends.Override(reordered)

	if r := Compare(a, b); !r.Empty() {
		t.Errorf("reordered dependencies reported as change: %v", r.Changes)
	}
}

func TestCompareBinaryAddedRemoved(t *testing.T) {
	a := declaration(t)
	b := declaration(t)
	b.Binaries()[0].Name = "something-else"

	r := Compare(a, b)
	var removed, added bool
	for _, c := range r.Changes {
		if c.Field == "Package" && c.Old == "libhaskell-mylib-dev" && c.New == "" {
			removed = true
		}
		if c.Field == "Package" && c.New == "something-else" && c.Old == "" {
			added = true
		}
	}
	if !removed || !added {
		t.Errorf("changes = %v", r.Changes)
	}
}

func TestCompareSymmetry(t *testing.T) {
	a := declaration(t)
	b := a.Clone()
	b.Section.Set("devel")
	b.Binary("libhaskell-mylib-dev").Architecture.Override("all")

	fwd := Compare(a, b)
	rev := Compare(b, a)
	if len(fwd.Changes) != len(rev.Changes) {
		t.Fatalf("asymmetric diff: %v vs %v", fwd.Changes, rev.Changes)
	}
	for i, c := range fwd.Changes {
		r := rev.Changes[i]
		if c.Field != r.Field || c.Old != r.New || c.New != r.Old {
			t.Errorf("change %d not mirrored: %+v vs %+v", i, c, r)
		}
	}
}
