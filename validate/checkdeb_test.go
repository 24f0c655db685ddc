package validate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
	"time"

	"github.com/blakesmith/ar"
)

// mockDeb assembles a minimal .deb archive around the given control
// file text.
func mockDeb(t *testing.T, control string) []byte {
	t.Helper()
	var buf bytes.Buffer
	arW := ar.NewWriter(&buf)
	if err := arW.WriteGlobalHeader(); err != nil {
		t.Fatalf("WriteGlobalHeader failed: %v", err)
	}

	write := func(name string, body []byte) {
		header := &ar.Header{
			Name:    name,
			Size:    int64(len(body)),
			Mode:    0644,
			ModTime: time.Now(),
		}
		if err := arW.WriteHeader(header); err != nil {
			t.Fatalf("ar header for %s failed: %v", name, err)
		}
		if _, err := arW.Write(body); err != nil {
			t.Fatalf("ar body for %s failed: %v", name, err)
		}
	}

	write("debian-binary", []byte("2.0\n"))

	var cBuf bytes.Buffer
	gw := gzip.NewWriter(&cBuf)
	tw := tar.NewWriter(gw)
	hdr := &tar.Header{Name: "control", Mode: 0644, Size: int64(len(control))}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatalf("tar header failed: %v", err)
	}
	if _, err := tw.Write([]byte(control)); err != nil {
		t.Fatalf("tar body failed: %v", err)
	}
	tw.Close()
	gw.Close()
	write("control.tar.gz", cBuf.Bytes())

	return buf.Bytes()
}

func TestCheckDebClean(t *testing.T) {
	a := declaration(t)
	control := "Package: libhaskell-mylib-dev\n" +
		"Version: 1.3.0-1\n" +
		"Architecture: amd64\n" +
		"Depends: libhaskell-bar-dev (>= 2.0), libc6\n" +
		"Description: built package\n"

	vs, err := CheckDeb(bytes.NewReader(mockDeb(t, control)), a)
	if err != nil {
		t.Fatalf("CheckDeb failed: %v", err)
	}
	if len(vs) != 0 {
		t.Errorf("violations = %v", vs)
	}
}

func TestCheckDebMismatches(t *testing.T) {
	a := declaration(t)
	control := "Package: libhaskell-mylib-dev\n" +
		"Version: 1.2.9-1\n" +
		"Architecture: amd64\n" +
		"Depends: libc6\n" +
		"Description: built package\n"

	vs, err := CheckDeb(bytes.NewReader(mockDeb(t, control)), a)
	if err != nil {
		t.Fatalf("CheckDeb failed: %v", err)
	}

	fields := make(map[string]bool)
	for _, v := range vs {
		fields[v.Field] = true
	}
	if !fields["Version"] {
		t.Errorf("version mismatch not flagged: %v", vs)
	}
	if !fields["Depends"] {
		t.Errorf("missing dependency not flagged: %v", vs)
	}
}

func TestCheckDebUndeclaredPackage(t *testing.T) {
	a := declaration(t)
	control := "Package: some-stranger\nVersion: 1.0\nArchitecture: all\n"

	vs, err := CheckDeb(bytes.NewReader(mockDeb(t, control)), a)
	if err != nil {
		t.Fatalf("CheckDeb failed: %v", err)
	}
	if len(vs) != 1 || vs[0].Field != "Package" {
		t.Errorf("violations = %v", vs)
	}
}

func TestCheckDebNotADeb(t *testing.T) {
	a := declaration(t)
	if _, err := CheckDeb(bytes.NewReader([]byte("not an archive")), a); err == nil {
		t.Fatal("CheckDeb accepted garbage input")
	}
}
