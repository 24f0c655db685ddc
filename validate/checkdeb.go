package validate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/deb"
)

// CheckDeb cross-checks a built .deb against the declaration it was
// built from: the package must be declared, carry the declared version
// and architecture, and its dependency list must cover every declared
// relation. Substitution variables in the declaration are skipped, dh
// expands them at build time.
func CheckDeb(r io.Reader, a *atoms.Atoms) ([]Violation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}
	control, err := extractControl(data)
	if err != nil {
		return nil, err
	}
	stanza, err := deb.ParseBinaryStanza(control)
	if err != nil {
		return nil, fmt.Errorf("parsing control of built package: %w", err)
	}

	var vs []Violation
	fail := func(field, format string, args ...interface{}) {
		vs = append(vs, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	b := a.Binary(stanza.Package)
	if b == nil {
		fail("Package", "%s is not a declared binary package", stanza.Package)
		return vs, nil
	}

	if want := versionString(a); want != "" {
		if got := stanza.ExtraFields[string(deb.FieldVersion)]; got != want {
			fail("Version", "built %s, declared %s", got, want)
		}
	}

	// A package declared for a concrete architecture must be built for
	// it; "any" matches whatever the build host produced.
	if declared := b.Architecture.Get(); declared != "" && declared != "any" {
		if stanza.Architecture != declared {
			fail("Architecture", "built %s, declared %s", stanza.Architecture, declared)
		}
	}

	if b.Depends.IsSet() {
		for _, g := range b.Depends.Get() {
			for _, rel := range g {
				if strings.HasPrefix(rel.Name, "${") {
					continue
				}
				if !stanza.Depends.Mentions(rel.Name) {
					fail("Depends", "declared dependency %s missing from built package", rel.Name)
				}
			}
		}
	}
	return vs, nil
}

// extractControl walks the AR structure of a .deb, decompresses the
// control.tar.gz (or control.tar) member and returns the control file
// text found inside.
func extractControl(data []byte) (string, error) {
	arR := ar.NewReader(bytes.NewReader(data))
	for {
		header, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading package archive: %w", err)
		}
		if !strings.HasPrefix(header.Name, "control.tar") {
			continue
		}

		tarData := make([]byte, header.Size)
		if _, err := io.ReadFull(arR, tarData); err != nil {
			return "", fmt.Errorf("reading control member: %w", err)
		}
		var tr *tar.Reader
		if strings.HasSuffix(header.Name, ".gz") {
			gzr, err := gzip.NewReader(bytes.NewReader(tarData))
			if err != nil {
				return "", fmt.Errorf("decompressing control member: %w", err)
			}
			defer gzr.Close()
			tr = tar.NewReader(gzr)
		} else {
			tr = tar.NewReader(bytes.NewReader(tarData))
		}

		for {
			th, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("reading control tarball: %w", err)
			}
			if filepath.Base(th.Name) == "control" {
				var buf bytes.Buffer
				if _, err := io.Copy(&buf, tr); err != nil {
					return "", fmt.Errorf("reading control file: %w", err)
				}
				return buf.String(), nil
			}
		}
	}
	return "", fmt.Errorf("control file not found in package")
}
