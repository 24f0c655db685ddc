package debdir

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/deb"
)

// RenderDSC produces the source control stanza (.dsc) of a finalized
// declaration.
func RenderDSC(a *atoms.Atoms) string {
	var b strings.Builder
	field := func(key deb.DSCField, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}

	binaries := make([]string, 0, len(a.Binaries()))
	arches := make(map[string]bool)
	for _, bin := range a.Binaries() {
		binaries = append(binaries, bin.Name)
		if arch := bin.Architecture.Get(); arch != "" {
			arches[arch] = true
		}
	}
	archList := make([]string, 0, len(arches))
	for arch := range arches {
		archList = append(archList, arch)
	}
	sort.Strings(archList)

	field(deb.DSCFormat, "3.0 (quilt)")
	field(deb.DSCSource, a.SourceName.Get())
	field(deb.DSCBinary, strings.Join(binaries, ", "))
	field(deb.DSCArchitecture, strings.Join(archList, " "))
	if a.SourceVersion.IsSet() {
		field(deb.DSCVersion, a.SourceVersion.Get().String())
	}
	field(deb.DSCMaintainer, a.Maintainer.Get())
	field(deb.DSCHomepage, a.Homepage.Get())
	field(deb.DSCStandardsVersion, a.StandardsVersion.Get())
	field(deb.DSCBuildDepends, a.BuildDepends.Get().String())
	return b.String()
}

// SignDSC clearsigns a rendered .dsc stanza with an ASCII-armored PGP
// private key, the way debsign does.
func SignDSC(dsc string, armoredKey string) ([]byte, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return nil, fmt.Errorf("reading signing key: %w", err)
	}
	var signer *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			signer = e
			break
		}
	}
	if signer == nil {
		return nil, fmt.Errorf("no private key found in keyring")
	}

	var out bytes.Buffer
	w, err := clearsign.Encode(&out, signer.PrivateKey, nil)
	if err != nil {
		return nil, fmt.Errorf("clearsigning: %w", err)
	}
	if _, err := w.Write([]byte(dsc)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
