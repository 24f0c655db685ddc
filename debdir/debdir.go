// Package debdir reads and writes the debian/ packaging directory. Read
// reconstructs a declaration from an existing directory, every value it
// finds counting as user-supplied. Write renders a finalized declaration
// into the directory, skipping files whose content is already current
// and reporting a digest-tracked operation per file.
package debdir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/deb"
	"github.com/etnz/hs-debianize/mapper"
	"github.com/etnz/hs-debianize/policy"
)

// Listener is a callback function that receives events while the
// directory is written. A nil Listener discards them.
type Listener func(fmt.Stringer)

// EventFileOperation is emitted when a file is written or skipped.
type EventFileOperation struct {
	Path      string `json:"path,omitempty"`
	OldDigest string `json:"old_digest,omitempty"`
	NewDigest string `json:"new_digest,omitempty"`
	Created   bool   `json:"created,omitempty"`
	Updated   bool   `json:"updated,omitempty"`
}

func (e EventFileOperation) String() string {
	b, _ := json.Marshal(map[string]interface{}{fmt.Sprintf("%T", e): e})
	return string(b)
}

// FileOperation records the outcome of writing one file: its path
// relative to the debian/ directory and the SHA256 digests before and
// after. An empty OldDigest means the file was created; equal digests
// mean it was left untouched.
type FileOperation struct {
	Path      string
	OldDigest string
	NewDigest string
}

// Read reconstructs a declaration from an existing debian/ directory.
// Every field found on disk is recorded as user-supplied, so a later
// finalization preserves it.
func Read(dir string) (*atoms.Atoms, error) {
	a := atoms.New(nil)

	data, err := os.ReadFile(filepath.Join(dir, string(deb.FileControl)))
	if err != nil {
		return nil, fmt.Errorf("reading control: %w", err)
	}
	stanzas := deb.SplitStanzas(string(data))
	if len(stanzas) == 0 {
		return nil, fmt.Errorf("control file in %s is empty", dir)
	}
	src, err := deb.ParseSourceStanza(stanzas[0])
	if err != nil {
		return nil, fmt.Errorf("parsing source stanza: %w", err)
	}
	a.SourceName.Set(src.Source)
	setString(&a.Maintainer, src.Maintainer)
	if len(src.Uploaders) > 0 {
		a.Uploaders.Set(src.Uploaders)
	}
	setString(&a.Section, src.Section)
	setString(&a.Priority, src.Priority)
	setString(&a.StandardsVersion, src.StandardsVersion)
	setString(&a.Homepage, src.Homepage)
	if len(src.BuildDepends) > 0 {
		a.BuildDepends.Set(src.BuildDepends)
	}

	for _, stanza := range stanzas[1:] {
		bs, err := deb.ParseBinaryStanza(stanza)
		if err != nil {
			return nil, fmt.Errorf("parsing binary stanza: %w", err)
		}
		name, _ := mapper.ParseName(bs.Package)
		b, err := a.AddBinary(name)
		if err != nil {
			return nil, err
		}
		setString(&b.Architecture, bs.Architecture)
		setString(&b.Section, bs.Section)
		if len(bs.Depends) > 0 {
			b.Depends.Set(bs.Depends)
		}
		if len(bs.Recommends) > 0 {
			b.Recommends.Set(bs.Recommends)
		}
		if len(bs.Suggests) > 0 {
			b.Suggests.Set(bs.Suggests)
		}
		if bs.Description != "" {
			synopsis, rest, _ := strings.Cut(bs.Description, "\n")
			b.Synopsis.Set(synopsis)
			if rest != "" {
				b.Description.Set(rest)
			}
		}
	}

	if err := readChangelog(dir, a); err != nil {
		return nil, err
	}
	readCompat(dir, a)
	readCopyright(dir, a)
	if err := readInstalls(dir, a); err != nil {
		return nil, err
	}
	readRules(dir, a)
	return a, nil
}

func setString(f *atoms.Field[string], v string) {
	if v != "" {
		f.Set(v)
	}
}

// readChangelog recovers the source version from the most recent entry,
// the first line of the file: "source (version) distribution; ...".
func readChangelog(dir string, a *atoms.Atoms) error {
	data, err := os.ReadFile(filepath.Join(dir, string(deb.FileChangelog)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading changelog: %w", err)
	}
	first, rest, _ := strings.Cut(string(data), "\n")
	open := strings.Index(first, "(")
	end := strings.Index(first, ")")
	if open == -1 || end == -1 || end < open {
		return fmt.Errorf("changelog entry %q has no version", first)
	}
	v, err := deb.ParseVersion(first[open+1 : end])
	if err != nil {
		return fmt.Errorf("changelog version: %w", err)
	}
	a.SourceVersion.Set(v)

	// The bullet lines of the top entry are the changelog comment.
	var comment []string
	for _, line := range strings.Split(rest, "\n") {
		if strings.HasPrefix(line, " --") {
			break
		}
		if c, ok := strings.CutPrefix(line, "  * "); ok {
			comment = append(comment, c)
		}
	}
	if len(comment) > 0 {
		a.ChangelogComment.Set(strings.Join(comment, "\n"))
	}
	return nil
}

func readCompat(dir string, a *atoms.Atoms) {
	data, err := os.ReadFile(filepath.Join(dir, string(deb.FileCompat)))
	if err != nil {
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
		a.CompatLevel.Set(n)
	}
}

// readCopyright recovers the license short name and copyright holder
// from the machine-readable copyright file.
func readCopyright(dir string, a *atoms.Atoms) {
	data, err := os.ReadFile(filepath.Join(dir, string(deb.FileCopyright)))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(line, "License: "); ok && !a.License.IsSet() {
			a.License.Set(strings.TrimSpace(v))
		}
		if v, ok := strings.CutPrefix(line, "Copyright: "); ok && !a.Copyright.IsSet() {
			a.Copyright.Set(strings.TrimSpace(v))
		}
	}
}

func readInstalls(dir string, a *atoms.Atoms) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.install"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		pkg := strings.TrimSuffix(filepath.Base(path), ".install")
		b := a.Binary(pkg)
		if b == nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				b.InstallFiles = append(b.InstallFiles, line)
			}
		}
	}
	return nil
}

// readRules keeps everything after the dh skeleton as one rules fragment.
func readRules(dir string, a *atoms.Atoms) {
	data, err := os.ReadFile(filepath.Join(dir, string(deb.FileRules)))
	if err != nil {
		return
	}
	_, rest, found := strings.Cut(string(data), "\tdh $@\n")
	if !found {
		return
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		a.RulesFragments = append(a.RulesFragments, rest)
	}
}

// Write renders the declaration into dir, creating it as needed. Files
// whose content is already current are left untouched. The returned
// operations are sorted by path.
func Write(dir string, a *atoms.Atoms, pol *policy.Tables, l Listener) ([]FileOperation, error) {
	if pol == nil {
		pol = policy.Default()
	}
	if l == nil {
		l = func(fmt.Stringer) {}
	}
	w := &dirWriter{dir: dir, emit: l}

	w.file(string(deb.FileControl), renderControl(a), 0644)
	w.file(string(deb.FileChangelog), w.changelog(a), 0644)
	w.file(string(deb.FileCompat), fmt.Sprintf("%d\n", a.CompatLevel.Get()), 0644)
	w.file(string(deb.FileCopyright), renderCopyright(a, pol), 0644)
	w.file(string(deb.FileRules), renderRules(a), 0755)
	w.file(string(deb.FileSourceFormat), "3.0 (quilt)\n", 0644)
	for _, b := range a.Binaries() {
		if len(b.InstallFiles) > 0 {
			w.file(b.Name+".install", strings.Join(b.InstallFiles, "\n")+"\n", 0644)
		}
	}
	if w.err != nil {
		return nil, w.err
	}
	sort.Slice(w.ops, func(i, j int) bool { return w.ops[i].Path < w.ops[j].Path })
	return w.ops, nil
}

type dirWriter struct {
	dir  string
	emit Listener
	ops  []FileOperation
	err  error
}

// file writes one file unless its content is already current.
func (w *dirWriter) file(rel, content string, mode os.FileMode) {
	if w.err != nil {
		return
	}
	path := filepath.Join(w.dir, rel)

	var old string
	if data, err := os.ReadFile(path); err == nil {
		old = digest(data)
	}
	cur := digest([]byte(content))
	op := FileOperation{Path: rel, OldDigest: old, NewDigest: cur}
	w.ops = append(w.ops, op)
	w.emit(EventFileOperation{
		Path:      rel,
		OldDigest: old,
		NewDigest: cur,
		Created:   old == "",
		Updated:   old != "" && old != cur,
	})
	if old == cur {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.err = err
		return
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		w.err = fmt.Errorf("writing %s: %w", rel, err)
	}
}

// changelog renders the changelog entry, keeping an existing file whose
// top entry already names the same source and version so the timestamp
// stays stable across runs.
func (w *dirWriter) changelog(a *atoms.Atoms) string {
	first := fmt.Sprintf("%s (%s) unstable; urgency=medium", a.SourceName.Get(), a.SourceVersion.Get())
	if data, err := os.ReadFile(filepath.Join(w.dir, string(deb.FileChangelog))); err == nil {
		existing, _, _ := strings.Cut(string(data), "\n")
		if existing == first {
			return string(data)
		}
	}
	comment := a.ChangelogComment.Get()
	if comment == "" {
		comment = "New upstream release."
	}
	return fmt.Sprintf("%s\n\n  * %s\n\n -- %s  %s\n",
		first, comment, a.Maintainer.Get(), time.Now().Format(time.RFC1123Z))
}

func digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// renderControl produces the full debian/control text: the source
// stanza followed by one stanza per binary package.
func renderControl(a *atoms.Atoms) string {
	src := deb.SourceStanza{
		Source:           a.SourceName.Get(),
		Maintainer:       a.Maintainer.Get(),
		Uploaders:        a.Uploaders.Get(),
		Section:          a.Section.Get(),
		Priority:         a.Priority.Get(),
		BuildDepends:     a.BuildDepends.Get(),
		StandardsVersion: a.StandardsVersion.Get(),
		Homepage:         a.Homepage.Get(),
	}
	parts := []string{src.Render()}
	for _, b := range a.Binaries() {
		stanza := deb.BinaryStanza{
			Package:      b.Name,
			Architecture: b.Architecture.Get(),
			Section:      b.Section.Get(),
			Depends:      b.Depends.Get(),
			Recommends:   b.Recommends.Get(),
			Suggests:     b.Suggests.Get(),
			Description:  description(b),
		}
		parts = append(parts, stanza.Render())
	}
	return strings.Join(parts, "\n")
}

// description joins the synopsis and extended description the way the
// control file carries them.
func description(b *atoms.Binary) string {
	if !b.Description.IsSet() {
		return b.Synopsis.Get()
	}
	if !b.Synopsis.IsSet() {
		return b.Description.Get()
	}
	return b.Synopsis.Get() + "\n" + b.Description.Get()
}

// renderCopyright produces the machine-readable copyright file,
// expanding the license boilerplate from the policy tables.
func renderCopyright(a *atoms.Atoms, pol *policy.Tables) string {
	var sb strings.Builder
	sb.WriteString("Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n")
	if up := a.Upstream; up != nil && up.Name != "" {
		fmt.Fprintf(&sb, "Upstream-Name: %s\n", up.Name)
	}
	sb.WriteString("\nFiles: *\n")
	if c := a.Copyright.Get(); c != "" {
		fmt.Fprintf(&sb, "Copyright: %s\n", c)
	}
	short := a.License.Get()
	fmt.Fprintf(&sb, "License: %s\n", short)

	for _, l := range pol.Licenses {
		if l.ShortName == short && l.Text != "" {
			for _, line := range strings.Split(l.Text, "\n") {
				if strings.TrimSpace(line) == "" {
					sb.WriteString(" .\n")
				} else {
					fmt.Fprintf(&sb, " %s\n", line)
				}
			}
			break
		}
	}
	return sb.String()
}

// renderRules produces the dh skeleton with the declaration's fragments
// appended.
func renderRules(a *atoms.Atoms) string {
	var sb strings.Builder
	sb.WriteString("#!/usr/bin/make -f\n\n%:\n\tdh $@\n")
	for _, f := range a.RulesFragments {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(f, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}
