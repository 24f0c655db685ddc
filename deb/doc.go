// Package deb provides the Debian packaging primitives shared by the
// debianization pipeline: version numbers with full dpkg ordering,
// dependency relations, and control file stanzas.
//
// # Design Philosophy
//
// The package operates purely in-memory on structured values. Versions,
// relations and stanzas can be parsed from and rendered back to their
// control-file text form without any external tool such as 'dpkg' or
// 'dpkg-parsechangelog', which keeps the finalization engine deterministic
// and testable.
//
// # Features
//
// Versioning:
//   - Version models [epoch:]upstream_version[-debian_revision].
//   - Compare implements the Debian version ordering, including epochs,
//     the '~' pre-release marker and digit/non-digit run comparison.
//
// Relations:
//   - Relation, Group and Deps model the Depends/Build-Depends syntax:
//     alternatives inside a group ("a | b"), conjunction across groups
//     ("a, b"), each optionally version-constrained.
//
// Stanzas:
//   - SourceStanza and BinaryStanza map to the paragraphs of a source
//     package's debian/control file, with folded-field parsing and
//     policy-compliant rendering.
package deb
