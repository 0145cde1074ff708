// Package brawl enumerates the reachable HTML pages of a site by walking its
// hyperlinks breadth-first from a seed URL.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package brawl
