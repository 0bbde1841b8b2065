package archive

import (
	"fmt"
	"strings"
)

// UnitKind identifies a level in the archival hierarchy, per ISAD(G).
type UnitKind string

const (
	// Fonds is the whole of the records of a single archive creator.
	Fonds UnitKind = "fonds"
	// Series is a grouping of files maintained as a unit.
	Series UnitKind = "series"
	// File is a single inventory unit, typically one physical volume or bundle.
	File UnitKind = "file"
	// Record is a single document inside a file.
	Record UnitKind = "record"
)

// KindFromString resolves a string label in to a UnitKind.
func KindFromString(s string) (UnitKind, error) {

	switch strings.ToLower(s) {
	case "fonds":
		return Fonds, nil
	case "series", "subseries", "filegrp":
		return Series, nil
	case "file":
		return File, nil
	case "record", "document":
		return Record, nil
	default:
		return "", fmt.Errorf("Unknown unit kind '%s'", s)
	}
}

// Scan is a single digitized image belonging to exactly one File or Record.
// Sequence position is the scan's index in its parent's Scans slice.
type Scan struct {
	// The (base) file name for the scan, used as the canvas label.
	Label string `json:"label"`
	// The IIIF Image API service (info.json) URI for the scan.
	Service string `json:"service"`
}

// ArchivalUnit is a node in the archival hierarchy.
type ArchivalUnit struct {
	// The hierarchy level for this unit.
	Kind UnitKind `json:"kind"`
	// The archival identifier (fonds number, series code, inventory number, document ID).
	Code string `json:"id"`
	// The descriptive title for this unit.
	Title string `json:"title"`
	// An optional (normalized) date or date range.
	Date string `json:"date,omitempty"`
	// An optional permalink (handle) for this unit.
	Permalink string `json:"permalink,omitempty"`
	// An optional METS document identifier to resolve this unit's scans from.
	METSID string `json:"metsid,omitempty"`
	// Child units, in archival sort order.
	Children []*ArchivalUnit `json:"children,omitempty"`
	// Digitized scans, in sequence order. Only File and Record units carry scans.
	Scans []*Scan `json:"scans,omitempty"`
}

// Label returns the "{code} - {title}" display label used for manifests
// and collections.
func (u *ArchivalUnit) Label() string {
	return fmt.Sprintf("%s - %s", u.Code, u.Title)
}

// ScanSequence returns this unit's scans followed by the scans of every
// descendant, depth-first in document order. For a File containing
// Records this is the record-order, then intra-record scan order,
// concatenation the grouping scheme calls for.
func (u *ArchivalUnit) ScanSequence() []*Scan {

	scans := make([]*Scan, 0, len(u.Scans))
	scans = append(scans, u.Scans...)

	for _, c := range u.Children {
		scans = append(scans, c.ScanSequence()...)
	}

	return scans
}
