package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/globalise-huygens/go-iiif-manifests/archive"
	"github.com/globalise-huygens/go-iiif-manifests/iiif"
	"gocloud.dev/blob"
)

// Granularity selects which archival level a manifest is built at.
type Granularity string

const (
	// FileGranularity aggregates all scans of a File (inventory),
	// including those of its constituent Records, in document order.
	FileGranularity Granularity = "file"
	// RecordGranularity covers a single Record's scans only.
	RecordGranularity Granularity = "record"
)

// GranularityFromString resolves a string label in to a Granularity.
func GranularityFromString(s string) (Granularity, error) {

	switch strings.ToLower(s) {
	case "file", "inventory":
		return FileGranularity, nil
	case "record", "document":
		return RecordGranularity, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedGranularity, s)
	}
}

// GroupingKind selects how a collection's members are grouped.
type GroupingKind string

const (
	// SeriesOfSeries collections contain only (nested) collections.
	SeriesOfSeries GroupingKind = "seriesofseries"
	// InventoryGroup collections contain File-level manifests.
	InventoryGroup GroupingKind = "inventorygroup"
	// DocumentGroup collections contain Record-level manifests.
	DocumentGroup GroupingKind = "documentgroup"
)

// Member is anything that can appear in a collection: a built manifest
// or a built collection.
type Member interface {
	Reference() *iiif.Reference
}

// Builder derives IIIF documents from archival units. All
// configuration lives here, passed explicitly, so a single Builder is
// safe for concurrent use across independent units.
type Builder struct {
	// Base URL prepended to manifest identifiers.
	ManifestBaseURL string
	// Base URL prepended to collection identifiers.
	CollectionBaseURL string
	// An optional bucket of cached METS documents for resolving scan
	// sequences of units that carry a METS ID but no inline scans.
	METSCache *blob.Bucket
	// Allow InventoryGroup and DocumentGroup collections to contain
	// nested collections of the same kind. SeriesOfSeries collections
	// always nest; whether the narrower groupings should is left open
	// by the grouping scheme, so it is a policy knob here.
	NestedCollections bool
}

// DocumentPath derives the stable relative path for a document from
// an archival code. Spaces become '+', nothing else is touched, so
// regeneration always lands on the same path.
func DocumentPath(prefix string, code string) string {

	fname := fmt.Sprintf("%s%s.json", prefix, code)
	return strings.ReplaceAll(fname, " ", "+")
}

// ManifestURI returns the identifier for a manifest built from code,
// under an optional path prefix.
func (b *Builder) ManifestURI(prefix string, code string) string {
	return b.ManifestBaseURL + DocumentPath(prefix, code)
}

// CollectionURI returns the identifier for a collection built from
// code, under an optional path prefix.
func (b *Builder) CollectionURI(prefix string, code string) string {
	return b.CollectionBaseURL + DocumentPath(prefix, code)
}

// BuildManifest builds one manifest for a File or Record unit at the
// requested granularity, with the default path prefix for that
// granularity ("inventories/" or "documents/").
func (b *Builder) BuildManifest(ctx context.Context, unit *archive.ArchivalUnit, granularity Granularity) (*iiif.Manifest, error) {

	var prefix string

	switch granularity {
	case FileGranularity:
		prefix = "inventories/"
	case RecordGranularity:
		prefix = "documents/"
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedGranularity, granularity)
	}

	return b.BuildManifestWithPrefix(ctx, unit, granularity, prefix)
}

// BuildManifestWithPrefix builds one manifest for a File or Record
// unit at the requested granularity, under an explicit path prefix.
// The manifest's scan sequence preserves source order: for a File that
// is the File's own scans followed by each Record's scans, in record
// order.
func (b *Builder) BuildManifestWithPrefix(ctx context.Context, unit *archive.ArchivalUnit, granularity Granularity, prefix string) (*iiif.Manifest, error) {

	var scans []*archive.Scan

	switch granularity {

	case FileGranularity:

		if unit.Kind != archive.File {
			return nil, fmt.Errorf("%w: cannot build a file manifest from a %s unit ('%s')", ErrUnsupportedGranularity, unit.Kind, unit.Code)
		}

		scans = unit.ScanSequence()

	case RecordGranularity:

		if unit.Kind != archive.Record {
			return nil, fmt.Errorf("%w: cannot build a record manifest from a %s unit ('%s')", ErrUnsupportedGranularity, unit.Kind, unit.Code)
		}

		scans = unit.Scans

	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedGranularity, granularity)
	}

	if len(scans) == 0 && unit.METSID != "" && b.METSCache != nil {

		mets_scans, err := archive.ResolveScans(ctx, b.METSCache, unit.METSID)

		if err != nil {
			return nil, fmt.Errorf("Failed to resolve scans for '%s', %w", unit.Code, err)
		}

		scans = mets_scans
	}

	if len(scans) == 0 {
		return nil, fmt.Errorf("%w: unit '%s'", ErrEmptyScanSet, unit.Code)
	}

	manifest_id := b.ManifestURI(prefix, unit.Code)

	m := iiif.NewManifest(manifest_id, unit.Label())

	m.Metadata = []*iiif.KeyValue{
		iiif.NewKeyValue("Identifier", unit.Code),
		iiif.NewKeyValue("Title", unit.Title),
		iiif.NewKeyValue("Date", unit.Date),
		iiif.NewPermalinkValue(unit.Permalink),
	}

	for n, scan := range scans {
		m.AppendCanvas(iiif.NewImageCanvas(manifest_id, n+1, scan.Label, scan.Service, 0, 0))
	}

	return m, nil
}

// BuildAggregateManifest builds one manifest covering every unit that
// shares an archival code, accumulating titles, dates and permalinks
// in to list-valued metadata. Each unit's scans are resolved in turn
// and concatenated in unit order, so no scan is lost when more than
// one listing carries its own. This is how inventory manifests are
// built when a finding aid lists the same inventory number more than
// once.
func (b *Builder) BuildAggregateManifest(ctx context.Context, code string, units []*archive.ArchivalUnit, prefix string) (*iiif.Manifest, error) {

	if len(units) == 0 {
		return nil, fmt.Errorf("%w: no units for code '%s'", ErrEmptyScanSet, code)
	}

	titles := make([]string, len(units))
	dates := make([]string, len(units))
	permalinks := make([]string, len(units))

	for i, u := range units {
		titles[i] = u.Title
		dates[i] = u.Date
		permalinks[i] = u.Permalink
	}

	scans := make([]*archive.Scan, 0)

	for _, u := range units {

		if len(u.Scans) > 0 {
			scans = append(scans, u.ScanSequence()...)
			continue
		}

		if u.METSID != "" && b.METSCache != nil {

			mets_scans, err := archive.ResolveScans(ctx, b.METSCache, u.METSID)

			if err != nil {
				return nil, fmt.Errorf("Failed to resolve scans for '%s', %w", code, err)
			}

			scans = append(scans, mets_scans...)
		}
	}

	if len(scans) == 0 {
		return nil, fmt.Errorf("%w: inventory '%s'", ErrEmptyScanSet, code)
	}

	manifest_id := b.ManifestURI(prefix, code)

	label := fmt.Sprintf("Inventory %s", code)

	m := iiif.NewManifest(manifest_id, label)

	m.Metadata = []*iiif.KeyValue{
		iiif.NewKeyValue("Identifier", code),
		iiif.NewKeyValue("Titles", titles...),
		iiif.NewKeyValue("Dates", dates...),
		iiif.NewPermalinkValue(permalinks...),
	}

	for n, scan := range scans {
		m.AppendCanvas(iiif.NewImageCanvas(manifest_id, n+1, scan.Label, scan.Service, 0, 0))
	}

	return m, nil
}

// BuildCollection builds one collection for unit, whose members are
// the (already built) manifests or collections supplied, in input
// order. Member types must match the declared grouping kind: a
// SeriesOfSeries collection contains only collections, an
// InventoryGroup or DocumentGroup collection contains only manifests
// (or, when NestedCollections is enabled, collections of the same
// kind).
func (b *Builder) BuildCollection(ctx context.Context, unit *archive.ArchivalUnit, members []Member, grouping GroupingKind) (*iiif.Collection, error) {
	return b.BuildCollectionWithPrefix(ctx, unit, members, grouping, "")
}

// BuildCollectionWithPrefix is BuildCollection under an explicit path
// prefix.
func (b *Builder) BuildCollectionWithPrefix(ctx context.Context, unit *archive.ArchivalUnit, members []Member, grouping GroupingKind, prefix string) (*iiif.Collection, error) {

	switch grouping {
	case SeriesOfSeries, InventoryGroup, DocumentGroup:
		// pass
	default:
		return nil, fmt.Errorf("%w: unknown grouping kind '%s'", ErrGroupingKindMismatch, grouping)
	}

	collection_id := b.CollectionURI(prefix, unit.Code)

	c := iiif.NewCollection(collection_id, unit.Label())

	c.Metadata = []*iiif.KeyValue{
		iiif.NewKeyValue("Identifier", unit.Code),
		iiif.NewKeyValue("Title", unit.Title),
	}

	if unit.Permalink != "" {
		c.Metadata = append(c.Metadata, iiif.NewPermalinkValue(unit.Permalink))
	}

	for _, m := range members {

		r := m.Reference()

		switch r.Type {

		case "Collection":

			if grouping != SeriesOfSeries && !b.NestedCollections {
				return nil, fmt.Errorf("%w: %s collection '%s' may not contain a collection", ErrGroupingKindMismatch, grouping, unit.Code)
			}

		case "Manifest":

			if grouping == SeriesOfSeries {
				return nil, fmt.Errorf("%w: series-of-series collection '%s' may not contain a manifest", ErrGroupingKindMismatch, unit.Code)
			}

		default:
			return nil, fmt.Errorf("%w: unexpected member type '%s' in collection '%s'", ErrGroupingKindMismatch, r.Type, unit.Code)
		}

		c.AppendMember(r)
	}

	return c, nil
}
