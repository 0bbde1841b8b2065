package build

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/globalise-huygens/go-iiif-manifests/archive"
	"github.com/globalise-huygens/go-iiif-manifests/iiif"
)

// Document is a single built output document, ready to publish.
type Document struct {
	// The document identifier (its URL).
	ID string
	// The relative output path, e.g. "inventories/1053.json".
	Path string
	// The serialized JSON-LD body.
	Body []byte
}

// EmitDocumentFunc receives each document as it is built.
type EmitDocumentFunc func(context.Context, *Document) error

// TreeOptions configures a whole-hierarchy build.
type TreeOptions struct {
	// Omit zero-scan files from their parent collection instead of
	// failing the build.
	OmitEmpty bool
	// Publish file manifests under a shared "inventories/" prefix
	// instead of beside their parent collection, so that one
	// inventory referenced from several series resolves to a single
	// manifest.
	InventoryManifests bool
}

// BuildTree walks the hierarchy rooted at root and emits one
// collection per fonds/series node and one manifest per file or
// record, mirroring the archival structure. Branches with no digitized
// units are pruned: a collection is only emitted when at least one
// descendant produced a manifest. Manifests for a code that was
// already built in this pass are emitted once and re-referenced.
func (b *Builder) BuildTree(ctx context.Context, root *archive.ArchivalUnit, opts *TreeOptions, emit EmitDocumentFunc) error {

	if opts == nil {
		opts = &TreeOptions{}
	}

	t := &treeBuilder{
		builder: b,
		opts:    opts,
		emit:    emit,
		built:   make(map[string]*iiif.Reference),
	}

	ref, err := t.buildNode(ctx, root, "")

	if err != nil {
		return err
	}

	if ref == nil {
		return fmt.Errorf("%w: hierarchy '%s' contains no digitized units", ErrEmptyScanSet, root.Code)
	}

	return nil
}

type treeBuilder struct {
	builder *Builder
	opts    *TreeOptions
	emit    EmitDocumentFunc
	built   map[string]*iiif.Reference
}

func (t *treeBuilder) buildNode(ctx context.Context, u *archive.ArchivalUnit, prefix string) (*iiif.Reference, error) {

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// pass
	}

	collection_path := DocumentPath(prefix, u.Code)
	child_prefix := strings.Replace(collection_path, ".json", "/", 1)

	members := make([]Member, 0, len(u.Children))
	collections_only := true

	for _, c := range u.Children {

		switch c.Kind {

		case archive.Fonds, archive.Series:

			ref, err := t.buildNode(ctx, c, child_prefix)

			if err != nil {
				return nil, err
			}

			if ref == nil {
				continue
			}

			members = append(members, referenceMember{ref})

		case archive.File, archive.Record:

			ref, err := t.buildLeaf(ctx, c, child_prefix)

			if err != nil {
				return nil, err
			}

			if ref == nil {
				continue
			}

			members = append(members, referenceMember{ref})
			collections_only = false

		default:
			return nil, fmt.Errorf("%w: unexpected %s unit '%s' in hierarchy", ErrGroupingKindMismatch, c.Kind, c.Code)
		}
	}

	if len(members) == 0 {
		return nil, nil
	}

	grouping := InventoryGroup

	if collections_only {
		grouping = SeriesOfSeries
	}

	col, err := t.builder.BuildCollectionWithPrefix(ctx, u, members, grouping, prefix)

	if err != nil {
		return nil, err
	}

	body, err := col.MarshalIndent()

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal collection '%s', %w", u.Code, err)
	}

	doc := &Document{
		ID:   col.ID,
		Path: collection_path,
		Body: body,
	}

	err = t.emit(ctx, doc)

	if err != nil {
		return nil, fmt.Errorf("Failed to emit collection '%s', %w", u.Code, err)
	}

	return col.Reference(), nil
}

func (t *treeBuilder) buildLeaf(ctx context.Context, u *archive.ArchivalUnit, prefix string) (*iiif.Reference, error) {

	granularity := FileGranularity

	if u.Kind == archive.Record {
		granularity = RecordGranularity
	}

	if t.opts.InventoryManifests {

		switch granularity {
		case FileGranularity:
			prefix = "inventories/"
		case RecordGranularity:
			prefix = "documents/"
		}
	}

	manifest_path := DocumentPath(prefix, u.Code)

	ref, ok := t.built[manifest_path]

	if ok {
		return ref, nil
	}

	m, err := t.builder.BuildManifestWithPrefix(ctx, u, granularity, prefix)

	if err != nil {

		if errors.Is(err, ErrEmptyScanSet) && t.opts.OmitEmpty {
			log.Printf("Omitting '%s', no scans\n", u.Code)
			return nil, nil
		}

		return nil, err
	}

	body, err := m.MarshalIndent()

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal manifest '%s', %w", u.Code, err)
	}

	doc := &Document{
		ID:   m.ID,
		Path: manifest_path,
		Body: body,
	}

	err = t.emit(ctx, doc)

	if err != nil {
		return nil, fmt.Errorf("Failed to emit manifest '%s', %w", u.Code, err)
	}

	ref = m.Reference()
	t.built[manifest_path] = ref

	return ref, nil
}

// referenceMember wraps an already-derived reference so that nested
// tree results satisfy the Member interface without holding whole
// documents in memory.
type referenceMember struct {
	ref *iiif.Reference
}

func (m referenceMember) Reference() *iiif.Reference {
	return m.ref
}
