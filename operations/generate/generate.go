package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/globalise-huygens/go-iiif-manifests/archive"
	"github.com/globalise-huygens/go-iiif-manifests/operations/build"
)

// Options configures a generation pass.
type Options struct {
	// Abort the pass on the first per-unit failure instead of
	// skipping the offending unit and continuing.
	Strict bool
	// Treat zero-scan units as omissions rather than failures.
	OmitEmpty bool
	// An optional code for grouping document manifests in to a
	// DocumentGroup collection at the end of a documents pass.
	GroupCode string
	// An optional title for the DocumentGroup collection.
	GroupTitle string
}

// InventoryManifests builds one manifest per distinct inventory
// (File) number in the hierarchy, under the "inventories/" prefix.
// Finding aids list some inventory numbers more than once; those units
// are aggregated in to a single manifest. Manifest construction for
// one inventory never depends on another's so inventories are built
// concurrently; emit receives documents from multiple goroutines.
func InventoryManifests(ctx context.Context, b *build.Builder, root *archive.ArchivalUnit, opts *Options, emit build.EmitDocumentFunc) error {

	if opts == nil {
		opts = &Options{}
	}

	codes := make([]string, 0)
	by_code := make(map[string][]*archive.ArchivalUnit)

	err := archive.WalkFiles(ctx, root, func(ctx context.Context, u *archive.ArchivalUnit) error {

		units, ok := by_code[u.Code]

		if !ok {
			codes = append(codes, u.Code)
		}

		by_code[u.Code] = append(units, u)
		return nil
	})

	if err != nil {
		return fmt.Errorf("Failed to resolve hierarchy, %w", err)
	}

	type buildError struct {
		Code  string
		Error error
	}

	err_ch := make(chan buildError, len(codes))

	wg := new(sync.WaitGroup)

	for _, code := range codes {

		wg.Add(1)

		go func(code string) {

			defer wg.Done()

			m, err := b.BuildAggregateManifest(ctx, code, by_code[code], "inventories/")

			if err != nil {
				err_ch <- buildError{Code: code, Error: err}
				return
			}

			body, err := m.MarshalIndent()

			if err != nil {
				err_ch <- buildError{Code: code, Error: err}
				return
			}

			doc := &build.Document{
				ID:   m.ID,
				Path: build.DocumentPath("inventories/", code),
				Body: body,
			}

			err = emit(ctx, doc)

			if err != nil {
				err_ch <- buildError{Code: code, Error: err}
			}

		}(code)
	}

	wg.Wait()
	close(err_ch)

	for build_err := range err_ch {

		if errors.Is(build_err.Error, build.ErrEmptyScanSet) && opts.OmitEmpty {
			log.Printf("Omitting inventory %s, no scans\n", build_err.Code)
			continue
		}

		if opts.Strict {
			return fmt.Errorf("Failed to build inventory %s, %w", build_err.Code, build_err.Error)
		}

		log.Printf("Skipping inventory %s, %v\n", build_err.Code, build_err.Error)
	}

	return nil
}

// DocumentManifests builds one manifest per Record unit, under the
// "documents/" prefix, concurrently. When Options.GroupCode is set a
// DocumentGroup collection referencing every built manifest (in input
// order) is emitted as well.
func DocumentManifests(ctx context.Context, b *build.Builder, records []*archive.ArchivalUnit, opts *Options, emit build.EmitDocumentFunc) error {

	if opts == nil {
		opts = &Options{}
	}

	type buildResult struct {
		Index    int
		Manifest build.Member
	}

	type buildError struct {
		Code  string
		Error error
	}

	err_ch := make(chan buildError, len(records))
	rsp_ch := make(chan buildResult, len(records))

	built := make([]build.Member, len(records))

	wg := new(sync.WaitGroup)

	for idx, rec := range records {

		wg.Add(1)

		go func(idx int, rec *archive.ArchivalUnit) {

			defer wg.Done()

			m, err := b.BuildManifest(ctx, rec, build.RecordGranularity)

			if err != nil {
				err_ch <- buildError{Code: rec.Code, Error: err}
				return
			}

			body, err := m.MarshalIndent()

			if err != nil {
				err_ch <- buildError{Code: rec.Code, Error: err}
				return
			}

			doc := &build.Document{
				ID:   m.ID,
				Path: build.DocumentPath("documents/", rec.Code),
				Body: body,
			}

			err = emit(ctx, doc)

			if err != nil {
				err_ch <- buildError{Code: rec.Code, Error: err}
				return
			}

			rsp_ch <- buildResult{Index: idx, Manifest: m}

		}(idx, rec)
	}

	wg.Wait()
	close(err_ch)
	close(rsp_ch)

	for build_err := range err_ch {

		if errors.Is(build_err.Error, build.ErrEmptyScanSet) && opts.OmitEmpty {
			log.Printf("Omitting document %s, no scans\n", build_err.Code)
			continue
		}

		if opts.Strict {
			return fmt.Errorf("Failed to build document %s, %w", build_err.Code, build_err.Error)
		}

		log.Printf("Skipping document %s, %v\n", build_err.Code, build_err.Error)
	}

	for rsp := range rsp_ch {
		built[rsp.Index] = rsp.Manifest
	}

	if opts.GroupCode == "" {
		return nil
	}

	members := make([]build.Member, 0, len(built))

	for _, m := range built {

		if m != nil {
			members = append(members, m)
		}
	}

	group := &archive.ArchivalUnit{
		Kind:  archive.Series,
		Code:  opts.GroupCode,
		Title: opts.GroupTitle,
	}

	col, err := b.BuildCollection(ctx, group, members, build.DocumentGroup)

	if err != nil {
		return fmt.Errorf("Failed to build document group collection, %w", err)
	}

	body, err := col.MarshalIndent()

	if err != nil {
		return fmt.Errorf("Failed to marshal document group collection, %w", err)
	}

	doc := &build.Document{
		ID:   col.ID,
		Path: build.DocumentPath("", opts.GroupCode),
		Body: body,
	}

	return emit(ctx, doc)
}

// CollectionTree builds the full collection hierarchy for a fonds,
// emitting one collection per node and one manifest per file, pruning
// branches with nothing digitized.
func CollectionTree(ctx context.Context, b *build.Builder, root *archive.ArchivalUnit, opts *Options, emit build.EmitDocumentFunc) error {

	if opts == nil {
		opts = &Options{}
	}

	tree_opts := &build.TreeOptions{
		OmitEmpty:          opts.OmitEmpty,
		InventoryManifests: true,
	}

	return b.BuildTree(ctx, root, tree_opts, emit)
}
