// generate emits IIIF Presentation 3 manifest and collection documents
// for an archival hierarchy, read from an EAD finding aid, a JSON
// metadata feed or a CSV document register.
package main

import (
	"context"
	"flag"
	"io"
	"log"

	"github.com/globalise-huygens/go-iiif-manifests/archive"
	"github.com/globalise-huygens/go-iiif-manifests/common"
	"github.com/globalise-huygens/go-iiif-manifests/lookup"
	"github.com/globalise-huygens/go-iiif-manifests/operations/build"
	"github.com/globalise-huygens/go-iiif-manifests/operations/generate"
	"github.com/globalise-huygens/go-iiif-manifests/operations/publish"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

func main() {

	reader_uri := flag.String("reader-uri", "", "A valid whosonfirst/go-reader URI for reading source metadata.")
	writer_uri := flag.String("writer-uri", "", "A valid whosonfirst/go-writer URI for publishing documents.")

	ead_path := flag.String("ead", "", "The path of an EAD finding aid, relative to -reader-uri.")
	feed_path := flag.String("feed", "", "The path of a JSON metadata feed, relative to -reader-uri.")
	csv_path := flag.String("csv", "", "The path of a CSV document register, relative to -reader-uri.")

	filter_path := flag.String("filter", "", "An optional path of a JSON array of inventory numbers to include, relative to -reader-uri.")

	manifests_base := flag.String("manifests-base-url", "https://example.org/manifests/", "The base URL for manifest identifiers.")
	collections_base := flag.String("collections-base-url", "https://example.org/collections/", "The base URL for collection identifiers.")

	mets_cache_uri := flag.String("mets-cache-uri", "", "An optional gocloud.dev/blob URI for a bucket of cached METS documents.")
	dimensions_uri := flag.String("dimensions-uri", "", "An optional gocloud.dev/blob URI for a bucket of scan dimension documents.")

	service_template := flag.String("service-template", "", "An optional image service URI template for CSV-derived scans; '{label}' is replaced with the scan file name.")

	group_code := flag.String("group-code", "", "An optional code for grouping document manifests in to a collection.")
	group_title := flag.String("group-title", "", "An optional title for the document group collection.")

	strict := flag.Bool("strict", false, "Abort on the first per-unit failure instead of skipping it.")
	omit_empty := flag.Bool("omit-empty", false, "Omit units without scans instead of failing them.")
	nested := flag.Bool("nested", true, "Allow collections of collections below series level.")

	flag.Parse()

	ctx := context.Background()

	if *writer_uri == "" {
		log.Fatal("Missing -writer-uri")
	}

	b := &build.Builder{
		ManifestBaseURL:   *manifests_base,
		CollectionBaseURL: *collections_base,
		NestedCollections: *nested,
	}

	if *mets_cache_uri != "" {

		bucket, err := common.OpenBucket(ctx, *mets_cache_uri)

		if err != nil {
			log.Fatalf("Failed to open METS cache, %v", err)
		}

		defer bucket.Close()

		b.METSCache = bucket
	}

	pub, err := publish.NewPublisher(ctx, *writer_uri)

	if err != nil {
		log.Fatalf("Failed to create publisher, %v", err)
	}

	if *dimensions_uri != "" {

		l, err := lookup.NewBlobLookerUpper(ctx, *dimensions_uri)

		if err != nil {
			log.Fatalf("Failed to create dimensions looker upper, %v", err)
		}

		looker_uppers := []lookup.LookerUpper{l}

		append_funcs := []lookup.AppendLookupFunc{
			lookup.DimensionsAppendLookupFunc,
		}

		lu, err := lookup.NewLookupMap(ctx, looker_uppers, append_funcs)

		if err != nil {
			log.Fatalf("Failed to build dimensions lookup, %v", err)
		}

		pub.Dimensions = lu
	}

	opts := &generate.Options{
		Strict:     *strict,
		OmitEmpty:  *omit_empty,
		GroupCode:  *group_code,
		GroupTitle: *group_title,
	}

	switch {

	case *ead_path != "" || *feed_path != "":

		var fonds *archive.ArchivalUnit

		if *ead_path != "" {

			var filter archive.FilterSet

			if *filter_path != "" {

				filter, err = archive.LoadFilterSet(ctx, *reader_uri, *filter_path)

				if err != nil {
					log.Fatalf("Failed to load filter set, %v", err)
				}
			}

			fonds, err = archive.LoadEAD(ctx, *reader_uri, *ead_path, filter)

			if err != nil {
				log.Fatalf("Failed to load EAD, %v", err)
			}

		} else {

			r, err := common.NewReader(ctx, *reader_uri)

			if err != nil {
				log.Fatalf("Failed to create feed reader, %v", err)
			}

			fh, err := r.Read(ctx, *feed_path)

			if err != nil {
				log.Fatalf("Failed to read feed, %v", err)
			}

			body, err := io.ReadAll(fh)

			fh.Close()

			if err != nil {
				log.Fatalf("Failed to read feed body, %v", err)
			}

			fonds, err = archive.UnmarshalFeed(ctx, body)

			if err != nil {
				log.Fatalf("Failed to unmarshal feed, %v", err)
			}
		}

		err = generate.InventoryManifests(ctx, b, fonds, opts, pub.Publish)

		if err != nil {
			log.Fatalf("Failed to generate inventory manifests, %v", err)
		}

		// The tree pass re-references manifests the inventories pass
		// already wrote.
		pub.SkipDuplicates = true

		err = generate.CollectionTree(ctx, b, fonds, opts, pub.Publish)

		if err != nil {
			log.Fatalf("Failed to generate collection tree, %v", err)
		}

	case *csv_path != "":

		register_opts := &archive.DocumentRegisterOptions{
			ServiceTemplate: *service_template,
		}

		records, err := archive.LoadDocumentRegister(ctx, *reader_uri, *csv_path, register_opts)

		if err != nil {
			log.Fatalf("Failed to load document register, %v", err)
		}

		err = generate.DocumentManifests(ctx, b, records, opts, pub.Publish)

		if err != nil {
			log.Fatalf("Failed to generate document manifests, %v", err)
		}

	default:
		log.Fatal("One of -ead, -feed or -csv is required")
	}

	log.Printf("Published %d documents\n", pub.Published())
}
