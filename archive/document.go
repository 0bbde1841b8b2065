package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/globalise-huygens/go-iiif-manifests/common"
)

// DocumentRegisterOptions configures how a CSV document register is
// parsed in to Record units.
type DocumentRegisterOptions struct {
	// A template for deriving a scan's image service URI from its
	// label. Occurrences of "{label}" are replaced with the scan's
	// (zero-padded) file name. May be empty, in which case scans are
	// published without an image service.
	ServiceTemplate string
	// The CSV field separator. Defaults to ','.
	Comma rune
}

// LoadDocumentRegister reads a CSV document register from a
// whosonfirst/go-reader source and parses it in to Record units.
func LoadDocumentRegister(ctx context.Context, reader_uri string, path string, opts *DocumentRegisterOptions) ([]*ArchivalUnit, error) {

	r, err := common.NewReader(ctx, reader_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for document register, %w", err)
	}

	fh, err := r.Read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to read document register '%s', %w", path, err)
	}

	defer fh.Close()

	return ParseDocumentRegister(fh, opts)
}

// ParseDocumentRegister parses a CSV document register in to Record
// units, one per distinct document_id, in order of first appearance.
// Scan file names are synthesized from the register's scan_start URL
// and no_of_scans count, zero-padded the way the scanning bureau names
// its files.
func ParseDocumentRegister(fh io.Reader, opts *DocumentRegisterOptions) ([]*ArchivalUnit, error) {

	if opts == nil {
		opts = &DocumentRegisterOptions{}
	}

	cr := csv.NewReader(fh)

	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()

	if err != nil {
		return nil, fmt.Errorf("%w: failed to read register header, %v", ErrMalformedFeedEntry, err)
	}

	cols := make(map[string]int)

	for idx, name := range header {
		cols[strings.TrimSpace(name)] = idx
	}

	for _, required := range []string{"document_id", "title", "scan_start", "no_of_scans"} {

		_, ok := cols[required]

		if !ok {
			return nil, fmt.Errorf("%w: register is missing column '%s'", ErrMalformedFeedEntry, required)
		}
	}

	records := make([]*ArchivalUnit, 0)
	by_id := make(map[string]*ArchivalUnit)

	field := func(row []string, name string) string {

		idx, ok := cols[name]

		if !ok || idx >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[idx])
	}

	for {

		row, err := cr.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: failed to read register row, %v", ErrMalformedFeedEntry, err)
		}

		doc_id := field(row, "document_id")

		if doc_id == "" {
			return nil, fmt.Errorf("%w: register row is missing document_id", ErrMalformedFeedEntry)
		}

		scans, err := synthesizeScans(field(row, "scan_start"), field(row, "no_of_scans"), opts.ServiceTemplate)

		if err != nil {
			return nil, fmt.Errorf("Failed to derive scans for document '%s', %w", doc_id, err)
		}

		u, ok := by_id[doc_id]

		if !ok {

			u = &ArchivalUnit{
				Kind:  Record,
				Code:  doc_id,
				Title: field(row, "title"),
				Date:  field(row, "year_creation_or_dispatch"),
			}

			by_id[doc_id] = u
			records = append(records, u)

		} else {

			// A document spanning multiple register rows accumulates
			// titles; the first row's date stands.

			title := field(row, "title")

			if title != "" && !strings.Contains(u.Title, title) {
				u.Title = fmt.Sprintf("%s; %s", u.Title, title)
			}
		}

		u.Scans = append(u.Scans, scans...)
	}

	return records, nil
}

// synthesizeScans expands a scan_start URL of the form
// ".../file/NL-HaNA_1.04.02_1053_0123" and a scan count in to the
// zero-padded file name range the register describes.
func synthesizeScans(scan_start string, no_of_scans string, service_template string) ([]*Scan, error) {

	if scan_start == "" {
		return nil, fmt.Errorf("%w: missing scan_start", ErrMalformedFeedEntry)
	}

	count, err := strconv.Atoi(no_of_scans)

	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: invalid no_of_scans '%s'", ErrMalformedFeedEntry, no_of_scans)
	}

	_, name, found := strings.Cut(scan_start, "/file/")

	if !found {
		name = scan_start
	}

	idx := strings.LastIndex(name, "_")

	if idx == -1 {
		return nil, fmt.Errorf("%w: scan_start '%s' has no sequence suffix", ErrMalformedFeedEntry, scan_start)
	}

	base := name[:idx]
	start, err := strconv.Atoi(name[idx+1:])

	if err != nil {
		return nil, fmt.Errorf("%w: scan_start '%s' has a non-numeric sequence suffix", ErrMalformedFeedEntry, scan_start)
	}

	scans := make([]*Scan, 0, count)

	for i := start; i < start+count; i++ {

		label := fmt.Sprintf("%s_%04d", base, i)

		service := ""

		if service_template != "" {
			service = strings.ReplaceAll(service_template, "{label}", label)
		}

		scans = append(scans, &Scan{
			Label:   label,
			Service: service,
		})
	}

	return scans, nil
}
