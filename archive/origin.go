package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	iiifuri "github.com/go-iiif/go-iiif-uri"
)

// ScanFromOrigin derives a Scan from a go-iiif style origin URI, for
// feeds that reference scans by source image (file:///NL-HaNA_..._0001.jpg)
// rather than by service endpoint. The scan label is the origin's base
// name without its image extension; the service URI is supplied
// separately (and may be empty, in which case the canvas is published
// without an image service).
func ScanFromOrigin(ctx context.Context, str_uri string, service string) (*Scan, error) {

	u, err := iiifuri.NewURI(ctx, str_uri)

	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse scan origin '%s', %v", ErrMalformedFeedEntry, str_uri, err)
	}

	origin := u.Origin()

	base := filepath.Base(origin)

	switch strings.ToLower(filepath.Ext(base)) {
	case ".tif", ".tiff", ".jpg", ".jpeg":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	default:
		// pass
	}

	return &Scan{
		Label:   base,
		Service: service,
	}, nil
}
