package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedFeedEntry is returned when a metadata feed entry fails
// basic structural validation.
var ErrMalformedFeedEntry = errors.New("Malformed feed entry")

// maxFeedDepth bounds hierarchy depth when decoding feeds. Archival
// hierarchies are shallow trees; anything deeper is a malformed (or
// cyclic) feed and fails rather than recursing without limit.
const maxFeedDepth = 64

// UnmarshalFeed decodes a JSON metadata feed in to an ArchivalUnit tree.
// The feed root may be a single unit or an array of units; an array is
// wrapped in a synthetic fonds so there is always a single root.
func UnmarshalFeed(ctx context.Context, body []byte) (*ArchivalUnit, error) {

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedFeedEntry)
	}

	root := gjson.ParseBytes(body)

	if root.IsArray() {

		fonds := &ArchivalUnit{
			Kind: Fonds,
		}

		for _, el := range root.Array() {

			u, err := unmarshalUnit(ctx, el, 1)

			if err != nil {
				return nil, err
			}

			fonds.Children = append(fonds.Children, u)
		}

		return fonds, nil
	}

	return unmarshalUnit(ctx, root, 0)
}

func unmarshalUnit(ctx context.Context, rsp gjson.Result, depth int) (*ArchivalUnit, error) {

	if depth > maxFeedDepth {
		return nil, fmt.Errorf("%w: hierarchy exceeds depth %d, assuming cyclic feed", ErrMalformedFeedEntry, maxFeedDepth)
	}

	if !rsp.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrMalformedFeedEntry, rsp.Type)
	}

	kind_rsp := rsp.Get("kind")

	if !kind_rsp.Exists() {
		return nil, fmt.Errorf("%w: missing kind", ErrMalformedFeedEntry)
	}

	kind, err := KindFromString(kind_rsp.String())

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeedEntry, err)
	}

	code_rsp := rsp.Get("id")

	if !code_rsp.Exists() || code_rsp.String() == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedFeedEntry)
	}

	u := &ArchivalUnit{
		Kind:      kind,
		Code:      code_rsp.String(),
		Title:     rsp.Get("title").String(),
		Date:      rsp.Get("date").String(),
		Permalink: rsp.Get("permalink").String(),
		METSID:    rsp.Get("metsid").String(),
	}

	scans_rsp := rsp.Get("scans")

	if scans_rsp.Exists() && len(scans_rsp.Array()) > 0 {

		switch kind {
		case File, Record:
			// pass
		default:
			return nil, fmt.Errorf("%w: %s unit '%s' carries scans", ErrMalformedFeedEntry, kind, u.Code)
		}

		for _, s := range scans_rsp.Array() {

			label_rsp := s.Get("label")
			origin_rsp := s.Get("origin")

			switch {
			case label_rsp.Exists():

				u.Scans = append(u.Scans, &Scan{
					Label:   label_rsp.String(),
					Service: s.Get("service").String(),
				})

			case origin_rsp.Exists():

				scan, err := ScanFromOrigin(ctx, origin_rsp.String(), s.Get("service").String())

				if err != nil {
					return nil, err
				}

				u.Scans = append(u.Scans, scan)

			default:
				return nil, fmt.Errorf("%w: scan in '%s' is missing label or origin", ErrMalformedFeedEntry, u.Code)
			}
		}
	}

	for _, c := range rsp.Get("children").Array() {

		child, err := unmarshalUnit(ctx, c, depth+1)

		if err != nil {
			return nil, err
		}

		if child.Code == u.Code && child.Kind == u.Kind {
			return nil, fmt.Errorf("%w: unit '%s' contains itself", ErrMalformedFeedEntry, u.Code)
		}

		u.Children = append(u.Children, child)
	}

	return u, nil
}
