// Package iiif defines the subset of the IIIF Presentation API (v3)
// document model that the grouping scheme populates: manifests,
// collections, canvases and their annotation plumbing. Field order is
// fixed so that serializing the same structure twice yields the same
// bytes.
package iiif

// PresentationContext is the JSON-LD context for IIIF Presentation 3 documents.
const PresentationContext = "http://iiif.io/api/presentation/3/context.json"

// ImageServiceProfile is the compliance profile advertised for scan image services.
const ImageServiceProfile = "http://iiif.io/api/image/2/level1.json"

// DefaultRights is the rights statement applied to manifests unless overridden.
const DefaultRights = "https://creativecommons.org/publicdomain/mark/1.0/"

// Label is a IIIF language map. Values are marshaled with sorted keys
// so labels serialize deterministically.
type Label map[string][]string

// NewLabel returns a single-value English language map.
func NewLabel(v string) Label {
	return Label{"en": []string{v}}
}

// KeyValue is a single metadata entry (the prezi "KeyValueString" shape).
type KeyValue struct {
	Label Label `json:"label"`
	Value Label `json:"value"`
}

// NewKeyValue returns a metadata entry with English values. Empty
// values are recorded as "?" so that every entry remains visible.
func NewKeyValue(label string, values ...string) *KeyValue {

	if len(values) == 0 {
		values = []string{""}
	}

	filled := make([]string, len(values))

	for i, v := range values {

		if v == "" {
			v = "?"
		}

		filled[i] = v
	}

	return &KeyValue{
		Label: NewLabel(label),
		Value: Label{"en": filled},
	}
}

// NewPermalinkValue returns a "Permalink" metadata entry with the URI
// wrapped in an anchor, matching how archival viewers expect it.
func NewPermalinkValue(uris ...string) *KeyValue {

	values := make([]string, len(uris))

	for i, u := range uris {

		if u == "" {
			values[i] = "?"
			continue
		}

		values[i] = "<a href=\"" + u + "\">" + u + "</a>"
	}

	return NewKeyValue("Permalink", values...)
}

// Reference is a shallow {id, type, label} entry used for collection
// members.
type Reference struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label Label  `json:"label,omitempty"`
}
