package iiif

import (
	"encoding/json"
)

// Collection groups manifests and/or other collections. Members are
// stored as shallow references, in the order they were added.
type Collection struct {
	Context  string       `json:"@context"`
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Label    Label        `json:"label"`
	Metadata []*KeyValue  `json:"metadata,omitempty"`
	Items    []*Reference `json:"items"`
}

// NewCollection returns an empty collection with the Presentation 3 context.
func NewCollection(id string, label string) *Collection {

	return &Collection{
		Context: PresentationContext,
		ID:      id,
		Type:    "Collection",
		Label:   NewLabel(label),
		Items:   make([]*Reference, 0),
	}
}

// AppendMember adds a member reference at the end of the collection.
func (c *Collection) AppendMember(r *Reference) {
	c.Items = append(c.Items, r)
}

// Reference returns the shallow member entry for this collection.
func (c *Collection) Reference() *Reference {

	return &Reference{
		ID:    c.ID,
		Type:  "Collection",
		Label: c.Label,
	}
}

// MarshalIndent serializes the collection with two-space indentation.
// Output is deterministic for a given collection.
func (c *Collection) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
