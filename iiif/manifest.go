package iiif

import (
	"encoding/json"
)

// Manifest describes one logical object (an inventory or a document)
// as an ordered set of scan canvases.
type Manifest struct {
	Context  string      `json:"@context"`
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Label    Label       `json:"label"`
	Metadata []*KeyValue `json:"metadata,omitempty"`
	Rights   string      `json:"rights,omitempty"`
	Items    []*Canvas   `json:"items"`
}

// NewManifest returns an empty manifest with the Presentation 3
// context and the default rights statement.
func NewManifest(id string, label string) *Manifest {

	return &Manifest{
		Context: PresentationContext,
		ID:      id,
		Type:    "Manifest",
		Label:   NewLabel(label),
		Rights:  DefaultRights,
		Items:   make([]*Canvas, 0),
	}
}

// AppendCanvas adds a canvas at the end of the manifest's sequence.
func (m *Manifest) AppendCanvas(c *Canvas) {
	m.Items = append(m.Items, c)
}

// Reference returns the shallow member entry for this manifest.
func (m *Manifest) Reference() *Reference {

	return &Reference{
		ID:    m.ID,
		Type:  "Manifest",
		Label: m.Label,
	}
}

// MarshalIndent serializes the manifest with two-space indentation.
// Output is deterministic for a given manifest.
func (m *Manifest) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
