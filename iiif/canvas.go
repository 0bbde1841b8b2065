package iiif

import (
	"fmt"
	"strings"
)

// DefaultCanvasSize is the placeholder dimension used when a scan's
// real height and width are not known at build time. Dimension data,
// when available, is patched in at publish time.
const DefaultCanvasSize = 100

type Service struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Profile string `json:"profile"`
}

type Resource struct {
	ID      string     `json:"id"`
	Type    string     `json:"type"`
	Format  string     `json:"format,omitempty"`
	Height  int        `json:"height,omitempty"`
	Width   int        `json:"width,omitempty"`
	Service []*Service `json:"service,omitempty"`
}

type Annotation struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Motivation string    `json:"motivation"`
	Body       *Resource `json:"body"`
	Target     string    `json:"target"`
}

type AnnotationPage struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Items []*Annotation `json:"items"`
}

type Canvas struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Label  Label             `json:"label,omitempty"`
	Height int               `json:"height"`
	Width  int               `json:"width"`
	Items  []*AnnotationPage `json:"items"`
}

// NewImageCanvas assembles the canvas / annotation page / painting
// annotation sandwich for the n-th scan (1-indexed) of a manifest.
// Identifiers follow the "{manifest}/canvas/p{n}" layout.
func NewImageCanvas(manifest_id string, n int, label string, service_info string, height int, width int) *Canvas {

	canvas_id := fmt.Sprintf("%s/canvas/p%d", manifest_id, n)
	page_id := fmt.Sprintf("%s/annotationpage", canvas_id)
	anno_id := fmt.Sprintf("%s/anno", canvas_id)

	if height <= 0 {
		height = DefaultCanvasSize
	}

	if width <= 0 {
		width = DefaultCanvasSize
	}

	body := &Resource{
		Type:   "Image",
		Format: "image/jpeg",
		Height: height,
		Width:  width,
	}

	if service_info != "" {

		service_id := strings.TrimSuffix(service_info, "/info.json")

		body.ID = fmt.Sprintf("%s/full/full/0/default.jpg", service_id)

		body.Service = []*Service{
			&Service{
				ID:      service_id,
				Type:    "ImageService2",
				Profile: ImageServiceProfile,
			},
		}
	}

	anno := &Annotation{
		ID:         anno_id,
		Type:       "Annotation",
		Motivation: "painting",
		Body:       body,
		Target:     canvas_id,
	}

	page := &AnnotationPage{
		ID:    page_id,
		Type:  "AnnotationPage",
		Items: []*Annotation{anno},
	}

	c := &Canvas{
		ID:     canvas_id,
		Type:   "Canvas",
		Height: height,
		Width:  width,
		Items:  []*AnnotationPage{page},
	}

	if label != "" {
		c.Label = NewLabel(label)
	}

	return c
}
