package publish

import (
	"fmt"
	"sync"

	"github.com/globalise-huygens/go-iiif-manifests/lookup"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyDimensions rewrites the placeholder canvas and image-body
// dimensions in a serialized manifest with real pixel sizes from a
// lookup map keyed by scan base name (the canvas label). Canvases
// without an entry keep their placeholder size. Collection documents
// pass through untouched.
func ApplyDimensions(body []byte, lu *sync.Map) ([]byte, error) {

	if gjson.GetBytes(body, "type").String() != "Manifest" {
		return body, nil
	}

	var apply_err error

	gjson.GetBytes(body, "items").ForEach(func(idx gjson.Result, canvas gjson.Result) bool {

		label := canvas.Get("label.en.0").String()

		if label == "" {
			return true
		}

		v, ok := lu.Load(label)

		if !ok {
			return true
		}

		d, ok := v.(lookup.Dimensions)

		if !ok {
			apply_err = fmt.Errorf("Unexpected lookup value for '%s'", label)
			return false
		}

		updates := map[string]int{
			fmt.Sprintf("items.%d.height", idx.Int()):                      d.Height,
			fmt.Sprintf("items.%d.width", idx.Int()):                       d.Width,
			fmt.Sprintf("items.%d.items.0.items.0.body.height", idx.Int()): d.Height,
			fmt.Sprintf("items.%d.items.0.items.0.body.width", idx.Int()):  d.Width,
		}

		for path, value := range updates {

			body, apply_err = sjson.SetBytes(body, path, value)

			if apply_err != nil {
				apply_err = fmt.Errorf("Failed to set %s, %w", path, apply_err)
				return false
			}
		}

		return true
	})

	if apply_err != nil {
		return nil, apply_err
	}

	return body, nil
}
