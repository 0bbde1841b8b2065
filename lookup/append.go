package lookup

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/tidwall/gjson"
)

// Dimensions records the pixel size of a single scan.
type Dimensions struct {
	Height int
	Width  int
}

// AppendLookupFunc reads a dimension document and stores its entries in
// the lookup map.
type AppendLookupFunc func(context.Context, *sync.Map, io.ReadCloser) error

// DimensionsAppendLookupFunc reads a height/width document of the form
// {"SCAN_NAME": {"h": 2480, "w": 3508}, ...} and stores one Dimensions
// entry per scan name.
func DimensionsAppendLookupFunc(ctx context.Context, lu *sync.Map, fh io.ReadCloser) error {

	body, err := io.ReadAll(fh)

	if err != nil {
		return err
	}

	if !gjson.ValidBytes(body) {
		return fmt.Errorf("Invalid dimensions document")
	}

	var append_err error

	gjson.ParseBytes(body).ForEach(func(key gjson.Result, value gjson.Result) bool {

		h_rsp := value.Get("h")
		w_rsp := value.Get("w")

		if !h_rsp.Exists() || !w_rsp.Exists() {
			log.Printf("Missing height or width for %s, skipping\n", key.String())
			return true
		}

		d := Dimensions{
			Height: int(h_rsp.Int()),
			Width:  int(w_rsp.Int()),
		}

		_, exists := lu.LoadOrStore(key.String(), d)

		if exists {
			append_err = fmt.Errorf("Existing dimensions key for %s", key.String())
			return false
		}

		return true
	})

	return append_err
}
