package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/globalise-huygens/go-iiif-manifests/common"
	"github.com/globalise-huygens/go-iiif-manifests/operations/build"
	"github.com/whosonfirst/go-ioutil"
	"github.com/whosonfirst/go-writer/v3"
)

// ErrDuplicateIdentifier is returned when two documents in the same
// run resolve to the same output path. Output is write-once per
// identifier; a collision means the build produced conflicting
// documents.
var ErrDuplicateIdentifier = errors.New("Duplicate document identifier")

// Publisher writes built documents through a whosonfirst/go-writer
// instance. It is safe for concurrent use: writes are serialized per
// distinct identifier and a second write to the same identifier fails.
type Publisher struct {
	// An optional lookup map (scan base name -> lookup.Dimensions)
	// used to patch real canvas dimensions in to manifests before
	// they are written.
	Dimensions *sync.Map

	// Ignore a second publish of an already-written identifier
	// instead of failing. The first write stands; this is how a
	// collection tree pass re-references manifests published by an
	// earlier inventories pass.
	SkipDuplicates bool

	wr        writer.Writer
	published *sync.Map
}

// NewPublisher returns a Publisher writing through the
// whosonfirst/go-writer instance indicated by writer_uri.
func NewPublisher(ctx context.Context, writer_uri string) (*Publisher, error) {

	wr, err := common.NewWriter(ctx, writer_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create writer for publisher, %w", err)
	}

	return NewPublisherWithWriter(ctx, wr)
}

func NewPublisherWithWriter(ctx context.Context, wr writer.Writer) (*Publisher, error) {

	p := &Publisher{
		wr:        wr,
		published: new(sync.Map),
	}

	return p, nil
}

// Publish writes one document. Publishing the same path twice in a
// run fails with ErrDuplicateIdentifier; publishing a byte-identical
// body under the same path is still a duplicate, since a correct
// build emits each identifier exactly once.
func (p *Publisher) Publish(ctx context.Context, doc *build.Document) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		// pass
	}

	body := doc.Body

	if p.Dimensions != nil {

		patched, err := ApplyDimensions(body, p.Dimensions)

		if err != nil {
			return fmt.Errorf("Failed to apply dimensions to '%s', %w", doc.Path, err)
		}

		body = patched
	}

	checksum := common.Checksum(body)

	logger := slog.Default()
	logger = logger.With("path", doc.Path)

	_, exists := p.published.LoadOrStore(doc.Path, checksum)

	if exists {

		if p.SkipDuplicates {
			logger.Debug("Already published, skipping")
			return nil
		}

		return fmt.Errorf("%w: '%s'", ErrDuplicateIdentifier, doc.Path)
	}

	br := bytes.NewReader(body)

	fh, err := ioutil.NewReadSeekCloser(br)

	if err != nil {
		p.published.Delete(doc.Path)
		return fmt.Errorf("Failed to create ReadSeekCloser for '%s', %w", doc.Path, err)
	}

	_, err = p.wr.Write(ctx, doc.Path, fh)

	if err != nil {
		// The path never landed so a retry in the same run is allowed.
		p.published.Delete(doc.Path)
		return fmt.Errorf("Failed to write '%s', %w", doc.Path, err)
	}

	logger.Debug("Published document", "checksum", checksum)
	return nil
}

// Published returns the number of documents written so far.
func (p *Publisher) Published() int {

	count := 0

	p.published.Range(func(k interface{}, v interface{}) bool {
		count += 1
		return true
	})

	return count
}
