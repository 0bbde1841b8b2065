package archive

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
)

type metsDocument struct {
	XMLName   xml.Name      `xml:"mets"`
	FileSec   metsFileSec   `xml:"fileSec"`
	StructMap metsStructMap `xml:"structMap"`
}

type metsFileSec struct {
	Groups []metsFileGrp `xml:"fileGrp"`
}

type metsFileGrp struct {
	Use   string     `xml:"USE,attr"`
	Files []metsFile `xml:"file"`
}

type metsFile struct {
	ID        string       `xml:"ID,attr"`
	Locations []metsFLocat `xml:"FLocat"`
}

type metsFLocat struct {
	LocType string `xml:"LOCTYPE,attr"`
	Href    string `xml:"href,attr"`
}

type metsStructMap struct {
	Divs []metsDiv `xml:"div"`
}

type metsDiv struct {
	ID    string    `xml:"ID,attr"`
	Label string    `xml:"LABEL,attr"`
	Divs  []metsDiv `xml:"div"`
}

// ResolveScans resolves a unit's scan sequence from a METS document
// stored in a cache bucket, under the key "{metsid}.xml". Scans are
// taken from the DISPLAY file group, in file order, with labels looked
// up in the structural map. Image service URIs are rewritten from the
// image server's /iip/ form to its IIIF endpoint.
func ResolveScans(ctx context.Context, bucket *blob.Bucket, metsid string) ([]*Scan, error) {

	if metsid == "" {
		return nil, nil
	}

	key := fmt.Sprintf("%s.xml", metsid)

	fh, err := bucket.NewReader(ctx, key, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to open METS document '%s', %w", key, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read METS document '%s', %w", key, err)
	}

	return parseMETS(body)
}

func parseMETS(body []byte) ([]*Scan, error) {

	var doc metsDocument

	err := xml.Unmarshal(body, &doc)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeedEntry, err)
	}

	labels := make(map[string]string)

	var index func(divs []metsDiv)

	index = func(divs []metsDiv) {

		for _, d := range divs {

			if d.ID != "" {
				parts := strings.Split(d.Label, "/")
				labels[d.ID] = parts[len(parts)-1]
			}

			index(d.Divs)
		}
	}

	index(doc.StructMap.Divs)

	scans := make([]*Scan, 0)

	for _, grp := range doc.FileSec.Groups {

		if grp.Use != "DISPLAY" {
			continue
		}

		for _, f := range grp.Files {

			// File IDs in the DISPLAY group carry an "IIP" suffix
			// that the structural map entries do not.

			file_id := strings.TrimSuffix(f.ID, "IIP")

			service := ""

			for _, loc := range f.Locations {

				if loc.LocType == "URL" {
					service = strings.Replace(loc.Href, "/iip/", "/iipsrv?IIIF=/", 1)
					break
				}
			}

			if service == "" {
				return nil, fmt.Errorf("%w: METS file '%s' has no URL location", ErrMalformedFeedEntry, f.ID)
			}

			label, ok := labels[file_id]

			if !ok {
				return nil, fmt.Errorf("%w: METS file '%s' is missing from the structural map", ErrMalformedFeedEntry, f.ID)
			}

			scans = append(scans, &Scan{
				Label:   label,
				Service: service,
			})
		}
	}

	return scans, nil
}
