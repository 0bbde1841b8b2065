package archive

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/globalise-huygens/go-iiif-manifests/common"
	"github.com/tidwall/gjson"
)

// There is no EAD (or general-purpose XML mapping) package in the Go
// ecosystem that understands the finding aid layout used by the Dutch
// national archives so this is a hand-rolled encoding/xml mapping of
// the handful of elements the hierarchy needs.

type eadDocument struct {
	XMLName  xml.Name    `xml:"ead"`
	Header   eadHeader   `xml:"eadheader"`
	ArchDesc eadArchDesc `xml:"archdesc"`
}

type eadHeader struct {
	EADID       eadEADID `xml:"eadid"`
	TitleProper string   `xml:"filedesc>titlestmt>titleproper"`
}

type eadEADID struct {
	URL   string `xml:"url,attr"`
	Value string `xml:",chardata"`
}

type eadArchDesc struct {
	Dsc eadDsc `xml:"dsc"`
}

type eadDsc struct {
	Components []eadComponent `xml:"c"`
}

type eadComponent struct {
	Level      string         `xml:"level,attr"`
	OtherLevel string         `xml:"otherlevel,attr"`
	Did        eadDid         `xml:"did"`
	Children   []eadComponent `xml:"c"`
}

type eadDid struct {
	UnitIDs   []eadUnitID  `xml:"unitid"`
	UnitTitle eadUnitTitle `xml:"unittitle"`
	UnitDate  *eadUnitDate `xml:"unitdate"`
	DAO       *eadDAO      `xml:"dao"`
}

type eadUnitID struct {
	Type       string `xml:"type,attr"`
	Identifier string `xml:"identifier,attr"`
	Value      string `xml:",chardata"`
}

type eadUnitTitle struct {
	Text     string       `xml:",chardata"`
	UnitDate *eadUnitDate `xml:"unitdate"`
}

type eadUnitDate struct {
	Normal string `xml:"normal,attr"`
	Text   string `xml:"text,attr"`
	Value  string `xml:",chardata"`
}

type eadDAO struct {
	Href string `xml:"href,attr"`
}

// FilterSet restricts an EAD parse to a selection of inventory numbers.
// A nil or empty FilterSet admits everything.
type FilterSet map[string]bool

// LoadFilterSet reads a JSON array of inventory numbers from a
// whosonfirst/go-reader source.
func LoadFilterSet(ctx context.Context, reader_uri string, path string) (FilterSet, error) {

	r, err := common.NewReader(ctx, reader_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for filter set, %w", err)
	}

	fh, err := r.Read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to read filter set '%s', %w", path, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read filter set body, %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Filter set '%s' is not valid JSON", path)
	}

	fs := make(FilterSet)

	for _, code := range gjson.ParseBytes(body).Array() {
		fs[code.String()] = true
	}

	return fs, nil
}

func (fs FilterSet) admits(code string) bool {

	if len(fs) == 0 {
		return true
	}

	return fs[code]
}

// LoadEAD reads an EAD finding aid from a whosonfirst/go-reader source
// and parses it in to an ArchivalUnit tree.
func LoadEAD(ctx context.Context, reader_uri string, path string, filter FilterSet) (*ArchivalUnit, error) {

	r, err := common.NewReader(ctx, reader_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for EAD source, %w", err)
	}

	fh, err := r.Read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to read EAD document '%s', %w", path, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read EAD body, %w", err)
	}

	return ParseEAD(body, filter)
}

// ParseEAD parses an EAD finding aid in to an ArchivalUnit tree rooted
// at the fonds. Series are collected at any depth; file (inventory)
// units are restricted to the filter set when one is supplied.
func ParseEAD(body []byte, filter FilterSet) (*ArchivalUnit, error) {

	var doc eadDocument

	err := xml.Unmarshal(body, &doc)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeedEntry, err)
	}

	if doc.Header.EADID.Value == "" {
		return nil, fmt.Errorf("%w: EAD document is missing eadid", ErrMalformedFeedEntry)
	}

	fonds := &ArchivalUnit{
		Kind:      Fonds,
		Code:      strings.TrimSpace(doc.Header.EADID.Value),
		Title:     collapseWhitespace(doc.Header.TitleProper),
		Permalink: doc.Header.EADID.URL,
	}

	for _, el := range collectSeries(doc.ArchDesc.Dsc.Components) {

		s := parseSeries(el, filter)

		if s != nil {
			fonds.Children = append(fonds.Children, s)
		}
	}

	return fonds, nil
}

// collectSeries gathers series components at any depth, without
// descending in to a series once found.
func collectSeries(els []eadComponent) []eadComponent {

	series := make([]eadComponent, 0)

	for _, el := range els {

		if el.Level == "series" {
			series = append(series, el)
			continue
		}

		series = append(series, collectSeries(el.Children)...)
	}

	return series
}

func parseSeries(el eadComponent, filter FilterSet) *ArchivalUnit {

	title := collapseWhitespace(el.Did.UnitTitle.Text)

	code := title

	for _, uid := range el.Did.UnitIDs {

		if uid.Type == "series_code" {
			code = strings.ReplaceAll(strings.TrimSpace(uid.Value), "/", "-")
			break
		}
	}

	s := &ArchivalUnit{
		Kind:  Series,
		Code:  code,
		Title: title,
	}

	s.Children = parseParts(el.Children, filter)
	return s
}

func parseParts(els []eadComponent, filter FilterSet) []*ArchivalUnit {

	parts := make([]*ArchivalUnit, 0)

	for _, el := range els {

		var u *ArchivalUnit

		switch {
		case el.Level == "file":
			u = parseFile(el, filter)
		case el.OtherLevel == "filegrp":
			u = parseFileGroup(el, filter)
		case el.Level == "subseries":
			u = parseSeries(el, filter)
		default:
			continue
		}

		if u != nil {
			parts = append(parts, u)
		}
	}

	return parts
}

func parseFileGroup(el eadComponent, filter FilterSet) *ArchivalUnit {

	code := ""

	if len(el.Did.UnitIDs) > 0 {
		code = strings.TrimSpace(el.Did.UnitIDs[0].Value)
	}

	grp := &ArchivalUnit{
		Kind:  Series,
		Code:  code,
		Title: collapseWhitespace(el.Did.UnitTitle.Text),
		Date:  dateFromUnitDate(el.Did.UnitDate),
	}

	grp.Children = parseParts(el.Children, filter)
	return grp
}

func parseFile(el eadComponent, filter FilterSet) *ArchivalUnit {

	code := ""
	permalink := ""

	for _, uid := range el.Did.UnitIDs {

		if uid.Identifier != "" && code == "" {
			code = strings.TrimSpace(uid.Value)
		}

		if uid.Type == "handle" {
			permalink = strings.TrimSpace(uid.Value)
		}
	}

	// Inventory units without an identifier have nothing digitized to
	// point at, same for units outside the selection.

	if code == "" {
		return nil
	}

	if !filter.admits(code) {
		return nil
	}

	metsid := ""

	if el.Did.DAO != nil {

		parts := strings.Split(el.Did.DAO.Href, "/")
		metsid = parts[len(parts)-1]
	}

	title := collapseWhitespace(el.Did.UnitTitle.Text)

	return &ArchivalUnit{
		Kind:      File,
		Code:      code,
		Title:     title,
		Date:      dateFromUnitDate(el.Did.UnitTitle.UnitDate),
		Permalink: permalink,
		METSID:    metsid,
	}
}

func dateFromUnitDate(d *eadUnitDate) string {

	if d == nil {
		return ""
	}

	if d.Normal != "" {
		return d.Normal
	}

	if d.Text != "" {
		return d.Text
	}

	return strings.TrimSpace(d.Value)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
