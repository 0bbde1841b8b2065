package build

import (
	"context"
	"fmt"
	"testing"

	"github.com/globalise-huygens/go-iiif-manifests/archive"
	"github.com/globalise-huygens/go-iiif-manifests/iiif"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func testBuilder() *Builder {

	return &Builder{
		ManifestBaseURL:   "https://example.org/manifests/",
		CollectionBaseURL: "https://example.org/collections/",
	}
}

func testScans(label_prefix string, count int) []*archive.Scan {

	scans := make([]*archive.Scan, count)

	for i := 0; i < count; i++ {
		scans[i] = &archive.Scan{
			Label:   fmt.Sprintf("%s_%04d", label_prefix, i+1),
			Service: fmt.Sprintf("https://example.org/iipsrv?IIIF=/%s_%04d.jp2/info.json", label_prefix, i+1),
		}
	}

	return scans
}

func TestBuildRecordManifest(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	unit := &archive.ArchivalUnit{
		Kind:      archive.Record,
		Code:      "TANAP-1004",
		Title:     "Missive van gouverneur",
		Date:      "1686",
		Permalink: "https://hdl.handle.net/10648/1004",
		Scans:     testScans("NL-HaNA_1.04.02_8400", 9),
	}

	m, err := b.BuildManifest(ctx, unit, RecordGranularity)
	require.NoError(t, err)

	require.Equal(t, "https://example.org/manifests/documents/TANAP-1004.json", m.ID)
	require.Equal(t, "TANAP-1004 - Missive van gouverneur", m.Label["en"][0])

	require.Len(t, m.Items, 9)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0001", m.Items[0].Label["en"][0])
	require.Equal(t, "NL-HaNA_1.04.02_8400_0009", m.Items[8].Label["en"][0])
	require.Equal(t, m.ID+"/canvas/p1", m.Items[0].ID)
	require.Equal(t, m.ID+"/canvas/p9", m.Items[8].ID)

	body, err := m.MarshalIndent()
	require.NoError(t, err)

	require.Equal(t, "TANAP-1004", gjson.GetBytes(body, "metadata.0.value.en.0").String())
	require.Equal(t, "1686", gjson.GetBytes(body, "metadata.2.value.en.0").String())
}

func TestBuildFileManifestConcatenatesRecords(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	r1 := &archive.ArchivalUnit{
		Kind:  archive.Record,
		Code:  "TANAP-1004",
		Scans: testScans("a", 100),
	}

	r2 := &archive.ArchivalUnit{
		Kind:  archive.Record,
		Code:  "TANAP-1005",
		Scans: testScans("b", 100),
	}

	unit := &archive.ArchivalUnit{
		Kind:     archive.File,
		Code:     "8400",
		Title:    "Overgekomen brieven en papieren",
		Scans:    testScans("own", 8),
		Children: []*archive.ArchivalUnit{r1, r2},
	}

	m, err := b.BuildManifest(ctx, unit, FileGranularity)
	require.NoError(t, err)

	require.Equal(t, "https://example.org/manifests/inventories/8400.json", m.ID)
	require.Len(t, m.Items, 208)

	// Source order is preserved: the file's own scans then each
	// record's, in record order.

	require.Equal(t, "own_0001", m.Items[0].Label["en"][0])
	require.Equal(t, "a_0001", m.Items[8].Label["en"][0])
	require.Equal(t, "b_0100", m.Items[207].Label["en"][0])
}

func TestBuildManifestGranularityMismatch(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	file := &archive.ArchivalUnit{
		Kind:  archive.File,
		Code:  "1053",
		Scans: testScans("x", 1),
	}

	_, err := b.BuildManifest(ctx, file, RecordGranularity)
	require.ErrorIs(t, err, ErrUnsupportedGranularity)

	record := &archive.ArchivalUnit{
		Kind:  archive.Record,
		Code:  "TANAP-1004",
		Scans: testScans("x", 1),
	}

	_, err = b.BuildManifest(ctx, record, FileGranularity)
	require.ErrorIs(t, err, ErrUnsupportedGranularity)

	series := &archive.ArchivalUnit{
		Kind: archive.Series,
		Code: "A",
	}

	_, err = b.BuildManifest(ctx, series, FileGranularity)
	require.ErrorIs(t, err, ErrUnsupportedGranularity)
}

func TestBuildManifestEmptyScanSet(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	unit := &archive.ArchivalUnit{
		Kind: archive.File,
		Code: "1055",
	}

	_, err := b.BuildManifest(ctx, unit, FileGranularity)
	require.ErrorIs(t, err, ErrEmptyScanSet)
}

func TestBuildManifestMETSFallback(t *testing.T) {

	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	defer bucket.Close()

	mets := `<mets xmlns="http://www.loc.gov/METS/">
  <fileSec>
    <fileGrp USE="DISPLAY">
      <file ID="f1IIP">
        <FLocat LOCTYPE="URL" href="https://example.org/iip/scan_0001.jp2/info.json"/>
      </file>
    </fileGrp>
  </fileSec>
  <structMap>
    <div><div ID="f1" LABEL="archief/NL-HaNA_1.04.02_1053_0001"/></div>
  </structMap>
</mets>`

	err = bucket.WriteAll(ctx, "abc-123.xml", []byte(mets), nil)
	require.NoError(t, err)

	b := testBuilder()
	b.METSCache = bucket

	unit := &archive.ArchivalUnit{
		Kind:   archive.File,
		Code:   "1053",
		METSID: "abc-123",
	}

	m, err := b.BuildManifest(ctx, unit, FileGranularity)
	require.NoError(t, err)

	require.Len(t, m.Items, 1)
	require.Equal(t, "NL-HaNA_1.04.02_1053_0001", m.Items[0].Label["en"][0])
}

func TestBuildAggregateManifest(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	units := []*archive.ArchivalUnit{
		{
			Kind:      archive.File,
			Code:      "1053",
			Title:     "Kopie-resoluties",
			Date:      "1625",
			Permalink: "https://hdl.handle.net/10648/a",
		},
		{
			Kind:      archive.File,
			Code:      "1053",
			Title:     "Kopie-resoluties (vervolg)",
			Date:      "1626",
			Permalink: "https://hdl.handle.net/10648/b",
			Scans:     testScans("x", 2),
		},
	}

	m, err := b.BuildAggregateManifest(ctx, "1053", units, "inventories/")
	require.NoError(t, err)

	require.Equal(t, "https://example.org/manifests/inventories/1053.json", m.ID)
	require.Equal(t, "Inventory 1053", m.Label["en"][0])
	require.Len(t, m.Items, 2)

	body, err := m.MarshalIndent()
	require.NoError(t, err)

	require.Equal(t, "Titles", gjson.GetBytes(body, "metadata.1.label.en.0").String())
	require.Equal(t, int64(2), gjson.GetBytes(body, "metadata.1.value.en.#").Int())
	require.Equal(t, "Kopie-resoluties (vervolg)", gjson.GetBytes(body, "metadata.1.value.en.1").String())
	require.Equal(t, "1625", gjson.GetBytes(body, "metadata.2.value.en.0").String())
}

func TestBuildAggregateManifestConcatenatesScans(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	// Both listings of the inventory carry their own scans; the
	// aggregate holds all of them, in listing order.

	units := []*archive.ArchivalUnit{
		{Kind: archive.File, Code: "1053", Title: "Deel 1", Scans: testScans("a", 2)},
		{Kind: archive.File, Code: "1053", Title: "Deel 2", Scans: testScans("b", 3)},
	}

	m, err := b.BuildAggregateManifest(ctx, "1053", units, "inventories/")
	require.NoError(t, err)

	require.Len(t, m.Items, 5)
	require.Equal(t, "a_0001", m.Items[0].Label["en"][0])
	require.Equal(t, "a_0002", m.Items[1].Label["en"][0])
	require.Equal(t, "b_0001", m.Items[2].Label["en"][0])
	require.Equal(t, "b_0003", m.Items[4].Label["en"][0])
}

func TestBuildCollection(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	codes := []string{"1053", "1054", "1055"}
	members := make([]Member, 0, len(codes))

	for _, code := range codes {

		unit := &archive.ArchivalUnit{
			Kind:  archive.File,
			Code:  code,
			Scans: testScans(code, 1),
		}

		m, err := b.BuildManifest(ctx, unit, FileGranularity)
		require.NoError(t, err)

		members = append(members, m)
	}

	series := &archive.ArchivalUnit{
		Kind:  archive.Series,
		Code:  "A",
		Title: "Resoluties",
	}

	c, err := b.BuildCollection(ctx, series, members, InventoryGroup)
	require.NoError(t, err)

	require.Equal(t, "https://example.org/collections/A.json", c.ID)
	require.Len(t, c.Items, 3)

	for i, code := range codes {
		require.Equal(t, fmt.Sprintf("https://example.org/manifests/inventories/%s.json", code), c.Items[i].ID)
		require.Equal(t, "Manifest", c.Items[i].Type)
	}
}

func TestBuildCollectionGroupingMismatch(t *testing.T) {

	ctx := context.Background()
	b := testBuilder()

	unit := &archive.ArchivalUnit{
		Kind:  archive.File,
		Code:  "1053",
		Scans: testScans("x", 1),
	}

	m, err := b.BuildManifest(ctx, unit, FileGranularity)
	require.NoError(t, err)

	series := &archive.ArchivalUnit{Kind: archive.Series, Code: "A"}

	// A series-of-series collection never contains manifests directly.

	_, err = b.BuildCollection(ctx, series, []Member{m}, SeriesOfSeries)
	require.ErrorIs(t, err, ErrGroupingKindMismatch)

	_, err = b.BuildCollection(ctx, series, []Member{m}, GroupingKind("bunch"))
	require.ErrorIs(t, err, ErrGroupingKindMismatch)

	// Nested collections inside the narrower groupings are a policy
	// decision.

	sub := iiif.NewCollection("https://example.org/collections/B.json", "B")

	_, err = b.BuildCollection(ctx, series, []Member{sub}, InventoryGroup)
	require.ErrorIs(t, err, ErrGroupingKindMismatch)

	b.NestedCollections = true

	_, err = b.BuildCollection(ctx, series, []Member{sub}, InventoryGroup)
	require.NoError(t, err)
}

func TestDocumentPath(t *testing.T) {

	require.Equal(t, "inventories/1053.json", DocumentPath("inventories/", "1053"))
	require.Equal(t, "1.04.02/A+B.json", DocumentPath("1.04.02/", "A B"))
}
