package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRegister = `document_id,internal_id,title,year_creation_or_dispatch,inventory_number,scan_start,no_of_scans
TANAP-1004,1,Missive van gouverneur,1686,8400,https://example.org/file/NL-HaNA_1.04.02_8400_0123,9
TANAP-1005,2,Rapport,1687,8400,https://example.org/file/NL-HaNA_1.04.02_8400_0132,2
TANAP-1005,3,Rapport (vervolg),1687,8400,https://example.org/file/NL-HaNA_1.04.02_8400_0134,1
`

func TestParseDocumentRegister(t *testing.T) {

	opts := &DocumentRegisterOptions{
		ServiceTemplate: "https://example.org/iipsrv?IIIF=/{label}.jp2/info.json",
	}

	records, err := ParseDocumentRegister(strings.NewReader(testRegister), opts)
	require.NoError(t, err)

	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, Record, first.Kind)
	require.Equal(t, "TANAP-1004", first.Code)
	require.Equal(t, "Missive van gouverneur", first.Title)
	require.Equal(t, "1686", first.Date)

	require.Len(t, first.Scans, 9)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0123", first.Scans[0].Label)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0131", first.Scans[8].Label)
	require.Equal(t, "https://example.org/iipsrv?IIIF=/NL-HaNA_1.04.02_8400_0123.jp2/info.json", first.Scans[0].Service)

	// Two rows for the same document accumulate scans and titles.

	second := records[1]
	require.Equal(t, "TANAP-1005", second.Code)
	require.Equal(t, "Rapport; Rapport (vervolg)", second.Title)
	require.Len(t, second.Scans, 3)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0132", second.Scans[0].Label)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0134", second.Scans[2].Label)
}

func TestParseDocumentRegisterMissingColumn(t *testing.T) {

	body := "document_id,title\nTANAP-1004,x\n"

	_, err := ParseDocumentRegister(strings.NewReader(body), nil)
	require.ErrorIs(t, err, ErrMalformedFeedEntry)
}

func TestSynthesizeScans(t *testing.T) {

	scans, err := synthesizeScans("https://example.org/file/NL-HaNA_1.04.02_8400_0001", "3", "")
	require.NoError(t, err)

	require.Len(t, scans, 3)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0001", scans[0].Label)
	require.Equal(t, "NL-HaNA_1.04.02_8400_0003", scans[2].Label)
	require.Equal(t, "", scans[0].Service)

	_, err = synthesizeScans("", "1", "")
	require.ErrorIs(t, err, ErrMalformedFeedEntry)

	_, err = synthesizeScans("https://example.org/file/NL-HaNA", "1", "")
	require.ErrorIs(t, err, ErrMalformedFeedEntry)

	_, err = synthesizeScans("https://example.org/file/NL-HaNA_0001", "x", "")
	require.ErrorIs(t, err, ErrMalformedFeedEntry)
}
