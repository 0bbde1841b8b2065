package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalFeed(t *testing.T) {

	ctx := context.Background()

	body := []byte(`{
		"kind": "fonds",
		"id": "1.04.02",
		"title": "Verenigde Oost-Indische Compagnie (VOC)",
		"permalink": "https://hdl.handle.net/10648/x",
		"children": [
			{
				"kind": "series",
				"id": "A",
				"title": "Resoluties",
				"children": [
					{
						"kind": "file",
						"id": "1053",
						"title": "Kopie-resoluties",
						"date": "1625",
						"scans": [
							{"label": "NL-HaNA_1.04.02_1053_0001", "service": "https://example.org/iipsrv?IIIF=/1053_0001.jp2/info.json"},
							{"label": "NL-HaNA_1.04.02_1053_0002", "service": "https://example.org/iipsrv?IIIF=/1053_0002.jp2/info.json"}
						]
					}
				]
			}
		]
	}`)

	fonds, err := UnmarshalFeed(ctx, body)
	require.NoError(t, err)

	require.Equal(t, Fonds, fonds.Kind)
	require.Equal(t, "1.04.02", fonds.Code)
	require.Len(t, fonds.Children, 1)

	series := fonds.Children[0]
	require.Equal(t, Series, series.Kind)
	require.Len(t, series.Children, 1)

	file := series.Children[0]
	require.Equal(t, File, file.Kind)
	require.Equal(t, "1053", file.Code)
	require.Len(t, file.Scans, 2)
	require.Equal(t, "NL-HaNA_1.04.02_1053_0001", file.Scans[0].Label)
	require.Equal(t, "NL-HaNA_1.04.02_1053_0002", file.Scans[1].Label)
}

func TestUnmarshalFeedArrayRoot(t *testing.T) {

	ctx := context.Background()

	body := []byte(`[
		{"kind": "file", "id": "1053", "title": "a", "scans": [{"label": "s1"}]},
		{"kind": "file", "id": "1054", "title": "b", "scans": [{"label": "s2"}]}
	]`)

	fonds, err := UnmarshalFeed(ctx, body)
	require.NoError(t, err)

	require.Equal(t, Fonds, fonds.Kind)
	require.Len(t, fonds.Children, 2)
	require.Equal(t, "1053", fonds.Children[0].Code)
	require.Equal(t, "1054", fonds.Children[1].Code)
}

func TestUnmarshalFeedMalformed(t *testing.T) {

	ctx := context.Background()

	tests := map[string][]byte{
		"invalid JSON":    []byte(`{`),
		"missing kind":    []byte(`{"id": "x"}`),
		"unknown kind":    []byte(`{"kind": "shelf", "id": "x"}`),
		"missing id":      []byte(`{"kind": "file"}`),
		"scans on series": []byte(`{"kind": "series", "id": "A", "scans": [{"label": "s"}]}`),
		"scan sans label": []byte(`{"kind": "file", "id": "1053", "scans": [{"service": "x"}]}`),
		"self reference":  []byte(`{"kind": "series", "id": "A", "children": [{"kind": "series", "id": "A"}]}`),
	}

	for name, body := range tests {

		_, err := UnmarshalFeed(ctx, body)
		require.ErrorIs(t, err, ErrMalformedFeedEntry, name)
	}
}

func TestScanSequenceOrder(t *testing.T) {

	file := &ArchivalUnit{
		Kind: File,
		Code: "8400",
		Scans: []*Scan{
			{Label: "own_0001"},
		},
		Children: []*ArchivalUnit{
			{
				Kind:  Record,
				Code:  "r1",
				Scans: []*Scan{{Label: "r1_0001"}, {Label: "r1_0002"}},
			},
			{
				Kind:  Record,
				Code:  "r2",
				Scans: []*Scan{{Label: "r2_0001"}},
			},
		},
	}

	seq := file.ScanSequence()
	require.Len(t, seq, 4)

	labels := make([]string, len(seq))

	for i, s := range seq {
		labels[i] = s.Label
	}

	require.Equal(t, []string{"own_0001", "r1_0001", "r1_0002", "r2_0001"}, labels)
}
