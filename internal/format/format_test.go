package format

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRows() []Row {
	return []Row{
		{PublicationID: 1, Title: "Alpha", Year: 2001, Venue: "VLDB", HasAuthor: true, AuthorID: 10, Author: "Ann"},
		{PublicationID: 1, Title: "Alpha", Year: 2001, Venue: "VLDB", HasAuthor: true, AuthorID: 11, Author: "Bo"},
		{PublicationID: 2, Title: "Beta", Year: 2002, Venue: "", HasAuthor: true, AuthorID: 10, Author: "Ann"},
		{PublicationID: 3, Title: "Gamma", Year: 2003, Venue: "SIGMOD"},
	}
}

func TestGroupByPublication(t *testing.T) {
	t.Parallel()

	listings := Group(sampleRows(), false)
	require.Len(t, listings, 3)

	assert.Equal(t, Listing{Title: "Alpha", Authors: []string{"Ann", "Bo"}, Year: 2001, Journal: "VLDB"}, listings[0])
	assert.Equal(t, []string{"Ann"}, listings[1].Authors)
	assert.Equal(t, "", listings[1].Journal)
	assert.NotNil(t, listings[2].Authors)
	assert.Empty(t, listings[2].Authors)
}

func TestGroupByAuthor(t *testing.T) {
	t.Parallel()

	listings := Group(sampleRows(), true)
	require.Len(t, listings, 4)
	assert.Equal(t, "Alpha", listings[0].Title)
	assert.Equal(t, []string{"Ann"}, listings[0].Authors)
	assert.Equal(t, "Alpha", listings[1].Title)
	assert.Equal(t, []string{"Bo"}, listings[1].Authors)
}

func TestEncodersRenderEmptyJournal(t *testing.T) {
	t.Parallel()

	results := Results{Total: 1, Items: []Listing{{Title: "Beta", Authors: []string{"Ann"}, Year: 2002}}}
	reg := NewRegistry()

	t.Run("json", func(t *testing.T) {
		enc, err := reg.Resolve("json")
		require.NoError(t, err)
		out, err := enc.Encode(results)
		require.NoError(t, err)

		var decoded struct {
			Total   int              `json:"total"`
			Results []map[string]any `json:"results"`
		}
		require.NoError(t, json.Unmarshal(out, &decoded))
		require.Len(t, decoded.Results, 1)
		journal, ok := decoded.Results[0]["journal"]
		require.True(t, ok, "journal key missing: %s", out)
		assert.Equal(t, "", journal)
		assert.Equal(t, 1, decoded.Total)
	})

	t.Run("yaml", func(t *testing.T) {
		enc, err := reg.Resolve("YAML")
		require.NoError(t, err)
		out, err := enc.Encode(results)
		require.NoError(t, err)

		var decoded struct {
			Results []map[string]any `yaml:"results"`
		}
		require.NoError(t, yaml.Unmarshal(out, &decoded))
		require.Len(t, decoded.Results, 1)
		journal, ok := decoded.Results[0]["journal"]
		require.True(t, ok, "journal key missing: %s", out)
		assert.Equal(t, "", journal)
	})

	t.Run("xml", func(t *testing.T) {
		enc, err := reg.Resolve("xml")
		require.NoError(t, err)
		out, err := enc.Encode(results)
		require.NoError(t, err)

		text := string(out)
		assert.Contains(t, text, "<booktitle></booktitle>")
		assert.Contains(t, text, "<authors>\n\t\t\t<author>Ann</author>\n\t\t</authors>")
		assert.True(t, strings.HasPrefix(text, xml.Header))

		var decoded markupDocument
		require.NoError(t, xml.Unmarshal(out, &decoded))
		require.Len(t, decoded.Pubs, 1)
		assert.Equal(t, 1, decoded.Total)
		assert.Equal(t, "Beta", decoded.Pubs[0].Title)
		assert.Equal(t, []string{"Ann"}, decoded.Pubs[0].Authors.Names)
	})
}

func TestMarkupKeepsAuthorsWrapper(t *testing.T) {
	t.Parallel()

	out, err := Markup{}.Encode(Results{Items: []Listing{{Title: "Solo"}}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<authors></authors>")
	assert.Contains(t, string(out), "<title>Solo</title>")
}

func TestJSONEmptyResults(t *testing.T) {
	t.Parallel()

	out, err := JSON{}.Encode(Results{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 0, "results": []}`, string(out))
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Resolve("csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json, xml, yaml")
}
