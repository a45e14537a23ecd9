package format

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"gopkg.in/yaml.v3"
)

// JSON encodes results as nested key/value objects.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Encode(results Results) ([]byte, error) {
	results.Items = nonNil(results.Items)
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return out, nil
}

// YAML encodes results with the same keys as JSON.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Encode(results Results) ([]byte, error) {
	results.Items = nonNil(results.Items)
	out, err := yaml.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return out, nil
}

// Markup encodes results in the corpus tag layout:
// <pub><title/><authors><author/>...</authors><year/><booktitle/></pub>.
type Markup struct{}

func (Markup) Name() string { return "xml" }

type markupDocument struct {
	XMLName xml.Name    `xml:"publications"`
	Total   int         `xml:"total,attr"`
	Pubs    []markupPub `xml:"pub"`
}

type markupPub struct {
	Title   string        `xml:"title"`
	Authors markupAuthors `xml:"authors"`
	Year    int           `xml:"year"`
	Venue   string        `xml:"booktitle"`
}

type markupAuthors struct {
	Names []string `xml:"author"`
}

func (Markup) Encode(results Results) ([]byte, error) {
	doc := markupDocument{Total: results.Total, Pubs: make([]markupPub, 0, len(results.Items))}
	for _, item := range results.Items {
		doc.Pubs = append(doc.Pubs, markupPub{
			Title:   item.Title,
			Authors: markupAuthors{Names: item.Authors},
			Year:    item.Year,
			Venue:   item.Journal,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal markup: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func nonNil(items []Listing) []Listing {
	if items == nil {
		return []Listing{}
	}
	for i := range items {
		if items[i].Authors == nil {
			items[i].Authors = []string{}
		}
	}
	return items
}
