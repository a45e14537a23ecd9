// Package format reshapes catalog join rows into listings and encodes them.
package format

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one (publication, author) row of the joined relation.
type Row struct {
	PublicationID int64
	Title         string
	Year          int
	Venue         string
	Pages         string
	// HasAuthor is false for publications without any authorship link.
	HasAuthor bool
	AuthorID  int64
	Author    string
}

// Listing is one grouped result: a publication with its authors, or in
// author mode one author row of a publication.
type Listing struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`
	Year    int      `json:"year" yaml:"year"`
	Journal string   `json:"journal" yaml:"journal"`
}

// Results is a query answer: the window of listings plus the total number of
// distinct matching publications.
type Results struct {
	Total int       `json:"total" yaml:"total"`
	Items []Listing `json:"results" yaml:"results"`
}

// Group folds join rows into listings. Rows for one publication need not be
// adjacent; listings keep the order of each publication's first row.
func Group(rows []Row, byAuthor bool) []Listing {
	listings := make([]Listing, 0, len(rows))
	if byAuthor {
		for _, row := range rows {
			listing := newListing(row)
			if row.HasAuthor {
				listing.Authors = append(listing.Authors, row.Author)
			}
			listings = append(listings, listing)
		}
		return listings
	}

	index := map[int64]int{}
	for _, row := range rows {
		pos, ok := index[row.PublicationID]
		if !ok {
			pos = len(listings)
			index[row.PublicationID] = pos
			listings = append(listings, newListing(row))
		}
		if row.HasAuthor {
			listings[pos].Authors = append(listings[pos].Authors, row.Author)
		}
	}
	return listings
}

func newListing(row Row) Listing {
	return Listing{
		Title:   row.Title,
		Authors: []string{},
		Year:    row.Year,
		Journal: row.Venue,
	}
}

// Encoder renders results in one output encoding.
type Encoder interface {
	Name() string
	Encode(results Results) ([]byte, error)
}

// Registry holds the available encoders.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry returns a registry with the json, xml and yaml encoders.
func NewRegistry() *Registry {
	r := &Registry{encoders: map[string]Encoder{}}
	r.Register(JSON{})
	r.Register(Markup{})
	r.Register(YAML{})
	return r
}

// Register adds or replaces an encoder.
func (r *Registry) Register(e Encoder) {
	r.encoders[e.Name()] = e
}

// Resolve returns the encoder for name, case-insensitively.
func (r *Registry) Resolve(name string) (Encoder, error) {
	if e, ok := r.encoders[strings.ToLower(name)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("unknown output format %q (available: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered encoder names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
