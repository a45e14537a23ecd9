package domain

import (
	"strings"
	"time"
)

// MinYear is the earliest publication year accepted by the schema.
const MinYear = 1835

// MaxYear returns the latest accepted publication year (the current calendar year).
func MaxYear() int {
	return time.Now().Year()
}

// RawBlock is the ordered list of tag fragments of one corpus record.
type RawBlock []string

// AttributeMap is the parsed, not yet validated form of one record.
type AttributeMap struct {
	// Fields maps the lowercased attribute name to its value.
	Fields map[string]string
	// Names maps the lowercased attribute name to the name as written.
	Names map[string]string
	// Sources maps the lowercased attribute name to the raw fragment it came from.
	Sources map[string]string
	// Authors keeps author values in appearance order, duplicates included.
	Authors []string
}

// NewAttributeMap returns an empty map ready for use.
func NewAttributeMap() AttributeMap {
	return AttributeMap{
		Fields:  map[string]string{},
		Names:   map[string]string{},
		Sources: map[string]string{},
	}
}

// Title returns the title attribute, empty when absent.
func (m AttributeMap) Title() string {
	return m.Fields["title"]
}

// Set stores a scalar attribute together with its written name and source fragment.
func (m AttributeMap) Set(name, value, fragment string) {
	key := strings.ToLower(name)
	m.Fields[key] = value
	m.Names[key] = name
	m.Sources[key] = fragment
}

// Delete removes a scalar attribute.
func (m AttributeMap) Delete(key string) {
	delete(m.Fields, key)
	delete(m.Names, key)
	delete(m.Sources, key)
}

// Publication is a normalized bibliographic entry.
type Publication struct {
	ID int64
	// SourceKey is the corpus <ID> value, kept for diagnostics only.
	SourceKey string
	Title     string
	// Year is zero when unknown.
	Year    int
	Venue   string
	Pages   string
	Authors []string
}

// Author is a distinct author name.
type Author struct {
	ID   int64
	Name string
}

// Authorship links a publication to one of its authors.
type Authorship struct {
	PublicationID int64
	AuthorID      int64
}

// PublicationKey identifies publications by title, year and venue.
type PublicationKey struct {
	Title string
	Year  int
	Venue string
}

// Table names one relation of the schema.
type Table string

const (
	TablePublication Table = "publication"
	TableAuthor      Table = "author"
	TableWrittenBy   Table = "written_by"
)

// ParsedCorpus is the outcome of parsing one corpus file.
type ParsedCorpus struct {
	// Publications holds clean records first, then repaired ones.
	Publications []Publication
	// Rejected holds one error per record that could not be parsed or repaired.
	Rejected    []error
	EmptyBlocks int
	Repaired    int
}

// Valid reports whether t names a schema relation.
func (t Table) Valid() bool {
	switch t {
	case TablePublication, TableAuthor, TableWrittenBy:
		return true
	}
	return false
}
