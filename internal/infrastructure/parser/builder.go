package parser

import (
	"fmt"
	"strings"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

const authorTag = "author"

// RecordError ties a rejection to the block it came from.
type RecordError struct {
	Block     int
	SourceKey string
	Err       error
}

func (e RecordError) Error() string {
	if e.SourceKey != "" {
		return fmt.Sprintf("block %d (id %s): %v", e.Block, e.SourceKey, e.Err)
	}
	return fmt.Sprintf("block %d: %v", e.Block, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Entry is a built record with the index of the block it came from.
type Entry struct {
	Block int
	Attrs domain.AttributeMap
}

// BuildResult partitions built records into clean ones, dirty ones that
// still need a title, and rejected blocks.
type BuildResult struct {
	Clean    []Entry
	Dirty    []Entry
	Rejected []RecordError
}

// Build converts fragment lists into attribute maps.
func Build(blocks []domain.RawBlock) BuildResult {
	var result BuildResult
	for i, block := range blocks {
		record, err := buildRecord(block)
		if err != nil {
			result.Rejected = append(result.Rejected, RecordError{Block: i, Err: err})
			continue
		}
		entry := Entry{Block: i, Attrs: record}
		if record.Title() != "" {
			result.Clean = append(result.Clean, entry)
		} else {
			result.Dirty = append(result.Dirty, entry)
		}
	}
	return result
}

func buildRecord(block domain.RawBlock) (domain.AttributeMap, error) {
	record := domain.NewAttributeMap()
	for _, fragment := range block {
		name, value, err := splitFragment(fragment)
		if err != nil {
			return domain.AttributeMap{}, err
		}
		if name == authorTag {
			record.Authors = append(record.Authors, value)
			continue
		}
		record.Set(name, value, fragment)
	}
	return record, nil
}

// splitFragment decomposes "<name>value</name>" into its name and value.
// Markup embedded in the value shifts the split point; the repairer deals
// with the spurious names this produces.
func splitFragment(fragment string) (string, string, error) {
	if len(fragment) < 2 {
		return "", "", apperr.ParseRejectionf("fragment %q is too short", fragment)
	}

	inner := fragment[1 : len(fragment)-1]
	_, rest, found := strings.Cut(inner, ">")
	if !found {
		return "", "", apperr.ParseRejectionf("fragment %q has no opening tag", fragment)
	}
	rest = strings.ReplaceAll(rest, ">", "")

	parts := strings.Split(rest, "</")
	if len(parts) < 2 {
		return "", "", apperr.ParseRejectionf("fragment %q has no closing tag", fragment)
	}

	return parts[1], parts[0], nil
}
