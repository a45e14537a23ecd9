package parser

import (
	"strconv"
	"strings"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
	"PublicationIndex/internal/repair"
)

// Parse runs tokenizer, builder and repairer over corpus text.
func Parse(text string, strategy repair.Strategy) domain.ParsedCorpus {
	blocks, empty := Tokenize(text)
	built := Build(blocks)

	result := domain.ParsedCorpus{EmptyBlocks: empty}
	for _, rejected := range built.Rejected {
		result.Rejected = append(result.Rejected, rejected)
	}

	for _, entry := range built.Clean {
		pub, err := toPublication(entry.Attrs)
		if err != nil {
			result.Rejected = append(result.Rejected, recordError(entry, err))
			continue
		}
		result.Publications = append(result.Publications, pub)
	}

	for _, entry := range built.Dirty {
		repaired, err := strategy.Repair(entry.Attrs)
		if err == nil {
			var pub domain.Publication
			pub, err = toPublication(repaired)
			if err == nil {
				result.Publications = append(result.Publications, pub)
				result.Repaired++
				continue
			}
		}
		result.Rejected = append(result.Rejected, recordError(entry, err))
	}

	return result
}

func recordError(entry Entry, err error) RecordError {
	return RecordError{Block: entry.Block, SourceKey: entry.Attrs.Fields["id"], Err: err}
}

func toPublication(record domain.AttributeMap) (domain.Publication, error) {
	pub := domain.Publication{
		SourceKey: record.Fields["id"],
		Title:     record.Title(),
		Venue:     record.Fields["booktitle"],
		Pages:     record.Fields["pages"],
		Authors:   append([]string(nil), record.Authors...),
	}
	if pub.Venue == "" {
		pub.Venue = record.Fields["journal"]
	}

	if raw := strings.TrimSpace(record.Fields["year"]); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Publication{}, apperr.ParseRejectionf("record %q has non-numeric year %q", pub.Title, raw)
		}
		pub.Year = year
	}

	return pub, nil
}
