package parser

import (
	"strings"

	"PublicationIndex/internal/domain"
)

const (
	recordOpen     = "<pub>"
	recordClose    = "</pub>"
	authorsOpen    = "<authors>"
	authorsClose   = "</authors>"
	fieldSeparator = "\t"
)

// structuralNoise is removed from the corpus before it is split into records.
var structuralNoise = []string{"\r", "\n", recordOpen, authorsOpen, authorsClose}

// Tokenize splits corpus text into per-record fragment lists.
// It returns the blocks and the number of blocks dropped because no
// fragment survived separator splitting.
func Tokenize(text string) ([]domain.RawBlock, int) {
	for _, noise := range structuralNoise {
		text = strings.ReplaceAll(text, noise, "")
	}

	var (
		blocks  []domain.RawBlock
		dropped int
	)
	records := strings.Split(text, recordClose)
	for i, record := range records {
		var block domain.RawBlock
		for _, fragment := range strings.Split(record, fieldSeparator) {
			if strings.TrimSpace(fragment) == "" {
				continue
			}
			block = append(block, fragment)
		}
		if len(block) == 0 {
			// The segment after the final </pub> is not a record.
			if i < len(records)-1 {
				dropped++
			}
			continue
		}
		blocks = append(blocks, block)
	}

	return blocks, dropped
}
