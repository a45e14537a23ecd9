package repair

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

// markupFragments are removed, in order, from the spurious key and its value.
var markupFragments = []string{"<i", "sup", "<sub", "<"}

// Heuristic rebuilds the title as value+key of the one spurious attribute.
type Heuristic struct{}

// Name identifies the strategy inside the registry.
func (Heuristic) Name() string {
	return "heuristic"
}

// Repair implements Strategy.
func (Heuristic) Repair(record domain.AttributeMap) (domain.AttributeMap, error) {
	out := clone(record)
	key, err := spuriousKey(out)
	if err != nil {
		return domain.AttributeMap{}, err
	}

	value := out.Fields[key]
	text := key
	if written, ok := out.Names[key]; ok && written != "" {
		text = written
	}
	if r, size := utf8.DecodeRuneInString(text); unicode.ToLower(r) == 'i' {
		text = text[size:]
	}

	for _, fragment := range markupFragments {
		value = strings.ReplaceAll(value, fragment, "")
		text = strings.ReplaceAll(text, fragment, "")
	}

	title := value + text
	if strings.TrimSpace(title) == "" {
		return domain.AttributeMap{}, apperr.ParseRejectionf("attribute %q repairs to an empty title", key)
	}

	out.Delete(key)
	out.Fields["title"] = title
	out.Names["title"] = "title"
	return out, nil
}
