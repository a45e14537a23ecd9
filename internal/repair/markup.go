package repair

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

// Markup re-reads the raw title fragment as HTML and keeps its text content,
// so sub/superscript and italic tags are dropped without losing letters.
type Markup struct{}

// Name identifies the strategy inside the registry.
func (Markup) Name() string {
	return "markup"
}

// Repair implements Strategy.
func (Markup) Repair(record domain.AttributeMap) (domain.AttributeMap, error) {
	out := clone(record)
	key, err := spuriousKey(out)
	if err != nil {
		return domain.AttributeMap{}, err
	}

	fragment, ok := out.Sources[key]
	if !ok {
		return domain.AttributeMap{}, apperr.ParseRejectionf("attribute %q has no source fragment", key)
	}

	title, err := fragmentText(fragment)
	if err != nil {
		return domain.AttributeMap{}, apperr.ParseRejectionf("attribute %q: %v", key, err)
	}
	if title == "" {
		return domain.AttributeMap{}, apperr.ParseRejectionf("attribute %q repairs to an empty title", key)
	}

	out.Delete(key)
	out.Fields["title"] = title
	out.Names["title"] = "title"
	return out, nil
}

// fragmentText extracts the text between the outer tag pair of a fragment.
func fragmentText(fragment string) (string, error) {
	start := strings.Index(fragment, ">")
	end := strings.LastIndex(fragment, "</")
	if start < 0 || end <= start {
		return "", apperr.ParseRejectionf("fragment %q has no enclosing tags", fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + fragment[start+1:end] + "</div>"))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Find("div").First().Text()), " "), nil
}
