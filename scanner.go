package edinet

import (
	"regexp"
	"strings"
)

// TaggedElement is one structured-data-bearing element found in a document.
// References are kept raw; Context and Unit are the resolved dictionary
// entries, nil when the reference does not resolve.
type TaggedElement struct {
	Element    Element  `json:"-"`
	Concept    string   `json:"concept,omitempty"`
	ContextRef string   `json:"contextRef,omitempty"`
	UnitRef    string   `json:"unitRef,omitempty"`
	Decimals   string   `json:"decimals,omitempty"`
	Scale      string   `json:"scale,omitempty"`
	Format     string   `json:"format,omitempty"`
	Context    *Context `json:"-"`
	Unit       *Unit    `json:"-"`
}

// inlineFactTags are the element names of the known inline tagging
// vocabularies for numeric and non-numeric facts.
var inlineFactTags = map[string]bool{
	"ix:nonfraction": true,
	"ix:nonnumeric":  true,
	"ix:fraction":    true,
	"nonfraction":    true,
	"nonnumeric":     true,
	"fraction":       true,
}

var qualifiedNamePattern = regexp.MustCompile(`^[A-Za-z][\w.-]*:\S+$`)

// ScanTaggedElements enumerates every element in the document that is
// plausibly structured-data-bearing: inline fact elements, anything with a
// contextRef, anything whose name attribute is namespace-qualified or
// matches a known taxonomy prefix, and anything whose scheme attribute
// references a structured-data scheme. Results are deduplicated by element
// identity; order follows document order.
func ScanTaggedElements(doc Document, contexts map[string]*Context, units map[string]*Unit) []TaggedElement {
	seen := make(map[Element]bool)
	var tagged []TaggedElement

	add := func(el Element) {
		if seen[el] {
			return
		}
		seen[el] = true
		tagged = append(tagged, newTaggedElement(el, contexts, units))
	}

	for _, el := range doc.FindAll(isTaggedElement) {
		add(el)
	}
	return tagged
}

func isTaggedElement(el Element) bool {
	if inlineFactTags[el.Tag()] {
		return true
	}
	if _, ok := el.Attr("contextref"); ok {
		return true
	}
	if name, ok := el.Attr("name"); ok {
		if qualifiedNamePattern.MatchString(name) || hasTaxonomyPrefix(name) {
			return true
		}
	}
	if scheme, ok := el.Attr("scheme"); ok {
		lower := strings.ToLower(scheme)
		if strings.Contains(lower, "xbrl") || strings.Contains(lower, "edinet") {
			return true
		}
	}
	return false
}

func hasTaxonomyPrefix(name string) bool {
	for _, p := range taxonomyPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func newTaggedElement(el Element, contexts map[string]*Context, units map[string]*Unit) TaggedElement {
	te := TaggedElement{Element: el}
	te.Concept, _ = el.Attr("name")
	te.ContextRef, _ = el.Attr("contextref")
	te.UnitRef, _ = el.Attr("unitref")
	te.Decimals, _ = el.Attr("decimals")
	te.Scale, _ = el.Attr("scale")
	te.Format, _ = el.Attr("format")

	if te.ContextRef != "" {
		te.Context = contexts[te.ContextRef]
	}
	if te.UnitRef != "" {
		te.Unit = units[te.UnitRef]
	}
	return te
}
