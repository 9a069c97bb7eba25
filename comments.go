package edinet

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CommentSection is one annotation/footnote section found outside the table
// pipeline: a heading plus the text that follows it.
type CommentSection struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	RelatedItems []string `json:"relatedItems,omitempty"`
}

// ExtractComments scans h2-h4 headings for annotation vocabulary (notes,
// accounting policy, segment, business). Each matching heading starts a
// section whose content is the text of every following sibling node, element
// or bare text, up to the next h2-h4. It operates on raw markup,
// independently of the tables pipeline, and returns nil rather than failing
// on unparseable input.
func ExtractComments(markup string) []CommentSection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var sections []CommentSection
	doc.Find("h2, h3, h4").Each(func(i int, heading *goquery.Selection) {
		title := CleanText(heading.Text())
		if !containsAnyFold(title, annotationKeywords) {
			return
		}

		content := sectionContent(heading.Get(0))

		id, ok := heading.Attr("id")
		if !ok || id == "" {
			id = fmt.Sprintf("note-%d", len(sections)+1)
		}

		sections = append(sections, CommentSection{
			ID:           id,
			Title:        title,
			Content:      content,
			RelatedItems: relatedFinancialTerms(content),
		})
	})
	return sections
}

// sectionContent concatenates the text of every sibling node after the
// heading, stopping before the next h2-h4. Bare text siblings count the same
// as elements.
func sectionContent(heading *html.Node) string {
	var buf strings.Builder
	for n := heading.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && isSectionHeading(n.Data) {
			break
		}
		buf.WriteString(nodeText(n))
	}
	return CleanText(buf.String())
}

func isSectionHeading(tag string) bool {
	switch strings.ToLower(tag) {
	case "h2", "h3", "h4":
		return true
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(nodeText(c))
	}
	return buf.String()
}

// relatedFinancialTerms returns the fixed-vocabulary line-item names that
// appear verbatim in the text, each at most once, in vocabulary order.
func relatedFinancialTerms(text string) []string {
	var items []string
	lower := strings.ToLower(text)
	for _, term := range financialTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			items = append(items, term)
		}
	}
	return items
}
