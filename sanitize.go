package edinet

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Three sanitizer strengths for display-safe output. None of them lets a
// failure escape: each falls back to the next-safer behavior it documents.

// tableAllowTags is the allow-list for the table-skeleton mode.
var tableAllowTags = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true,
	"tr": true, "th": true, "td": true, "caption": true, "br": true,
}

// htmlAllowTags is the allow-list for the enhanced mode.
var htmlAllowTags = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true,
	"tr": true, "th": true, "td": true, "caption": true,
	"p": true, "br": true, "div": true, "span": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"strong": true, "em": true, "b": true, "i": true,
}

// safeDataAttrs are the structured-data attributes kept on namespaced
// elements in the enhanced mode.
var safeDataAttrs = map[string]bool{
	"contextref": true, "unitref": true, "name": true,
	"decimals": true, "scale": true, "format": true, "sign": true, "id": true,
}

// safeStyleProps are the style declarations kept by the enhanced mode.
var safeStyleProps = map[string]bool{
	"text-align": true, "vertical-align": true, "width": true,
	"border": true, "border-collapse": true, "padding": true, "margin": true,
	"font-weight": true, "font-size": true, "color": true,
	"background-color": true, "text-indent": true,
}

var tagPattern = regexp.MustCompile(`(?s)<[^>]*>`)

// StripTags removes all markup and returns plain text. Input without any
// tag-like substring is returned unchanged.
func StripTags(markup string) string {
	if !strings.Contains(markup, "<") {
		return markup
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(tagPattern.ReplaceAllString(markup, " "))
	}
	text := doc.Text()
	// Entity-decoded text can reintroduce tag-like substrings.
	text = tagPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SanitizeTable keeps only table-skeleton markup: allow-listed opening tags
// are emitted with every attribute stripped, allow-listed closing tags are
// kept verbatim, and everything else is dropped with its content left in
// place, unwrapped.
func SanitizeTable(markup string) string {
	return tagPattern.ReplaceAllStringFunc(markup, func(m string) string {
		inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(m, "<"), ">"))
		if inner == "" || strings.HasPrefix(inner, "!") || strings.HasPrefix(inner, "?") {
			return ""
		}
		if strings.HasPrefix(inner, "/") {
			name := strings.ToLower(strings.TrimSpace(inner[1:]))
			if tableAllowTags[name] {
				return m
			}
			return ""
		}
		fields := strings.Fields(strings.TrimSuffix(inner, "/"))
		if len(fields) == 0 {
			return ""
		}
		name := strings.ToLower(fields[0])
		if tableAllowTags[name] {
			return "<" + name + ">"
		}
		return ""
	})
}

// SanitizeHTML is the enhanced mode. Namespaced structured-data elements
// stay with their attributes cut down to tagging metadata. Every other
// element outside the allow-list is unwrapped: the tag goes, its text
// content and any allow-listed descendants stay in place. That applies to
// script and style elements too, so their literal text survives as plain
// text. Style attributes on kept elements are filtered to safe declarations.
// On any internal failure the original input is returned unchanged; callers
// must treat that as "not sanitized".
func SanitizeHTML(markup string) (out string) {
	out = markup
	defer func() {
		if recover() != nil {
			out = markup
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	// Reverse document order processes children before their parents, so
	// unwrapping never detaches a node that is still pending.
	var elems []*html.Node
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		elems = append(elems, s.Get(0))
	})
	for i := len(elems) - 1; i >= 0; i-- {
		n := elems[i]
		tag := strings.ToLower(n.Data)
		switch tag {
		case "html", "head", "body":
			continue
		}

		// Namespaced structured-data elements stay, with attributes cut down
		// to the tagging metadata.
		if strings.Contains(tag, ":") {
			n.Attr = filterAttrs(n.Attr, func(key string) bool {
				return safeDataAttrs[strings.ToLower(key)]
			})
			continue
		}

		if !htmlAllowTags[tag] {
			unwrapNode(n)
			continue
		}

		filterStyleAttr(n)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return markup
	}
	inner, err := body.Html()
	if err != nil {
		return markup
	}
	return strings.TrimSpace(inner)
}

// unwrapNode replaces an element with its own children, leaving the content
// in place.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func filterAttrs(attrs []html.Attribute, keep func(key string) bool) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if keep(a.Key) {
			out = append(out, a)
		}
	}
	return out
}

// filterStyleAttr keeps only safe style declarations, removing the style
// attribute entirely when nothing survives.
func filterStyleAttr(n *html.Node) {
	for i, a := range n.Attr {
		if strings.ToLower(a.Key) != "style" {
			continue
		}
		kept := filterStyleValue(a.Val)
		if kept == "" {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
		} else {
			n.Attr[i].Val = kept
		}
		return
	}
}

func filterStyleValue(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.TrimSpace(parts[1])
		if safeStyleProps[prop] && val != "" {
			kept = append(kept, prop+": "+val)
		}
	}
	return strings.Join(kept, "; ")
}
