// Package edinet extracts structured financial-statement data from Japanese
// EDINET-style filings: HTML documents carrying inline XBRL tags interleaved
// with ordinary markup and plain tables. Extraction is best-effort and never
// fatal: malformed input degrades to an empty result, not an error.
package edinet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Element is the capability set the extraction pipeline needs from a parsed
// document node. Both backends (full tree parser and tag-soup walker)
// implement it, so extraction logic is written once.
type Element interface {
	// Tag returns the lowercased tag name, including any namespace prefix
	// (e.g. "ix:nonfraction").
	Tag() string
	// Attr returns an attribute value by lowercased name.
	Attr(name string) (string, bool)
	// Attrs returns all attributes in document order.
	Attrs() []Attribute
	// Text returns the concatenated text content of the subtree.
	Text() string
	// Children returns the element children in document order.
	Children() []Element
	// Parent returns the parent element, or nil at the root.
	Parent() Element
	// PrevSibling and NextSibling skip text nodes.
	PrevSibling() Element
	NextSibling() Element
	// HTML renders the subtree as markup.
	HTML() string
}

// Attribute is a single element attribute. Keys are lowercased.
type Attribute struct {
	Key string
	Val string
}

// Document is a parsed filing.
type Document interface {
	// Root returns the document root element.
	Root() Element
	// FindAll returns every descendant element matching the predicate, in
	// document order.
	FindAll(match func(Element) bool) []Element
}

// ElementsByTag returns all elements with one of the given tag names.
func ElementsByTag(doc Document, names ...string) []Element {
	return doc.FindAll(func(e Element) bool {
		for _, n := range names {
			if e.Tag() == n {
				return true
			}
		}
		return false
	})
}

// ElementsWithAttr returns all elements carrying the named attribute.
func ElementsWithAttr(doc Document, name string) []Element {
	return doc.FindAll(func(e Element) bool {
		_, ok := e.Attr(name)
		return ok
	})
}

// ---------------------------------------------------------------------------
// Backend 1: full tree parser over x/net/html.
// ---------------------------------------------------------------------------

type domDocument struct {
	root *html.Node
}

type domElement struct {
	n *html.Node
}

// ParseDocument parses markup with the full HTML5 tree builder. It is the
// primary backend: lenient about tag soup, and it reparents stray content the
// way a browser would.
func ParseDocument(data []byte) (Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &domDocument{root: root}, nil
}

func (d *domDocument) Root() Element { return domElement{n: d.root} }

func (d *domDocument) FindAll(match func(Element) bool) []Element {
	var out []Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			e := domElement{n: n}
			if match(e) {
				out = append(out, e)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

func (e domElement) Tag() string {
	return strings.ToLower(e.n.Data)
}

func (e domElement) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (e domElement) Attrs() []Attribute {
	out := make([]Attribute, 0, len(e.n.Attr))
	for _, a := range e.n.Attr {
		out = append(out, Attribute{Key: strings.ToLower(a.Key), Val: a.Val})
	}
	return out
}

func (e domElement) Text() string {
	var buf strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return buf.String()
}

func (e domElement) Children() []Element {
	var out []Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, domElement{n: c})
		}
	}
	return out
}

func (e domElement) Parent() Element {
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return domElement{n: p}
		}
	}
	return nil
}

func (e domElement) PrevSibling() Element {
	for s := e.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return domElement{n: s}
		}
	}
	return nil
}

func (e domElement) NextSibling() Element {
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return domElement{n: s}
		}
	}
	return nil
}

func (e domElement) HTML() string {
	var buf strings.Builder
	if err := html.Render(&buf, e.n); err != nil {
		return ""
	}
	return buf.String()
}

// ---------------------------------------------------------------------------
// Backend 2: tag-soup walker over the streaming tokenizer.
// ---------------------------------------------------------------------------

// soupNode is a minimal tree node built from the token stream. Unlike the
// tree builder, the tokenizer does not reparent content, which keeps
// namespaced iXBRL elements exactly where the filing put them.
type soupNode struct {
	tag      string // empty for text nodes
	text     string
	attrs    []Attribute
	parent   *soupNode
	children []*soupNode
}

type soupDocument struct {
	root *soupNode
}

type soupElement struct {
	n *soupNode
}

// ParseSoup parses markup with the streaming tokenizer into a lightweight
// tree. It tolerates unbalanced and unknown tags by closing the nearest open
// element with a matching name, or ignoring the close tag entirely.
func ParseSoup(data []byte) (Document, error) {
	z := html.NewTokenizer(bytes.NewReader(data))
	root := &soupNode{tag: "#root"}
	cur := root

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return &soupDocument{root: root}, nil
			}
			return nil, fmt.Errorf("tokenizing document: %w", z.Err())

		case html.TextToken:
			text := string(z.Text())
			if strings.TrimSpace(text) != "" {
				cur.children = append(cur.children, &soupNode{text: text, parent: cur})
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			n := &soupNode{tag: strings.ToLower(string(name)), parent: cur}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				n.attrs = append(n.attrs, Attribute{Key: strings.ToLower(string(k)), Val: string(v)})
			}
			cur.children = append(cur.children, n)
			if tt == html.StartTagToken && !voidTag(n.tag) {
				cur = n
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := strings.ToLower(string(name))
			for n := cur; n != nil; n = n.parent {
				if n.tag == tag {
					if n.parent != nil {
						cur = n.parent
					}
					break
				}
			}
		}
	}
}

func voidTag(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "col", "area", "base", "embed", "source", "track", "wbr":
		return true
	}
	return false
}

func (d *soupDocument) Root() Element { return soupElement{n: d.root} }

func (d *soupDocument) FindAll(match func(Element) bool) []Element {
	var out []Element
	var walk func(n *soupNode)
	walk = func(n *soupNode) {
		if n.tag != "" && n.tag != "#root" {
			e := soupElement{n: n}
			if match(e) {
				out = append(out, e)
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

func (e soupElement) Tag() string { return e.n.tag }

func (e soupElement) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.n.attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e soupElement) Attrs() []Attribute { return e.n.attrs }

func (e soupElement) Text() string {
	var buf strings.Builder
	var walk func(n *soupNode)
	walk = func(n *soupNode) {
		if n.tag == "" {
			buf.WriteString(n.text)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(e.n)
	return buf.String()
}

func (e soupElement) Children() []Element {
	var out []Element
	for _, c := range e.n.children {
		if c.tag != "" {
			out = append(out, soupElement{n: c})
		}
	}
	return out
}

func (e soupElement) Parent() Element {
	if e.n.parent == nil || e.n.parent.tag == "#root" {
		return nil
	}
	return soupElement{n: e.n.parent}
}

func (e soupElement) PrevSibling() Element {
	sibs := e.siblings()
	for i, s := range sibs {
		if s == e.n {
			for j := i - 1; j >= 0; j-- {
				if sibs[j].tag != "" {
					return soupElement{n: sibs[j]}
				}
			}
			break
		}
	}
	return nil
}

func (e soupElement) NextSibling() Element {
	sibs := e.siblings()
	for i, s := range sibs {
		if s == e.n {
			for j := i + 1; j < len(sibs); j++ {
				if sibs[j].tag != "" {
					return soupElement{n: sibs[j]}
				}
			}
			break
		}
	}
	return nil
}

func (e soupElement) siblings() []*soupNode {
	if e.n.parent == nil {
		return nil
	}
	return e.n.parent.children
}

func (e soupElement) HTML() string {
	var buf strings.Builder
	var render func(n *soupNode)
	render = func(n *soupNode) {
		if n.tag == "" {
			buf.WriteString(n.text)
			return
		}
		if n.tag != "#root" {
			buf.WriteString("<" + n.tag)
			for _, a := range n.attrs {
				buf.WriteString(fmt.Sprintf(" %s=%q", a.Key, a.Val))
			}
			buf.WriteString(">")
		}
		for _, c := range n.children {
			render(c)
		}
		if n.tag != "#root" && !voidTag(n.tag) {
			buf.WriteString("</" + n.tag + ">")
		}
	}
	render(e.n)
	return buf.String()
}
