package edinet

import (
	"strings"
	"testing"
)

const sampleMarkup = `<html><body>
<div id="wrap">
	<h2>財務諸表</h2>
	<table class="fs">
		<tr><th>科目</th><th>当期</th></tr>
		<tr><td>資産</td><td><span contextRef="CurrentYearInstant">100</span></td></tr>
	</table>
</div>
</body></html>`

func parseBoth(t *testing.T, markup string) map[string]Document {
	t.Helper()
	dom, err := ParseDocument([]byte(markup))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	soup, err := ParseSoup([]byte(markup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}
	return map[string]Document{"dom": dom, "soup": soup}
}

func TestBackendsAgreeOnStructure(t *testing.T) {
	for name, doc := range parseBoth(t, sampleMarkup) {
		t.Run(name, func(t *testing.T) {
			tables := ElementsByTag(doc, "table")
			if len(tables) != 1 {
				t.Fatalf("got %d tables, want 1", len(tables))
			}
			if cls, _ := tables[0].Attr("class"); cls != "fs" {
				t.Errorf("table class = %q, want fs", cls)
			}

			rows := tableRows(tables[0])
			if len(rows) != 2 {
				t.Fatalf("got %d rows, want 2", len(rows))
			}
			cells := rowCells(rows[0])
			if len(cells) != 2 {
				t.Fatalf("got %d header cells, want 2", len(cells))
			}
			if got := CleanText(cells[0].Text()); got != "科目" {
				t.Errorf("first header cell = %q, want 科目", got)
			}

			refs := ElementsWithAttr(doc, "contextref")
			if len(refs) != 1 {
				t.Fatalf("got %d contextref elements, want 1", len(refs))
			}
			if ref, _ := refs[0].Attr("contextref"); ref != "CurrentYearInstant" {
				t.Errorf("contextref = %q", ref)
			}
		})
	}
}

func TestAttrLookupIsCaseInsensitive(t *testing.T) {
	for name, doc := range parseBoth(t, `<p CONTEXTREF="C1">x</p>`) {
		t.Run(name, func(t *testing.T) {
			els := ElementsWithAttr(doc, "contextref")
			if len(els) != 1 {
				t.Fatalf("got %d elements, want 1", len(els))
			}
			if v, ok := els[0].Attr("ContextRef"); !ok || v != "C1" {
				t.Errorf("Attr(ContextRef) = %q, %v", v, ok)
			}
		})
	}
}

func TestSiblingNavigation(t *testing.T) {
	markup := `<div><h3>注記</h3> text <table><tr><td>a</td></tr></table><p>after</p></div>`
	for name, doc := range parseBoth(t, markup) {
		t.Run(name, func(t *testing.T) {
			tables := ElementsByTag(doc, "table")
			if len(tables) != 1 {
				t.Fatalf("got %d tables, want 1", len(tables))
			}
			prev := tables[0].PrevSibling()
			if prev == nil || prev.Tag() != "h3" {
				t.Fatalf("PrevSibling = %v, want h3", prev)
			}
			next := tables[0].NextSibling()
			if next == nil || next.Tag() != "p" {
				t.Fatalf("NextSibling = %v, want p", next)
			}
			if parent := tables[0].Parent(); parent == nil || parent.Tag() != "div" {
				t.Fatalf("Parent = %v, want div", parent)
			}
		})
	}
}

func TestSoupToleratesUnbalancedTags(t *testing.T) {
	markup := `<div><span>open<ix:nonfraction name="jppfs_cor:Assets" contextRef="C1">100</ix:nonfraction></div>`
	doc, err := ParseSoup([]byte(markup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}
	facts := ElementsByTag(doc, "ix:nonfraction")
	if len(facts) != 1 {
		t.Fatalf("got %d ix:nonfraction elements, want 1", len(facts))
	}
	if got := facts[0].Text(); got != "100" {
		t.Errorf("fact text = %q, want 100", got)
	}
	// The unclosed span must not swallow the div close.
	divs := ElementsByTag(doc, "div")
	if len(divs) != 1 {
		t.Fatalf("got %d divs, want 1", len(divs))
	}
}

func TestElementHTMLRoundTrip(t *testing.T) {
	for name, doc := range parseBoth(t, `<table><tr><td colspan="2">x</td></tr></table>`) {
		t.Run(name, func(t *testing.T) {
			tables := ElementsByTag(doc, "table")
			if len(tables) != 1 {
				t.Fatalf("got %d tables, want 1", len(tables))
			}
			markup := tables[0].HTML()
			if !strings.Contains(markup, "<table") || !strings.Contains(markup, "colspan") {
				t.Errorf("HTML() = %q, want table markup with colspan", markup)
			}
		})
	}
}
