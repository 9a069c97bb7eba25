package edinet

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func firstTable(t *testing.T, markup string) Element {
	t.Helper()
	doc, err := ParseSoup([]byte(markup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}
	tables := ElementsByTag(doc, "table")
	if len(tables) == 0 {
		t.Fatal("no table in fixture")
	}
	return tables[0]
}

func TestMapTableUntaggedFallback(t *testing.T) {
	table := firstTable(t, `<table>
		<tr><th>項目</th><th>当期</th></tr>
		<tr><td>資産</td><td>100</td></tr>
		<tr><td>負債</td><td>50</td></tr>
	</table>`)

	model := MapTable(table, "", nil, nil)

	wantHeader := []Cell{{Text: "項目"}, {Text: "当期"}}
	if diff := cmp.Diff(wantHeader, model.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	wantRows := [][]Cell{
		{{Text: "資産"}, {Text: "100"}},
		{{Text: "負債"}, {Text: "50"}},
	}
	if diff := cmp.Diff(wantRows, model.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if model.Type != TableBalanceSheet {
		t.Errorf("Type = %s, want balance_sheet", model.Type)
	}
	if model.Stats.TaggedCells != 0 {
		t.Errorf("TaggedCells = %d, want 0", model.Stats.TaggedCells)
	}
	if model.Stats.RowCount != 2 || model.Stats.ColumnCount != 2 {
		t.Errorf("stats = %+v", model.Stats)
	}
}

func TestMapTableTaggedCells(t *testing.T) {
	markup := `<html><body>
<xbrli:context id="CY"><xbrli:period><xbrli:instant>2026-03-31</xbrli:instant></xbrli:period></xbrli:context>
<xbrli:unit id="JPY"><xbrli:measure>iso4217:JPY</xbrli:measure></xbrli:unit>
<table>
	<tr><th>科目</th><th>当期</th></tr>
	<tr><td>資産合計</td><td><ix:nonfraction name="jppfs_cor:Assets" contextRef="CY" unitRef="JPY">1,000</ix:nonfraction></td></tr>
</table>
</body></html>`

	doc, err := ParseSoup([]byte(markup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}
	contexts := (&ContextResolver{Now: pinned(2026)}).Resolve(doc)
	units := ResolveUnits(doc)
	table := ElementsByTag(doc, "table")[0]

	model := MapTable(table, "貸借対照表", contexts, units)

	if model.Type != TableBalanceSheet {
		t.Errorf("Type = %s, want balance_sheet", model.Type)
	}
	if len(model.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(model.Rows))
	}
	cell := model.Rows[0][1]
	if cell.Text != "1,000" {
		t.Errorf("cell text = %q, want 1,000", cell.Text)
	}
	if cell.Tag == nil {
		t.Fatal("value cell not tagged")
	}
	if cell.Tag.Concept != "jppfs_cor:Assets" {
		t.Errorf("Concept = %q", cell.Tag.Concept)
	}
	if cell.Tag.Context == nil || cell.Tag.Context.FiscalYear != FiscalCurrent {
		t.Errorf("Context = %+v", cell.Tag.Context)
	}
	if cell.Tag.Unit == nil || cell.Tag.Unit.Symbol != "¥" {
		t.Errorf("Unit = %+v", cell.Tag.Unit)
	}

	if model.Stats.TaggedCells != 1 {
		t.Errorf("TaggedCells = %d, want 1", model.Stats.TaggedCells)
	}
	if diff := cmp.Diff([]string{"jppfs_cor:Assets"}, model.Stats.Concepts); diff != "" {
		t.Errorf("concepts mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(model.SourceHTML, "<table>") {
		t.Errorf("SourceHTML = %q, want sanitized table markup", model.SourceHTML)
	}
	if strings.Contains(model.SourceHTML, "ix:nonfraction") {
		t.Errorf("SourceHTML kept non-skeleton markup: %q", model.SourceHTML)
	}
}

func TestMapTableColspanExpansion(t *testing.T) {
	table := firstTable(t, `<table>
		<tr><th>科目</th><th colspan="2">金額</th></tr>
		<tr><td colspan="3">資産の部</td></tr>
		<tr><td>現金</td><td>10</td><td>20</td></tr>
	</table>`)

	model := MapTable(table, "", nil, nil)

	if model.Stats.ColumnCount != 3 {
		t.Fatalf("ColumnCount = %d, want 3", model.Stats.ColumnCount)
	}
	if len(model.Header) != 3 {
		t.Fatalf("header length = %d, want 3", len(model.Header))
	}
	if model.Header[1].Text != "金額" || model.Header[2].Text != "" {
		t.Errorf("header = %+v", model.Header)
	}
	section := model.Rows[0]
	if section[0].Text != "資産の部" || section[1].Text != "" || section[2].Text != "" {
		t.Errorf("section row = %+v", section)
	}
}

func TestMapTablePositionalHeader(t *testing.T) {
	// No th cells anywhere: the first row is the header by position.
	table := firstTable(t, `<table>
		<tr><td>科目名</td><td>前期末</td><td>当期末</td></tr>
		<tr><td>現金</td><td>10</td><td>20</td></tr>
	</table>`)

	model := MapTable(table, "", nil, nil)
	if len(model.Header) != 3 {
		t.Fatalf("header length = %d, want 3", len(model.Header))
	}
	if model.Header[0].Text != "科目名" {
		t.Errorf("header[0] = %q, positional header not used", model.Header[0].Text)
	}
	if len(model.Rows) != 1 {
		t.Errorf("got %d data rows, want 1", len(model.Rows))
	}
}

func TestMergeHeaderRowsFillOnly(t *testing.T) {
	table := firstTable(t, `<table>
		<tr><th>科目</th><th></th><th>当期</th></tr>
		<tr><th>部</th><th>前期</th><th>別名</th></tr>
		<tr><td>現金</td><td>10</td><td>20</td></tr>
	</table>`)

	model := MapTable(table, "", nil, nil)
	want := []Cell{{Text: "科目"}, {Text: "前期"}, {Text: "当期"}}
	if diff := cmp.Diff(want, model.Header); diff != "" {
		t.Errorf("merged header mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPeriodLabelFromContext(t *testing.T) {
	markup := `<html><body>
<xbrli:context id="CY"><xbrli:period><xbrli:instant>2026-03-31</xbrli:instant></xbrli:period></xbrli:context>
<xbrli:context id="PY"><xbrli:period><xbrli:instant>2024-03-31</xbrli:instant></xbrli:period></xbrli:context>
<table>
	<tr><th>科目</th><th><span contextRef="PY"></span></th><th><span contextRef="CY"></span></th></tr>
	<tr><td>現金</td><td>10</td><td>20</td></tr>
</table>
</body></html>`

	doc, err := ParseSoup([]byte(markup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}
	contexts := (&ContextResolver{Now: pinned(2026)}).Resolve(doc)
	table := ElementsByTag(doc, "table")[0]

	model := MapTable(table, "", contexts, nil)
	if got := model.Header[1].Text; got != labelPreviousPeriod {
		t.Errorf("header[1] = %q, want %q", got, labelPreviousPeriod)
	}
	if got := model.Header[2].Text; got != labelCurrentPeriod {
		t.Errorf("header[2] = %q, want %q", got, labelCurrentPeriod)
	}
}

func TestMapTableSyntheticHeader(t *testing.T) {
	// The positional header row carries no cells at all, so the localized
	// three-column header is substituted.
	table := firstTable(t, `<table>
		<tr></tr>
		<tr><td>現金</td><td>10</td><td>20</td></tr>
	</table>`)

	model := MapTable(table, "", nil, nil)
	want := []Cell{{Text: "科目"}, {Text: "前期"}, {Text: "当期"}}
	if diff := cmp.Diff(want, model.Header); diff != "" {
		t.Errorf("synthetic header mismatch (-want +got):\n%s", diff)
	}
}

func TestRaggedRowsArePadded(t *testing.T) {
	table := firstTable(t, `<table>
		<tr><th>a</th><th>b</th><th>c</th></tr>
		<tr><td>x</td></tr>
	</table>`)

	model := MapTable(table, "", nil, nil)
	if len(model.Rows[0]) != 3 {
		t.Errorf("short row padded to %d cells, want 3", len(model.Rows[0]))
	}
}
