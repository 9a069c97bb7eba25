package edinet

import (
	"sort"
	"strconv"
)

// Cell is one logical table cell. Tag is nil for untagged cells and for
// placeholder cells created by colspan expansion.
type Cell struct {
	Text string         `json:"text"`
	Tag  *TaggedElement `json:"tag,omitempty"`
}

// TableStats summarizes a mapped table.
type TableStats struct {
	RowCount    int      `json:"rowCount"`
	ColumnCount int      `json:"columnCount"`
	EmptyCells  int      `json:"emptyCells"`
	TaggedCells int      `json:"taggedCells"`
	Concepts    []string `json:"concepts,omitempty"`
}

// TableModel is a classified financial table with per-cell provenance.
type TableModel struct {
	Header     []Cell     `json:"header"`
	Rows       [][]Cell   `json:"rows"`
	Type       TableType  `json:"tableType"`
	Title      string     `json:"title,omitempty"`
	SourceHTML string     `json:"sourceHtml,omitempty"`
	Stats      TableStats `json:"stats"`
}

// Localized default labels for period header cells that carry tag metadata
// but no text.
const (
	labelCurrentPeriod  = "当期"
	labelPreviousPeriod = "前期"
)

// syntheticHeader is substituted when the document supplies no header cells
// at all.
var syntheticHeader = []string{"科目", "前期", "当期"}

// MapTable builds a TableModel from one table element, resolving tag
// metadata through the context and unit dictionaries. When the table carries
// no tags anywhere this is automatically the fallback path: all tag fields
// stay nil and the table type comes from text keywords alone.
func MapTable(table Element, title string, contexts map[string]*Context, units map[string]*Unit) *TableModel {
	model := &TableModel{Title: title, Type: TableUnknown}

	rows := tableRows(table)
	headerRows, dataRows := splitHeaderRows(rows)

	header := mergeHeaderRows(headerRows, contexts, units)
	for i := range header {
		applyDefaultPeriodLabel(&header[i])
	}

	var body [][]Cell
	for _, row := range dataRows {
		body = append(body, expandRow(row, contexts, units))
	}

	// Pad every row to a consistent column count; never drop cells.
	columns := len(header)
	for _, row := range body {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if len(header) == 0 && columns > 0 {
		// No header cells anywhere: substitute the synthetic three-column
		// header.
		for _, label := range syntheticHeader {
			header = append(header, Cell{Text: label})
		}
		if len(header) > columns {
			columns = len(header)
		}
	}
	header = padCells(header, columns)
	for i := range body {
		body[i] = padCells(body[i], columns)
	}

	model.Header = header
	model.Rows = body
	model.Stats = computeStats(header, body, columns)
	model.Type = classifyMappedTable(table, title)
	model.SourceHTML = SanitizeTable(table.HTML())
	return model
}

// splitHeaderRows partitions rows into header and data rows. Any row with a
// th cell is a header row; if none qualifies, the first row is the header.
func splitHeaderRows(rows []Element) (header, data []Element) {
	for _, row := range rows {
		if rowHasHeaderCell(row) {
			header = append(header, row)
		} else {
			data = append(data, row)
		}
	}
	if len(header) == 0 && len(rows) > 0 {
		return rows[:1], rows[1:]
	}
	return header, data
}

func rowHasHeaderCell(row Element) bool {
	for _, c := range rowCells(row) {
		if c.Tag() == "th" {
			return true
		}
	}
	return false
}

// expandRow turns a tr into logical cells. A colspan of n expands the cell
// into n slots: the first carries the text and tag metadata, the rest are
// empty placeholders.
func expandRow(row Element, contexts map[string]*Context, units map[string]*Unit) []Cell {
	var out []Cell
	for _, cellEl := range rowCells(row) {
		cell := Cell{Text: CleanText(cellEl.Text())}
		if tagEl := firstTaggedWithin(cellEl); tagEl != nil {
			te := newTaggedElement(tagEl, contexts, units)
			cell.Tag = &te
		}
		out = append(out, cell)

		span := 1
		if v, ok := cellEl.Attr("colspan"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 1 {
				span = n
			}
		}
		for i := 1; i < span; i++ {
			out = append(out, Cell{})
		}
	}
	return out
}

// firstTaggedWithin returns the cell element itself if tagged, else its
// first tagged descendant.
func firstTaggedWithin(el Element) Element {
	if isTaggedElement(el) {
		return el
	}
	var found Element
	var walk func(e Element)
	walk = func(e Element) {
		for _, c := range e.Children() {
			if found != nil {
				return
			}
			if isTaggedElement(c) {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(el)
	return found
}

// mergeHeaderRows merges multiple header rows left to right. A later row's
// cell only fills a slot whose text is still empty; it never overwrites.
func mergeHeaderRows(headerRows []Element, contexts map[string]*Context, units map[string]*Unit) []Cell {
	var merged []Cell
	for _, row := range headerRows {
		cells := expandRow(row, contexts, units)
		for i, c := range cells {
			if i >= len(merged) {
				merged = append(merged, c)
				continue
			}
			if merged[i].Text == "" {
				if c.Text != "" {
					merged[i].Text = c.Text
				}
				if merged[i].Tag == nil && c.Tag != nil {
					merged[i].Tag = c.Tag
				}
			}
		}
	}
	return merged
}

// applyDefaultPeriodLabel labels an empty header cell from its resolved
// context's fiscal-year classification.
func applyDefaultPeriodLabel(c *Cell) {
	if c.Text != "" || c.Tag == nil || c.Tag.Context == nil {
		return
	}
	switch {
	case c.Tag.Context.IsCurrentPeriod():
		c.Text = labelCurrentPeriod
	case c.Tag.Context.IsPreviousPeriod():
		c.Text = labelPreviousPeriod
	}
}

func padCells(cells []Cell, n int) []Cell {
	for len(cells) < n {
		cells = append(cells, Cell{})
	}
	return cells
}

func computeStats(header []Cell, rows [][]Cell, columns int) TableStats {
	stats := TableStats{RowCount: len(rows), ColumnCount: columns}
	concepts := make(map[string]bool)

	count := func(cells []Cell) {
		for _, c := range cells {
			if c.Text == "" {
				stats.EmptyCells++
			}
			if c.Tag != nil {
				stats.TaggedCells++
				if c.Tag.Concept != "" {
					concepts[c.Tag.Concept] = true
				}
			}
		}
	}
	count(header)
	for _, row := range rows {
		count(row)
	}

	for concept := range concepts {
		stats.Concepts = append(stats.Concepts, concept)
	}
	sort.Strings(stats.Concepts)
	return stats
}

// classifyMappedTable infers the table type from the title first, then the
// table text. Tagged and untagged tables share this path; for untagged
// tables it is the only signal available.
func classifyMappedTable(table Element, title string) TableType {
	if t := inferTableType(title); t != TableUnknown {
		return t
	}
	return inferTableType(table.Text())
}
