package edinet

import "sort"

// TableCandidate is one table scored for "is this a financial statement".
type TableCandidate struct {
	Element Element
	Score   int
	Title   string
	Order   int
}

// Scoring weights for financial-table detection. Kept as named constants so
// each rule is inspectable and tunable on its own.
const (
	scoreHeadingKeyword = 3 // preceding heading names a statement
	scoreTableKeyword   = 2 // table text names a statement
	scoreTaggedContent  = 5 // table contains structured-data tags
	scoreTableShape     = 1 // >=3 rows and >=2 cells in the first row
	scoreAccountColumn  = 2 // first column carries account vocabulary
)

// DefaultScoreThreshold is the minimum score for a table to qualify as a
// financial-statement candidate.
const DefaultScoreThreshold = 3

// ClassifyTables scores every table in the document and returns candidates
// with score >= threshold, ordered by descending score. Ties keep document
// order. A threshold <= 0 falls back to DefaultScoreThreshold.
func ClassifyTables(doc Document, threshold int) []TableCandidate {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}

	var candidates []TableCandidate
	for i, table := range ElementsByTag(doc, "table") {
		c := scoreTable(table, i)
		if c.Score >= threshold {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func scoreTable(table Element, order int) TableCandidate {
	c := TableCandidate{Element: table, Order: order}

	if heading := precedingHeadingText(table); heading != "" {
		c.Title = heading
		if hasStatementKeyword(heading) {
			c.Score += scoreHeadingKeyword
		}
	}

	text := table.Text()
	if hasStatementKeyword(text) {
		c.Score += scoreTableKeyword
	}
	if tableHasTags(table) {
		c.Score += scoreTaggedContent
	}

	rows := tableRows(table)
	if len(rows) >= 3 && len(rowCells(rows[0])) >= 2 {
		c.Score += scoreTableShape
	}
	if firstColumnHasAccounts(rows) {
		c.Score += scoreAccountColumn
	}
	return c
}

// precedingHeadingText returns the text of the nearest preceding
// heading-level element: a prior sibling that is (or ends with) an h1-h6,
// searched upward through ancestors when the table opens its container.
func precedingHeadingText(table Element) string {
	for el := Element(table); el != nil; el = el.Parent() {
		for sib := el.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
			if isHeadingTag(sib.Tag()) {
				return CleanText(sib.Text())
			}
			if headings := findDescendants(sib, "h1", "h2", "h3", "h4", "h5", "h6"); len(headings) > 0 {
				return CleanText(headings[len(headings)-1].Text())
			}
		}
	}
	return ""
}

func isHeadingTag(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// tableHasTags reports whether the table contains an inline fact element or
// a taxonomy-prefixed name attribute.
func tableHasTags(table Element) bool {
	var found bool
	var walk func(e Element)
	walk = func(e Element) {
		if found {
			return
		}
		for _, c := range e.Children() {
			if inlineFactTags[c.Tag()] {
				found = true
				return
			}
			if _, ok := c.Attr("contextref"); ok {
				found = true
				return
			}
			if name, ok := c.Attr("name"); ok && hasTaxonomyPrefix(name) {
				found = true
				return
			}
			walk(c)
		}
	}
	walk(table)
	return found
}

// firstColumnHasAccounts reports whether any row's first cell carries
// account-category vocabulary.
func firstColumnHasAccounts(rows []Element) bool {
	for _, row := range rows {
		cells := rowCells(row)
		if len(cells) == 0 {
			continue
		}
		if containsAnyFold(cells[0].Text(), accountKeywords) {
			return true
		}
	}
	return false
}

// tableRows returns the tr descendants of a table, skipping rows that belong
// to a nested table.
func tableRows(table Element) []Element {
	var rows []Element
	var walk func(e Element)
	walk = func(e Element) {
		for _, c := range e.Children() {
			switch c.Tag() {
			case "tr":
				rows = append(rows, c)
			case "table":
				// nested table rows belong to that table
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

// rowCells returns the th/td children of a row, skipping nested tables.
func rowCells(row Element) []Element {
	var cells []Element
	var walk func(e Element)
	walk = func(e Element) {
		for _, c := range e.Children() {
			switch c.Tag() {
			case "th", "td":
				cells = append(cells, c)
			case "table", "tr":
				continue
			default:
				walk(c)
			}
		}
	}
	walk(row)
	return cells
}
