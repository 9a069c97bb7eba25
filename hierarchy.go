package edinet

import (
	"math"
	"regexp"
	"strings"
)

// HierarchicalItem is one node of a normalized line-item tree, with
// current/previous values and their deltas.
type HierarchicalItem struct {
	Name         string              `json:"name"`
	Path         []string            `json:"path"`
	Level        int                 `json:"level"`
	Previous     *float64            `json:"previousValue"`
	Current      *float64            `json:"currentValue"`
	Change       *float64            `json:"change"`
	ChangeRate   *float64            `json:"changeRate"`
	IsTotal      bool                `json:"isTotal"`
	IsCalculated bool                `json:"isCalculated"`
	Children     []*HierarchicalItem `json:"children,omitempty"`
	ContextRef   string              `json:"contextRef,omitempty"`
	UnitRef      string              `json:"unitRef,omitempty"`
	Concept      string              `json:"concept,omitempty"`
}

// FlatItem is one ordered line item before tree construction. Level is used
// as given when HasLevel is set; otherwise it is inferred from the name.
type FlatItem struct {
	Name       string
	Level      int
	HasLevel   bool
	Previous   *float64
	Current    *float64
	Concept    string
	ContextRef string
	UnitRef    string
}

// numberedHeading matches digit or roman-numeral heading prefixes, which
// force a line item to the root level.
var numberedHeading = regexp.MustCompile(`^\s*([0-9０-９]+|[ⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩⅰⅱⅲⅳⅴ]+|[IVX]+)[.．、)）]`)

// InferLevel infers a nesting level from a line-item name: indentation
// halved, demoted one level for total/subtotal lines, forced to the root for
// numbered headings.
func InferLevel(name string) int {
	level := countLeadingIndent(name) / 2
	if isTotalLine(name) {
		level = max(0, level-1)
	}
	if numberedHeading.MatchString(name) {
		level = 0
	}
	return level
}

func isTotalLine(name string) bool {
	trimmed := strings.TrimSpace(name)
	if containsAnyFold(trimmed, totalKeywords) {
		return true
	}
	// A bare 計 suffix (e.g. 流動資産計) also marks a subtotal.
	return strings.HasSuffix(trimmed, "計")
}

// BuildHierarchy converts a flat, order-preserved sequence of line items
// into a parent/child tree. An explicit index stack of open ancestors is
// kept: each item pops ancestors at the same or deeper level, attaches to
// the remaining top (or the root set), and becomes the new top.
func BuildHierarchy(items []FlatItem) []*HierarchicalItem {
	var roots []*HierarchicalItem
	var stack []*HierarchicalItem

	for _, it := range items {
		name := CleanText(it.Name)
		if name == "" {
			continue
		}

		level := it.Level
		if !it.HasLevel {
			level = InferLevel(it.Name)
		}

		node := &HierarchicalItem{
			Name:       name,
			Level:      level,
			Previous:   it.Previous,
			Current:    it.Current,
			IsTotal:    isTotalLine(it.Name),
			ContextRef: it.ContextRef,
			UnitRef:    it.UnitRef,
			Concept:    it.Concept,
		}
		node.IsCalculated = node.IsTotal
		node.Change, node.ChangeRate = computeDeltas(it.Previous, it.Current)

		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			node.Path = []string{name}
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			node.Path = append(append([]string{}, parent.Path...), name)
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// computeDeltas returns the absolute and percentage change. Change needs
// both operands; the rate additionally needs a non-zero previous value.
func computeDeltas(previous, current *float64) (change, rate *float64) {
	if previous == nil || current == nil {
		return nil, nil
	}
	d := *current - *previous
	change = &d
	if *previous != 0 {
		r := d / math.Abs(*previous) * 100
		rate = &r
	}
	return change, rate
}

// PeriodLabels carries the header labels of the two value columns.
type PeriodLabels struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// ResultMetadata describes a formatted hierarchy.
type ResultMetadata struct {
	ReportType TableType    `json:"reportType"`
	UnitLabel  string       `json:"unitLabel,omitempty"`
	Periods    PeriodLabels `json:"periods"`
}

// FormatResult is the hierarchical output envelope handed to presentation
// layers.
type FormatResult struct {
	Success  bool                `json:"success"`
	Data     []*HierarchicalItem `json:"data"`
	Metadata ResultMetadata      `json:"metadata"`
	Errors   []string            `json:"errors"`
}

// FormatHierarchy converts a mapped table into the hierarchical result:
// first column is the item name, the next two populated columns are the
// previous and current period values. It always returns a usable result;
// problems are recorded in Errors with Success false only when nothing could
// be built.
func FormatHierarchy(model *TableModel) *FormatResult {
	res := &FormatResult{
		Data:   []*HierarchicalItem{},
		Errors: []string{},
		Metadata: ResultMetadata{
			ReportType: TableUnknown,
		},
	}
	if model == nil {
		res.Errors = append(res.Errors, "no table to format")
		return res
	}

	res.Metadata.ReportType = model.Type
	prevCol, curCol := valueColumns(model)
	if prevCol >= 0 && prevCol < len(model.Header) {
		res.Metadata.Periods.Previous = model.Header[prevCol].Text
	}
	if curCol >= 0 && curCol < len(model.Header) {
		res.Metadata.Periods.Current = model.Header[curCol].Text
	}
	res.Metadata.UnitLabel = firstUnitLabel(model)

	var items []FlatItem
	for _, row := range model.Rows {
		if len(row) == 0 {
			continue
		}
		it := FlatItem{Name: row[0].Text}
		if prevCol > 0 && prevCol < len(row) {
			it.Previous = NormalizeValue(row[prevCol].Text)
		}
		if curCol > 0 && curCol < len(row) {
			it.Current = NormalizeValue(row[curCol].Text)
		}
		if tag := rowTag(row); tag != nil {
			it.Concept = tag.Concept
			it.ContextRef = tag.ContextRef
			it.UnitRef = tag.UnitRef
		}
		items = append(items, it)
	}

	res.Data = BuildHierarchy(items)
	if len(res.Data) == 0 {
		res.Errors = append(res.Errors, "no line items extracted")
		return res
	}
	res.Success = true
	return res
}

// valueColumns picks the previous- and current-period column indexes from
// the header: resolved fiscal-year contexts win, else header label
// vocabulary, else the last two columns.
func valueColumns(model *TableModel) (prev, cur int) {
	prev, cur = -1, -1
	for i, h := range model.Header {
		if i == 0 {
			continue
		}
		if h.Tag != nil && h.Tag.Context != nil {
			switch {
			case h.Tag.Context.IsPreviousPeriod() && prev < 0:
				prev = i
			case h.Tag.Context.IsCurrentPeriod() && cur < 0:
				cur = i
			}
			continue
		}
		if containsAnyFold(h.Text, previousPeriodTerms) && prev < 0 {
			prev = i
		} else if containsAnyFold(h.Text, currentPeriodTerms) && cur < 0 {
			cur = i
		}
	}
	if prev < 0 && cur < 0 && len(model.Header) >= 3 {
		prev, cur = len(model.Header)-2, len(model.Header)-1
	} else if cur < 0 && len(model.Header) >= 2 {
		cur = len(model.Header) - 1
	}
	return prev, cur
}

func firstUnitLabel(model *TableModel) string {
	for _, row := range model.Rows {
		for _, c := range row {
			if c.Tag != nil && c.Tag.Unit != nil && c.Tag.Unit.Label != "" {
				return c.Tag.Unit.Label
			}
		}
	}
	return ""
}

func rowTag(row []Cell) *TaggedElement {
	for _, c := range row {
		if c.Tag != nil {
			return c.Tag
		}
	}
	return nil
}
