package edinet

import (
	"fmt"
	"strings"
	"time"
)

// PeriodType distinguishes point-in-time balances from flows over a range.
type PeriodType string

const (
	PeriodInstant  PeriodType = "instant"
	PeriodDuration PeriodType = "duration"
	PeriodUnknown  PeriodType = "unknown"
)

// Consolidation marks whether a context aggregates subsidiary entities.
type Consolidation string

const (
	Consolidated         Consolidation = "consolidated"
	NonConsolidated      Consolidation = "non_consolidated"
	ConsolidationUnknown Consolidation = "unknown"
)

// FiscalYear classifies a context as the filing's current or previous
// reporting year.
type FiscalYear string

const (
	FiscalCurrent  FiscalYear = "current"
	FiscalPrevious FiscalYear = "previous"
	FiscalUnknown  FiscalYear = "unknown"
)

// Context defines the reporting period, entity and consolidation scope that
// tagged facts reference. Exactly one of Instant or (StartDate, EndDate) is
// populated, or neither. A partial pair is never produced.
type Context struct {
	ID            string            `json:"id"`
	PeriodType    PeriodType        `json:"periodType"`
	Instant       string            `json:"instant,omitempty"`
	StartDate     string            `json:"startDate,omitempty"`
	EndDate       string            `json:"endDate,omitempty"`
	EntityID      string            `json:"entityId,omitempty"`
	EntityScheme  string            `json:"entityScheme,omitempty"`
	Segment       map[string]string `json:"segment,omitempty"`
	Consolidation Consolidation     `json:"consolidation"`
	FiscalYear    FiscalYear        `json:"fiscalYear"`
}

// IsCurrentPeriod reports whether the context belongs to the filing's
// current reporting year.
func (c *Context) IsCurrentPeriod() bool { return c.FiscalYear == FiscalCurrent }

// IsPreviousPeriod reports whether the context belongs to the prior year.
func (c *Context) IsPreviousPeriod() bool { return c.FiscalYear == FiscalPrevious }

// PeriodLabel returns a human-readable period string.
func (c *Context) PeriodLabel() string {
	switch c.PeriodType {
	case PeriodInstant:
		return c.Instant
	case PeriodDuration:
		return fmt.Sprintf("%s - %s", c.StartDate, c.EndDate)
	}
	return ""
}

// ContextResolver builds the context dictionary for a document.
//
// Fiscal-year classification compares each context's end date against the
// current wall-clock year. That anchor is deliberate but time-dependent:
// historical filings drift from "current" to "unknown" as years pass. Now is
// injectable so callers and fixtures can pin the anchor.
type ContextResolver struct {
	Now func() time.Time
}

func (r *ContextResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve builds the context dictionary from explicit xbrli:context
// definitions, then synthesizes minimal contexts for any inline contextRef
// that has no definition. A synthesized context never overwrites a resolved
// one.
func (r *ContextResolver) Resolve(doc Document) map[string]*Context {
	contexts := make(map[string]*Context)

	for _, el := range ElementsByTag(doc, "xbrli:context", "context") {
		id, ok := el.Attr("id")
		if !ok || id == "" {
			continue
		}
		ctx := r.resolveDefinition(id, el)
		contexts[ctx.ID] = ctx
	}

	// Inline references with no definition still carry vocabulary in the
	// reference string itself.
	for _, el := range ElementsWithAttr(doc, "contextref") {
		ref, _ := el.Attr("contextref")
		if ref == "" {
			continue
		}
		if _, exists := contexts[ref]; exists {
			continue
		}
		contexts[ref] = synthesizeContext(ref)
	}

	return contexts
}

// resolveDefinition extracts period, entity, segment and classification from
// one explicit context element.
func (r *ContextResolver) resolveDefinition(id string, el Element) *Context {
	ctx := &Context{
		ID:            id,
		PeriodType:    PeriodUnknown,
		Consolidation: ConsolidationUnknown,
		FiscalYear:    FiscalUnknown,
	}

	if t := childText(el, "xbrli:instant", "instant"); t != "" {
		ctx.PeriodType = PeriodInstant
		ctx.Instant = t
	} else {
		start := childText(el, "xbrli:startdate", "startdate")
		end := childText(el, "xbrli:enddate", "enddate")
		if start != "" && end != "" {
			ctx.PeriodType = PeriodDuration
			ctx.StartDate = start
			ctx.EndDate = end
		}
	}

	// Entity identifier and scheme stay as two independent strings.
	for _, ident := range findDescendants(el, "xbrli:identifier", "identifier") {
		ctx.EntityID = CleanText(ident.Text())
		if scheme, ok := ident.Attr("scheme"); ok {
			ctx.EntityScheme = scheme
		}
		break
	}

	ctx.Segment = resolveSegment(el)
	ctx.Consolidation = classifyConsolidation(ctx.Segment, id)
	ctx.FiscalYear = r.classifyFiscalYear(ctx)
	return ctx
}

// resolveSegment collects explicit members (dimension → member) and typed
// members (keyed as dimension[localName] → value).
func resolveSegment(el Element) map[string]string {
	seg := make(map[string]string)
	for _, m := range findDescendants(el, "xbrldi:explicitmember", "explicitmember") {
		dim, _ := m.Attr("dimension")
		if dim != "" {
			seg[dim] = CleanText(m.Text())
		}
	}
	for _, m := range findDescendants(el, "xbrldi:typedmember", "typedmember") {
		dim, _ := m.Attr("dimension")
		if dim == "" {
			continue
		}
		for _, child := range m.Children() {
			key := fmt.Sprintf("%s[%s]", dim, localName(child.Tag()))
			seg[key] = CleanText(child.Text())
		}
	}
	if len(seg) == 0 {
		return nil
	}
	return seg
}

// classifyConsolidation applies the consolidation vocabulary in priority
// order: segment member values first, then the context id string. Dimension
// names are excluded: ConsolidatedOrNonConsolidatedAxis would match both
// vocabularies.
func classifyConsolidation(segment map[string]string, id string) Consolidation {
	for _, member := range segment {
		if c := consolidationOf(member); c != ConsolidationUnknown {
			return c
		}
	}
	return consolidationOf(id)
}

// consolidationOf checks the non-consolidated vocabulary first because
// "NonConsolidated" contains "Consolidated".
func consolidationOf(s string) Consolidation {
	if containsAnyFold(s, nonConsolidatedTerms) {
		return NonConsolidated
	}
	if containsAnyFold(s, consolidatedTerms) {
		return Consolidated
	}
	return ConsolidationUnknown
}

// classifyFiscalYear compares the period end (or instant) year against the
// wall-clock year: same or previous year is current, two or three years back
// is previous.
func (r *ContextResolver) classifyFiscalYear(ctx *Context) FiscalYear {
	dateStr := ctx.EndDate
	if dateStr == "" {
		dateStr = ctx.Instant
	}
	if dateStr == "" {
		return FiscalUnknown
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return FiscalUnknown
	}
	switch diff := r.now().Year() - end.Year(); {
	case diff == 0 || diff == 1:
		return FiscalCurrent
	case diff == 2 || diff == 3:
		return FiscalPrevious
	}
	return FiscalUnknown
}

// synthesizeContext builds a minimal context from vocabulary found in a bare
// reference string. Unresolvable fields stay unknown/empty.
func synthesizeContext(ref string) *Context {
	ctx := &Context{
		ID:            ref,
		PeriodType:    PeriodUnknown,
		Consolidation: consolidationOf(ref),
		FiscalYear:    FiscalUnknown,
	}
	if containsAnyFold(ref, currentPeriodTerms) {
		ctx.FiscalYear = FiscalCurrent
	} else if containsAnyFold(ref, previousPeriodTerms) {
		ctx.FiscalYear = FiscalPrevious
	}
	if strings.Contains(ref, "Instant") {
		ctx.PeriodType = PeriodInstant
	} else if strings.Contains(ref, "Duration") {
		ctx.PeriodType = PeriodDuration
	}
	return ctx
}

// childText returns the trimmed text of the first descendant with one of the
// given tag names.
func childText(el Element, names ...string) string {
	for _, d := range findDescendants(el, names...) {
		return CleanText(d.Text())
	}
	return ""
}

// findDescendants returns descendants of el matching any of the tag names,
// in document order.
func findDescendants(el Element, names ...string) []Element {
	var out []Element
	var walk func(e Element)
	walk = func(e Element) {
		for _, c := range e.Children() {
			for _, n := range names {
				if c.Tag() == n {
					out = append(out, c)
					break
				}
			}
			walk(c)
		}
	}
	walk(el)
	return out
}

// localName strips a namespace prefix from a qualified tag or concept name.
func localName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}
