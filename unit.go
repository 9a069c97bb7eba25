package edinet

import (
	"fmt"
	"strings"
)

// UnitKind distinguishes simple measures from numerator/denominator pairs.
type UnitKind string

const (
	UnitSimple   UnitKind = "simple"
	UnitFraction UnitKind = "fraction"
)

// Unit defines a measurement unit that tagged numeric facts reference.
type Unit struct {
	ID          string   `json:"id"`
	Measure     string   `json:"measure"`
	Symbol      string   `json:"symbol"`
	Label       string   `json:"label"`
	Kind        UnitKind `json:"kind"`
	Numerator   string   `json:"numerator,omitempty"`
	Denominator string   `json:"denominator,omitempty"`
}

// currencySymbols maps ISO 4217 codes to display symbols. Codes without an
// entry fall back to the code itself.
var currencySymbols = map[string]string{
	"JPY": "¥",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CNY": "元",
	"KRW": "₩",
	"INR": "₹",
	"AUD": "A$",
	"CAD": "C$",
	"CHF": "CHF",
	"HKD": "HK$",
	"SGD": "S$",
	"TWD": "NT$",
	"THB": "฿",
}

// ResolveUnits builds the unit dictionary from explicit xbrli:unit
// definitions, then infers minimal units for inline unitRef values that have
// no definition.
func ResolveUnits(doc Document) map[string]*Unit {
	units := make(map[string]*Unit)

	for _, el := range ElementsByTag(doc, "xbrli:unit", "unit") {
		id, ok := el.Attr("id")
		if !ok || id == "" {
			continue
		}
		units[id] = resolveUnitDefinition(id, el)
	}

	for _, el := range ElementsWithAttr(doc, "unitref") {
		ref, _ := el.Attr("unitref")
		if ref == "" {
			continue
		}
		if _, exists := units[ref]; exists {
			continue
		}
		units[ref] = inferUnit(ref)
	}

	return units
}

func resolveUnitDefinition(id string, el Element) *Unit {
	// A divide element makes this a fraction unit (e.g. JPY per share).
	if divides := findDescendants(el, "xbrli:divide", "divide"); len(divides) > 0 {
		num := firstMeasureUnder(divides[0], "xbrli:unitnumerator", "unitnumerator")
		den := firstMeasureUnder(divides[0], "xbrli:unitdenominator", "unitdenominator")
		numSym, _ := measureDisplay(num)
		denSym, _ := measureDisplay(den)
		symbol := fmt.Sprintf("%s/%s", numSym, denSym)
		return &Unit{
			ID:          id,
			Measure:     num + "/" + den,
			Symbol:      symbol,
			Label:       symbol,
			Kind:        UnitFraction,
			Numerator:   num,
			Denominator: den,
		}
	}

	measure := childText(el, "xbrli:measure", "measure")
	symbol, label := measureDisplay(measure)
	return &Unit{
		ID:      id,
		Measure: measure,
		Symbol:  symbol,
		Label:   label,
		Kind:    UnitSimple,
	}
}

func firstMeasureUnder(el Element, names ...string) string {
	for _, part := range findDescendants(el, names...) {
		if m := childText(part, "xbrli:measure", "measure"); m != "" {
			return m
		}
	}
	return ""
}

// measureDisplay resolves one measure string to a display symbol and label.
func measureDisplay(measure string) (symbol, label string) {
	m := strings.TrimSpace(measure)
	if m == "" {
		return "", ""
	}
	local := localName(m)
	upper := strings.ToUpper(local)

	if strings.HasPrefix(strings.ToLower(m), "iso4217:") {
		sym, ok := currencySymbols[upper]
		if !ok {
			sym = upper
		}
		return sym, upper
	}

	switch strings.ToLower(local) {
	case "shares":
		return "株", "株 (shares)"
	case "pure":
		return "", "pure"
	case "percent":
		return "%", "%"
	}

	// Bare three-letter codes show up in sloppy filings.
	if len(upper) == 3 {
		if sym, ok := currencySymbols[upper]; ok {
			return sym, upper
		}
	}
	return local, local
}

// inferUnit classifies a bare unit reference purely from substrings of its
// id. No pattern match leaves symbol and label empty.
func inferUnit(ref string) *Unit {
	u := &Unit{ID: ref, Kind: UnitSimple}
	lower := strings.ToLower(ref)
	switch {
	case strings.Contains(lower, "jpy"):
		u.Symbol, u.Label = "¥", "JPY"
	case strings.Contains(lower, "usd"):
		u.Symbol, u.Label = "$", "USD"
	case strings.Contains(lower, "eur"):
		u.Symbol, u.Label = "€", "EUR"
	case strings.Contains(lower, "share"):
		u.Symbol, u.Label = "株", "株 (shares)"
	case strings.Contains(lower, "percent"), strings.Contains(lower, "rate"):
		u.Symbol, u.Label = "%", "%"
	case strings.Contains(lower, "pure"):
		u.Label = "pure"
	}
	return u
}
