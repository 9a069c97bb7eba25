package edinet

import "strings"

// Heuristic vocabulary shared by the classifier, cell mapper, hierarchy
// builder and comment extractor. Kept as plain data so individual rules can
// be unit-tested and tuned without touching control flow.

// TableType classifies a financial table by statement kind.
type TableType string

const (
	TableBalanceSheet    TableType = "balance_sheet"
	TableIncomeStatement TableType = "income_statement"
	TableCashFlow        TableType = "cash_flow"
	TableShareholder     TableType = "shareholder"
	TableUnknown         TableType = "unknown"
)

// statementKeywords maps statement-name vocabulary to table types. Checked
// in order; longer, more specific phrases come first.
var statementKeywords = []struct {
	Keyword string
	Type    TableType
}{
	{"株主資本等変動計算書", TableShareholder},
	{"キャッシュ・フロー計算書", TableCashFlow},
	{"キャッシュフロー計算書", TableCashFlow},
	{"貸借対照表", TableBalanceSheet},
	{"損益計算書", TableIncomeStatement},
	{"財政状態計算書", TableBalanceSheet},
	{"包括利益計算書", TableIncomeStatement},
	{"statement of changes in equity", TableShareholder},
	{"statements of cash flows", TableCashFlow},
	{"statement of cash flows", TableCashFlow},
	{"cash flow statement", TableCashFlow},
	{"balance sheet", TableBalanceSheet},
	{"statement of financial position", TableBalanceSheet},
	{"income statement", TableIncomeStatement},
	{"statement of operations", TableIncomeStatement},
	{"statement of income", TableIncomeStatement},
	{"profit and loss", TableIncomeStatement},
}

// accountKeywords is the account-category vocabulary used for first-column
// scoring and fallback table typing.
var accountKeywords = []string{
	"資産", "負債", "純資産", "株主資本", "資本金", "利益剰余金",
	"売上高", "売上原価", "営業利益", "経常利益", "当期純利益",
	"費用", "収益", "現金及び現金同等物",
	"assets", "liabilities", "equity", "net assets",
	"revenue", "sales", "expenses", "income", "cost of",
	"cash and cash equivalents",
}

// totalKeywords mark subtotal/total lines in a statement.
var totalKeywords = []string{
	"合計", "小計", "総計", "total", "subtotal",
}

// currentPeriodTerms and previousPeriodTerms classify fiscal-year vocabulary
// found in context reference strings.
var currentPeriodTerms = []string{
	"CurrentYear", "CurrentQuarter", "CurrentPeriod", "当期", "当連結", "ThisYear",
}

// "Prior" alone covers the numbered EDINET forms (Prior1Year, Prior2Year,
// Prior1Quarter and so on).
var previousPeriodTerms = []string{
	"Prior", "Previous", "前期", "前連結", "LastYear",
}

// nonConsolidatedTerms is checked before consolidatedTerms: "NonConsolidated"
// contains "Consolidated" as a substring.
var nonConsolidatedTerms = []string{
	"NonConsolidated", "nonconsolidated", "non-consolidated", "個別", "単体", "individual",
}

var consolidatedTerms = []string{
	"Consolidated", "consolidated", "連結",
}

// annotationKeywords start a comment section when found in an h2-h4 heading.
var annotationKeywords = []string{
	"注記", "注記事項", "会計方針", "セグメント", "事業",
	"notes", "accounting polic", "segment", "business",
}

// financialTerms is the fixed vocabulary scanned for related items in
// comment sections.
var financialTerms = []string{
	"売上高", "営業利益", "経常利益", "当期純利益", "総資産", "純資産",
	"自己資本比率", "営業キャッシュ・フロー", "減価償却費", "設備投資",
	"revenue", "operating income", "ordinary income", "net income",
	"total assets", "net assets", "equity ratio", "operating cash flow",
	"depreciation", "capital expenditure",
}

// taxonomyPrefixes are concept-name prefixes that identify structured-data
// tagging even without an ix: element.
var taxonomyPrefixes = []string{
	"jppfs_cor:", "jpcrp_cor:", "jpdei_cor:", "jpigp_cor:",
	"us-gaap:", "ifrs-full:", "ifrs:", "dei:",
}

// containsAnyFold reports whether s contains any of the terms,
// case-insensitively for ASCII vocabulary.
func containsAnyFold(s string, terms []string) bool {
	return matchAnyFold(s, terms) != ""
}

// matchAnyFold returns the first term contained in s, or "".
func matchAnyFold(s string, terms []string) string {
	lower := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t
		}
	}
	return ""
}

// statementTypeOf returns the table type implied by statement vocabulary in
// text, or TableUnknown.
func statementTypeOf(text string) TableType {
	lower := strings.ToLower(text)
	for _, kw := range statementKeywords {
		if strings.Contains(lower, strings.ToLower(kw.Keyword)) {
			return kw.Type
		}
	}
	return TableUnknown
}

// hasStatementKeyword reports whether text names any financial statement.
func hasStatementKeyword(text string) bool {
	return statementTypeOf(text) != TableUnknown
}

// accountTypeHints maps account vocabulary to the statement families they
// suggest, used when no statement name appears anywhere near the table.
var accountTypeHints = []struct {
	Keyword string
	Type    TableType
}{
	{"キャッシュ・フロー", TableCashFlow},
	{"現金及び現金同等物", TableCashFlow},
	{"株主資本", TableShareholder},
	{"資産", TableBalanceSheet},
	{"負債", TableBalanceSheet},
	{"売上", TableIncomeStatement},
	{"営業利益", TableIncomeStatement},
	{"cash flow", TableCashFlow},
	{"stockholders", TableShareholder},
	{"assets", TableBalanceSheet},
	{"liabilities", TableBalanceSheet},
	{"revenue", TableIncomeStatement},
	{"operating income", TableIncomeStatement},
}

// inferTableType infers a table type from free text: statement names win,
// then account-category hints.
func inferTableType(text string) TableType {
	if t := statementTypeOf(text); t != TableUnknown {
		return t
	}
	lower := strings.ToLower(text)
	for _, h := range accountTypeHints {
		if strings.Contains(lower, strings.ToLower(h.Keyword)) {
			return h.Type
		}
	}
	return TableUnknown
}
