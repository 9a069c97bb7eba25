package edinet

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// pinned keeps fiscal-year classification stable regardless of when the
// tests run.
func pinned(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
	}
}

const contextMarkup = `<html><body>
<xbrli:context id="CurrentYearInstant">
	<xbrli:entity>
		<xbrli:identifier scheme="http://disclosure.edinet-fsa.go.jp">E00001</xbrli:identifier>
	</xbrli:entity>
	<xbrli:period><xbrli:instant>2026-03-31</xbrli:instant></xbrli:period>
</xbrli:context>
<xbrli:context id="CurrentYearDuration_ConsolidatedMember">
	<xbrli:entity>
		<xbrli:identifier scheme="http://disclosure.edinet-fsa.go.jp">E00001</xbrli:identifier>
		<xbrli:segment>
			<xbrldi:explicitMember dimension="jppfs_cor:ConsolidatedOrNonConsolidatedAxis">jppfs_cor:ConsolidatedMember</xbrldi:explicitMember>
		</xbrli:segment>
	</xbrli:entity>
	<xbrli:period>
		<xbrli:startDate>2025-04-01</xbrli:startDate>
		<xbrli:endDate>2026-03-31</xbrli:endDate>
	</xbrli:period>
</xbrli:context>
<xbrli:context id="Prior1YearInstant_NonConsolidatedMember">
	<xbrli:period><xbrli:instant>2025-03-31</xbrli:instant></xbrli:period>
	<xbrli:entity>
		<xbrli:segment>
			<xbrldi:explicitMember dimension="jppfs_cor:ConsolidatedOrNonConsolidatedAxis">jppfs_cor:NonConsolidatedMember</xbrldi:explicitMember>
		</xbrli:segment>
	</xbrli:entity>
</xbrli:context>
<xbrli:context id="Broken">
	<xbrli:period><xbrli:startDate>2025-04-01</xbrli:startDate></xbrli:period>
</xbrli:context>
<p><span contextRef="Prior2YearDuration">99</span></p>
</body></html>`

func TestResolveContexts(t *testing.T) {
	doc, err := ParseSoup([]byte(contextMarkup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}

	r := &ContextResolver{Now: pinned(2026)}
	contexts := r.Resolve(doc)

	if len(contexts) != 5 {
		t.Fatalf("got %d contexts, want 5", len(contexts))
	}

	cur := contexts["CurrentYearInstant"]
	if cur == nil {
		t.Fatal("CurrentYearInstant missing")
	}
	if cur.PeriodType != PeriodInstant || cur.Instant != "2026-03-31" {
		t.Errorf("period = %s %q, want instant 2026-03-31", cur.PeriodType, cur.Instant)
	}
	if cur.EntityID != "E00001" {
		t.Errorf("EntityID = %q, want E00001", cur.EntityID)
	}
	if cur.EntityScheme != "http://disclosure.edinet-fsa.go.jp" {
		t.Errorf("EntityScheme = %q", cur.EntityScheme)
	}
	if cur.FiscalYear != FiscalCurrent {
		t.Errorf("FiscalYear = %s, want current", cur.FiscalYear)
	}

	dur := contexts["CurrentYearDuration_ConsolidatedMember"]
	if dur == nil {
		t.Fatal("duration context missing")
	}
	if dur.PeriodType != PeriodDuration || dur.StartDate != "2025-04-01" || dur.EndDate != "2026-03-31" {
		t.Errorf("period = %s %q-%q", dur.PeriodType, dur.StartDate, dur.EndDate)
	}
	if dur.Consolidation != Consolidated {
		t.Errorf("Consolidation = %s, want consolidated", dur.Consolidation)
	}
	wantSeg := map[string]string{
		"jppfs_cor:ConsolidatedOrNonConsolidatedAxis": "jppfs_cor:ConsolidatedMember",
	}
	if diff := cmp.Diff(wantSeg, dur.Segment); diff != "" {
		t.Errorf("segment mismatch (-want +got):\n%s", diff)
	}

	prior := contexts["Prior1YearInstant_NonConsolidatedMember"]
	if prior == nil {
		t.Fatal("prior context missing")
	}
	if prior.Consolidation != NonConsolidated {
		t.Errorf("Consolidation = %s, want non_consolidated", prior.Consolidation)
	}
	if prior.FiscalYear != FiscalCurrent {
		// 2025 end against a 2026 anchor is one year back, still current.
		t.Errorf("FiscalYear = %s, want current", prior.FiscalYear)
	}

	// A start date with no end date is not a valid pair.
	if broken := contexts["Broken"]; broken.PeriodType != PeriodUnknown {
		t.Errorf("Broken period = %s, want unknown", broken.PeriodType)
	}
	if broken := contexts["Broken"]; broken.StartDate != "" {
		t.Errorf("Broken StartDate = %q, want empty", broken.StartDate)
	}

	// Synthesized from the bare reference string.
	synth := contexts["Prior2YearDuration"]
	if synth == nil {
		t.Fatal("synthesized context missing")
	}
	if synth.PeriodType != PeriodDuration {
		t.Errorf("synthesized period = %s, want duration", synth.PeriodType)
	}
	if synth.FiscalYear != FiscalPrevious {
		t.Errorf("synthesized FiscalYear = %s, want previous", synth.FiscalYear)
	}
}

func TestSynthesizedContextNeverOverwritesResolved(t *testing.T) {
	markup := `<html><body>
<xbrli:context id="C1"><xbrli:period><xbrli:instant>2026-03-31</xbrli:instant></xbrli:period></xbrli:context>
<span contextRef="C1">1</span>
</body></html>`
	doc, err := ParseSoup([]byte(markup))
	if err != nil {
		t.Fatalf("ParseSoup: %v", err)
	}
	contexts := (&ContextResolver{Now: pinned(2026)}).Resolve(doc)
	if got := contexts["C1"].Instant; got != "2026-03-31" {
		t.Errorf("Instant = %q, resolved definition was overwritten", got)
	}
}

func TestClassifyFiscalYear(t *testing.T) {
	r := &ContextResolver{Now: pinned(2026)}
	tests := []struct {
		end  string
		want FiscalYear
	}{
		{"2026-03-31", FiscalCurrent},
		{"2025-03-31", FiscalCurrent},
		{"2024-03-31", FiscalPrevious},
		{"2023-03-31", FiscalPrevious},
		{"2020-03-31", FiscalUnknown},
		{"2030-03-31", FiscalUnknown},
		{"not-a-date", FiscalUnknown},
		{"", FiscalUnknown},
	}
	for _, tt := range tests {
		ctx := &Context{EndDate: tt.end}
		if got := r.classifyFiscalYear(ctx); got != tt.want {
			t.Errorf("classifyFiscalYear(end=%q) = %s, want %s", tt.end, got, tt.want)
		}
	}
}

func TestConsolidationVocabularyPriority(t *testing.T) {
	tests := []struct {
		s    string
		want Consolidation
	}{
		{"CurrentYearDuration_NonConsolidatedMember", NonConsolidated},
		{"CurrentYearDuration_ConsolidatedMember", Consolidated},
		{"個別財務諸表", NonConsolidated},
		{"連結財務諸表", Consolidated},
		{"CurrentYearInstant", ConsolidationUnknown},
	}
	for _, tt := range tests {
		if got := consolidationOf(tt.s); got != tt.want {
			t.Errorf("consolidationOf(%q) = %s, want %s", tt.s, got, tt.want)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	instant := &Context{PeriodType: PeriodInstant, Instant: "2026-03-31"}
	if got := instant.PeriodLabel(); got != "2026-03-31" {
		t.Errorf("instant label = %q", got)
	}
	duration := &Context{PeriodType: PeriodDuration, StartDate: "2025-04-01", EndDate: "2026-03-31"}
	if got := duration.PeriodLabel(); got != "2025-04-01 - 2026-03-31" {
		t.Errorf("duration label = %q", got)
	}
	if got := (&Context{}).PeriodLabel(); got != "" {
		t.Errorf("unknown label = %q, want empty", got)
	}
}
