package edinet

import (
	"fmt"
	"log/slog"
	"time"
)

// Extraction is everything the pipeline produced for one document. The
// dictionaries are built once per parse and read-only afterward; the caller
// owns the whole result.
type Extraction struct {
	Contexts map[string]*Context `json:"contexts"`
	Units    map[string]*Unit    `json:"units"`
	Tables   []*TableModel       `json:"tables"`
	Comments []CommentSection    `json:"comments,omitempty"`
	Errors   []string            `json:"errors,omitempty"`
}

// Extractor runs the extraction pipeline. The zero value is usable; Config
// and Logger default when nil.
type Extractor struct {
	Config *Config
	Logger *slog.Logger
}

// NewExtractor returns an extractor with the given configuration.
func NewExtractor(cfg *Config) *Extractor {
	return &Extractor{Config: cfg}
}

func (e *Extractor) config() *Config {
	if e.Config != nil {
		return e.Config
	}
	return DefaultConfig()
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Extract runs the full pipeline on raw markup: contexts and units, tag
// scan, table classification, cell mapping, comment extraction. It never
// fails: a malformed document yields empty dictionaries and a recorded
// diagnostic, and per-stage problems degrade to best-effort results.
func (e *Extractor) Extract(data []byte) *Extraction {
	cfg := e.config()
	log := e.logger()

	result := &Extraction{
		Contexts: map[string]*Context{},
		Units:    map[string]*Unit{},
		Tables:   []*TableModel{},
	}

	doc, err := ParseDocument(data)
	if err != nil {
		log.Warn("tree parser failed, falling back to tag-soup walker", "error", err)
		doc, err = ParseSoup(data)
	}
	if err != nil {
		msg := fmt.Sprintf("document unparseable: %v", err)
		log.Warn("extraction aborted", "error", err)
		result.Errors = append(result.Errors, msg)
		return result
	}

	resolver := ContextResolver{Now: cfg.anchorNow()}
	result.Contexts = resolver.Resolve(doc)
	result.Units = ResolveUnits(doc)
	tagged := ScanTaggedElements(doc, result.Contexts, result.Units)
	log.Debug("dictionaries resolved",
		"contexts", len(result.Contexts), "units", len(result.Units),
		"taggedElements", len(tagged))

	candidates := ClassifyTables(doc, cfg.ScoreThreshold)
	if len(candidates) == 0 {
		// Nothing scored above threshold: process raw tables without
		// scoring so the caller still gets a usable result.
		for i, table := range ElementsByTag(doc, "table") {
			candidates = append(candidates, TableCandidate{Element: table, Order: i})
		}
		if len(candidates) > 0 {
			log.Debug("no scored candidates, using raw-table fallback",
				"tables", len(candidates))
		}
	}

	maxTables := cfg.MaxTables
	for _, cand := range candidates {
		if maxTables > 0 && len(result.Tables) >= maxTables {
			break
		}
		model := MapTable(cand.Element, cand.Title, result.Contexts, result.Units)
		if model.Stats.RowCount == 0 && len(model.Header) == 0 {
			continue
		}
		result.Tables = append(result.Tables, model)
	}

	if cfg.ExtractComments {
		result.Comments = ExtractComments(string(data))
	}

	log.Info("extraction complete",
		"tables", len(result.Tables),
		"contexts", len(result.Contexts),
		"units", len(result.Units),
		"comments", len(result.Comments))
	return result
}

// anchorNow returns the clock used for fiscal-year classification: the
// configured anchor date when set, else the wall clock.
func (c *Config) anchorNow() func() time.Time {
	if c.AnchorDate == "" {
		return nil
	}
	anchor, err := time.Parse("2006-01-02", c.AnchorDate)
	if err != nil {
		return nil
	}
	return func() time.Time { return anchor }
}
