package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	edinet "github.com/kessanlab/go-edinet"
)

func main() {
	var (
		outputPath string
		dbPath     string
		configPath string
		apiKey     string
		hierarchy  bool
	)

	flag.StringVar(&outputPath, "output", "", "Output JSON file path (default: stdout)")
	flag.StringVar(&outputPath, "o", "", "Output JSON file path (shorthand)")
	flag.StringVar(&dbPath, "db", "", "SQLite store path; saves the extraction when set")
	flag.StringVar(&configPath, "config", "", "YAML config file path")
	flag.StringVar(&apiKey, "api-key", "", "EDINET API key (or use EDINET_API_KEY env var)")
	flag.BoolVar(&hierarchy, "hierarchy", false, "Emit the hierarchical line-item tree of the first table instead of the raw extraction")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: go-edinet [options] <source>\n\n")
		fmt.Fprintf(os.Stderr, "Extract financial-statement data from an EDINET filing.\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  <source>    Local file path or EDINET document ID (e.g. S100TR7I)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  go-edinet ./filing.htm\n")
		fmt.Fprintf(os.Stderr, "  go-edinet -o result.json S100TR7I\n")
		fmt.Fprintf(os.Stderr, "  go-edinet -hierarchy ./filing.htm\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s    API key for EDINET document downloads\n", edinet.APIKeyEnvVar)
	}

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: source file or document ID required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), outputPath, dbPath, configPath, apiKey, hierarchy); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(source, outputPath, dbPath, configPath, apiKey string, hierarchy bool) error {
	cfg := edinet.DefaultConfig()
	if configPath != "" {
		loaded, err := edinet.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var data []byte
	var err error
	if edinet.IsDocID(source) {
		if apiKey == "" {
			apiKey, err = edinet.GetAPIKey()
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "Fetching from EDINET: %s\n", source)
		data, err = edinet.FetchDocument(source, apiKey)
		if err != nil {
			return fmt.Errorf("fetching document: %w", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Reading from file: %s\n", source)
		data, err = os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
	}

	extraction := edinet.NewExtractor(cfg).Extract(data)
	fmt.Fprintf(os.Stderr, "Extracted %d tables, %d contexts, %d units\n",
		len(extraction.Tables), len(extraction.Contexts), len(extraction.Units))

	if dbPath != "" {
		store, err := edinet.OpenStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		title := ""
		if len(extraction.Tables) > 0 {
			title = extraction.Tables[0].Title
		}
		if err := store.SaveExtraction(source, title, extraction); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved to store: %s\n", dbPath)
	}

	var payload any = extraction
	if hierarchy {
		if len(extraction.Tables) == 0 {
			return fmt.Errorf("no tables extracted, nothing to format")
		}
		payload = edinet.FormatHierarchy(extraction.Tables[0])
	}

	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting JSON: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved JSON output: %s\n", outputPath)
		return nil
	}
	fmt.Println(string(jsonData))
	return nil
}
