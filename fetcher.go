package edinet

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"
)

const (
	VERSION = "0.1.0"

	// APIBase is the EDINET document API endpoint.
	APIBase = "https://api.edinet-fsa.go.jp/api/v2"

	// RateLimit paces requests to the EDINET API.
	RateLimit = 200 * time.Millisecond

	// APIKeyEnvVar is the environment variable holding the EDINET
	// subscription key.
	APIKeyEnvVar = "EDINET_API_KEY"
)

var lastRequestTime time.Time

// docIDPattern matches EDINET document IDs (e.g. S100TR7I).
var docIDPattern = regexp.MustCompile(`^S[0-9A-Z]{7}$`)

// IsDocID reports whether s looks like an EDINET document ID.
func IsDocID(s string) bool {
	return docIDPattern.MatchString(s)
}

// GetAPIKey retrieves the EDINET API key from the environment or returns an
// error. EDINET rejects unauthenticated document downloads.
func GetAPIKey() (string, error) {
	key := os.Getenv(APIKeyEnvVar)
	if key == "" {
		return "", fmt.Errorf("EDINET API key required: set %s environment variable or use --api-key flag", APIKeyEnvVar)
	}
	return key, nil
}

// BuildUserAgent returns the User-Agent string sent with API requests.
func BuildUserAgent() string {
	return fmt.Sprintf("go-edinet/%s", VERSION)
}

// FetchDocument downloads the main filing document (type=2, the XBRL-tagged
// HTML bundle entry) for an EDINET document ID. Requests are rate limited.
func FetchDocument(docID, apiKey string) ([]byte, error) {
	if !IsDocID(docID) {
		return nil, fmt.Errorf("invalid EDINET document ID: %q", docID)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for EDINET requests")
	}

	// Rate limiting
	if !lastRequestTime.IsZero() {
		elapsed := time.Since(lastRequestTime)
		if elapsed < RateLimit {
			time.Sleep(RateLimit - elapsed)
		}
	}

	url := fmt.Sprintf("%s/documents/%s?type=2&Subscription-Key=%s", APIBase, docID, apiKey)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", BuildUserAgent())

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	lastRequestTime = time.Now()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("EDINET returned status %d for %s", resp.StatusCode, docID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
