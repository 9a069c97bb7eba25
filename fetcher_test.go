package edinet

import "testing"

func TestIsDocID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"S100TR7I", true},
		{"S100ABCD", true},
		{"S100", false},
		{"X100TR7I", false},
		{"S100TR7IX", false},
		{"s100tr7i", false},
		{"./filing.htm", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDocID(tt.id); got != tt.want {
			t.Errorf("IsDocID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestFetchDocumentRejectsBadInput(t *testing.T) {
	if _, err := FetchDocument("not-a-doc-id", "key"); err == nil {
		t.Error("invalid document ID accepted")
	}
	if _, err := FetchDocument("S100TR7I", ""); err == nil {
		t.Error("empty API key accepted")
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnvVar, "")
	if _, err := GetAPIKey(); err == nil {
		t.Error("missing key did not error")
	}

	t.Setenv(APIKeyEnvVar, "secret")
	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "secret" {
		t.Errorf("key = %q", key)
	}
}

func TestBuildUserAgent(t *testing.T) {
	if got := BuildUserAgent(); got != "go-edinet/"+VERSION {
		t.Errorf("BuildUserAgent() = %q", got)
	}
}
