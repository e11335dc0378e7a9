package publishers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePublishersFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writePublishersFile(t, "publishers.yaml", `
publishers:
  - id: queue-1
    type: sqs
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/123/articles
      region: us-east-1
  - id: hook-1
    type: http
    http:
      url: https://hooks.example.com/articles
      headers:
        X-Token: "  secret  "
        Empty: ""
  - id: disabled-1
    type: http
    enabled: false
    http:
      url: https://other.example.com
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 3 {
		t.Fatalf("expected 3 publishers, got %d", got)
	}
	if got := len(reg.Enabled()); got != 2 {
		t.Fatalf("expected 2 enabled publishers, got %d", got)
	}

	hook, ok := reg.ByID("hook-1")
	if !ok {
		t.Fatal("hook-1 not found")
	}
	if hook.HTTP.Method != http.MethodPost {
		t.Errorf("expected default method POST, got %s", hook.HTTP.Method)
	}
	if hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Errorf("expected default timeout, got %d", hook.HTTP.TimeoutSeconds)
	}
	if got := hook.HTTP.Headers["X-Token"]; got != "secret" {
		t.Errorf("expected trimmed header value, got %q", got)
	}
	if _, exists := hook.HTTP.Headers["Empty"]; exists {
		t.Error("empty header value should be dropped")
	}
}

func TestLoadRegistryValidatesPerType(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "sqs missing uri",
			content: "publishers:\n  - id: q\n    type: sqs\n    sqs:\n      region: us-east-1\n",
			wantErr: "sqs.uri is required",
		},
		{
			name:    "sns missing region",
			content: "publishers:\n  - id: s\n    type: sns\n    sns:\n      topic_arn: arn:aws:sns:us-east-1:123:t\n",
			wantErr: "sns.region is required",
		},
		{
			name:    "pubsub missing topic",
			content: "publishers:\n  - id: g\n    type: gcp_pubsub\n    gcp_pubsub:\n      project_id: p\n",
			wantErr: "gcp_pubsub.topic is required",
		},
		{
			name:    "http missing url",
			content: "publishers:\n  - id: h\n    type: http\n    http:\n      method: GET\n",
			wantErr: "http.url is required",
		},
		{
			name:    "missing type",
			content: "publishers:\n  - id: x\n",
			wantErr: "type is required",
		},
		{
			name:    "duplicate id",
			content: "publishers:\n  - id: h\n    type: http\n    http:\n      url: https://a.example\n  - id: h\n    type: http\n    http:\n      url: https://b.example\n",
			wantErr: "duplicate publisher id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePublishersFile(t, "publishers.yaml", tc.content)
			_, err := LoadRegistry(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writePublishersFile(t, "publishers.json", `{
  "publishers": [
    {"id": "hook", "type": "HTTP", "http": {"url": "https://hooks.example.com"}}
  ]
}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("hook")
	if !ok {
		t.Fatal("hook not found")
	}
	if cfg.Type != TypeHTTP {
		t.Errorf("expected type lowercased, got %s", cfg.Type)
	}
	if !cfg.EnabledValue() {
		t.Error("expected enabled to default to true")
	}
}
