package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractRFPSendsDocumentText(t *testing.T) {
	var capturedPrompt string
	var capturedFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		capturedFormat, _ = payload["format"].(string)
		_, _ = w.Write([]byte(`{"response":"{\"project_title\":\"X\"}"}`))
	}))
	defer server.Close()

	judge := NewDocumentJudge(New(server.URL, "llama3.1:8b", Options{}))
	out, err := judge.ExtractRFP(context.Background(), "solicitation body text")
	if err != nil {
		t.Fatalf("ExtractRFP() error = %v", err)
	}
	if out != `{"project_title":"X"}` {
		t.Fatalf("unexpected response %q", out)
	}
	if !strings.Contains(capturedPrompt, "solicitation body text") {
		t.Fatalf("expected document text in prompt, got %s", capturedPrompt)
	}
	if capturedFormat != "json" {
		t.Fatalf("expected json format request, got %q", capturedFormat)
	}
}

func TestJudgeCompatibilityRendersBothBlocks(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"{\"overall_score\":80}"}`))
	}))
	defer server.Close()

	judge := NewScoringJudge(New(server.URL, "llama3.1:8b", Options{}))
	_, err := judge.JudgeCompatibility(context.Background(), "Name: Acme", "Project: Upgrade")
	if err != nil {
		t.Fatalf("JudgeCompatibility() error = %v", err)
	}
	if !strings.Contains(capturedPrompt, "Name: Acme") || !strings.Contains(capturedPrompt, "Project: Upgrade") {
		t.Fatalf("expected both blocks in prompt, got %s", capturedPrompt)
	}
}

func TestGenerateIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	judge := NewDocumentJudge(New(server.URL, "llama3.1:8b", Options{}))
	_, err := judge.ExtractRFP(context.Background(), "text")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestExtractionPromptTruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("a", maxExtractionSnippet+500)
	prompt := buildExtractionPrompt(long)
	if strings.Count(prompt, "a") > maxExtractionSnippet {
		t.Fatalf("expected snippet truncated to %d characters", maxExtractionSnippet)
	}
}
