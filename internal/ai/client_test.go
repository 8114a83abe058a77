package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/knowledge"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestClientDiagnose(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		var payload struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if len(payload.Messages) == 2 {
			gotPrompt = payload.Messages[1].Content
		}
		_ = json.NewEncoder(w).Encode(completion("```json\n{\"diagnosis\": \"  Unit economics are thin.  \"}\n```"))
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	text, err := client.Diagnose(context.Background(), DiagnosisInput{
		Question: "Should we scale paid acquisition?",
		Category: decision.CategoryGrowth,
		Context:  decision.Context{CAC: decision.Float(100), LTV: decision.Float(250)},
		Knowledge: []knowledge.Snippet{
			{Namespace: "growth_capital", Item: knowledge.Item{Content: "LTV/CAC of 3x is the healthy minimum."}},
		},
		Baseline: "baseline text",
	})
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if text != "Unit economics are thin." {
		t.Fatalf("unexpected diagnosis %q", text)
	}
	for _, want := range []string{"LTV/CAC: 2.50", "[growth_capital]", "Heuristic diagnosis: baseline text", "cac: 100"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gotPrompt)
		}
	}
}

func TestNewClientWithoutKeyIsDisabled(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

type stubDiagnoser struct {
	enabled bool
	text    string
	err     error
	calls   int32
}

func (s *stubDiagnoser) Enabled() bool { return s.enabled }

func (s *stubDiagnoser) Diagnose(context.Context, DiagnosisInput) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.text, s.err
}

func TestWithFallback(t *testing.T) {
	tests := []struct {
		name     string
		primary  *stubDiagnoser
		fallback *stubDiagnoser
		want     string
		wantErr  bool
	}{
		{"primary ok", &stubDiagnoser{enabled: true, text: "p"}, &stubDiagnoser{enabled: true, text: "f"}, "p", false},
		{"primary error", &stubDiagnoser{enabled: true, err: errors.New("boom")}, &stubDiagnoser{enabled: true, text: "f"}, "f", false},
		{"primary blank", &stubDiagnoser{enabled: true, text: "  "}, &stubDiagnoser{enabled: true, text: "f"}, "f", false},
		{"primary disabled", &stubDiagnoser{}, &stubDiagnoser{enabled: true, text: "f"}, "f", false},
		{"both disabled", &stubDiagnoser{}, &stubDiagnoser{}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WithFallback(tc.primary, tc.fallback).Diagnose(context.Background(), DiagnosisInput{})
			if (err != nil) != tc.wantErr || got != tc.want {
				t.Fatalf("Diagnose = %q, %v; want %q (err %v)", got, err, tc.want, tc.wantErr)
			}
		})
	}
}

func TestWithRetryRetriesTransientStatus(t *testing.T) {
	stub := &stubDiagnoser{enabled: true, err: &StatusError{Code: http.StatusTooManyRequests}}
	d := WithRetry(stub, RetryPolicy{Attempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	if _, err := d.Diagnose(context.Background(), DiagnosisInput{}); err == nil {
		t.Fatal("expected error after retries")
	}
	if stub.calls != 3 {
		t.Fatalf("calls = %d, want 3", stub.calls)
	}

	permanent := &stubDiagnoser{enabled: true, err: &StatusError{Code: http.StatusUnauthorized}}
	d = WithRetry(permanent, RetryPolicy{Attempts: 3, InitialBackoff: time.Millisecond})
	_, _ = d.Diagnose(context.Background(), DiagnosisInput{})
	if permanent.calls != 1 {
		t.Fatalf("calls = %d, want 1", permanent.calls)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"diagnosis": "x"}`, `{"diagnosis": "x"}`},
		{"```json\n{\"diagnosis\": \"x\"}\n```", `{"diagnosis": "x"}`},
		{"Sure! {\"diagnosis\": \"x\"} Hope this helps.", `{"diagnosis": "x"}`},
		{"   ", ""},
		{"no json here", "no json here"},
	}
	for _, tt := range tests {
		if got := extractJSONObject(tt.in); got != tt.want {
			t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientDiagnoseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Diagnose(context.Background(), DiagnosisInput{Question: "Should we cut the marketing budget?"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want StatusError 503", err)
	}
	if statusErr.Body["error"] == nil {
		t.Fatalf("error body not decoded: %v", statusErr.Body)
	}
}
