package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tavila/amparo-agent/internal/llm"
)

// responseTemplate is a minimal Responses API payload; the format verb
// takes the JSON-quoted output text.
const responseTemplate = `{
  "id": "resp_test",
  "object": "response",
  "created_at": 1700000000,
  "status": "completed",
  "model": "gpt-test",
  "output": [
    {
      "type": "message",
      "id": "msg_test",
      "status": "completed",
      "role": "assistant",
      "content": [
        {"type": "output_text", "text": %s, "annotations": []}
      ]
    }
  ]
}`

func verdictResponse(text string) string {
	quoted, err := json.Marshal(text)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf(responseTemplate, quoted)
}

func newTestOpenAIEvaluator(t *testing.T, baseURL string) *OpenAIEvaluator {
	t.Helper()
	e, err := NewOpenAIEvaluator(llm.Config{
		Provider: "openai",
		Model:    "gpt-test",
		BaseURL:  baseURL,
		APIKey:   "sk-test",
	}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIEvaluator: %v", err)
	}
	return e
}

func TestNewOpenAIEvaluator_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIEvaluator(llm.Config{Provider: "openai", Model: "gpt-test"}, nil); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestOpenAIEvaluator_Evaluate(t *testing.T) {
	body := verdictResponse(`{"score": 8.5, "analysis": "acolhedora e concreta", "improvement": ""}`)

	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	e := newTestOpenAIEvaluator(t, srv.URL)
	r, err := e.Evaluate(context.Background(), "perdi meu emprego", "sinto muito, estou aqui com você")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if r.Score != 8.5 {
		t.Errorf("Score = %v, want 8.5", r.Score)
	}
	if r.Analysis != "acolhedora e concreta" {
		t.Errorf("Analysis = %q", r.Analysis)
	}
	if !strings.HasSuffix(gotPath, "/responses") {
		t.Errorf("request path = %q, want a /responses call", gotPath)
	}
	for _, want := range []string{"json_schema", "reply_evaluation", "gpt-test", "perdi meu emprego"} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("request body missing %q", want)
		}
	}
}

func TestOpenAIEvaluator_OutOfRangeScoreFatal(t *testing.T) {
	body := verdictResponse(`{"score": 11, "analysis": "boa", "improvement": ""}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	e := newTestOpenAIEvaluator(t, srv.URL)
	_, err := e.Evaluate(context.Background(), "mensagem", "candidata")
	if !errors.Is(err, ErrMalformedEvaluation) {
		t.Fatalf("err = %v, want ErrMalformedEvaluation", err)
	}
}

func TestOpenAIEvaluator_EmptyOutputFatal(t *testing.T) {
	body := verdictResponse("")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	e := newTestOpenAIEvaluator(t, srv.URL)
	_, err := e.Evaluate(context.Background(), "mensagem", "candidata")
	if !errors.Is(err, llm.ErrEmptyOutput) {
		t.Fatalf("err = %v, want ErrEmptyOutput", err)
	}
}

func TestOpenAIEvaluator_RequestErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	e := newTestOpenAIEvaluator(t, srv.URL)
	_, err := e.Evaluate(context.Background(), "mensagem", "candidata")
	if err == nil {
		t.Fatal("request errors must propagate")
	}
	if errors.Is(err, ErrMalformedEvaluation) {
		t.Errorf("transport error misclassified as malformed evaluation: %v", err)
	}
}

func TestResultSchema_StrictContract(t *testing.T) {
	if got, ok := resultSchema["additionalProperties"].(bool); !ok || got {
		t.Errorf("additionalProperties = %v, want false", resultSchema["additionalProperties"])
	}

	props, ok := resultSchema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties object: %v", resultSchema)
	}
	required, _ := resultSchema["required"].([]any)

	for _, field := range []string{"score", "analysis", "improvement"} {
		if _, ok := props[field]; !ok {
			t.Errorf("properties missing %q", field)
		}
		found := false
		for _, r := range required {
			if r == field {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("required missing %q", field)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("rate limit reached"), true},
		{errors.New("500 Internal Server Error"), true},
		{errors.New("server_error: overloaded"), true},
		{errors.New("401 Unauthorized"), false},
		{errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
