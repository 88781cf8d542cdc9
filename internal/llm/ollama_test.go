package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaComplete_NCandidates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if len(req.Messages) != 2 {
			t.Errorf("got %d messages, want 2 (system + user)", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first message role = %s, want system", req.Messages[0].Role)
		}

		calls++
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: fmt.Sprintf("candidato %d", calls)},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen3:4b", nil)
	outputs, err := c.Complete(context.Background(), "instrução", "mensagem", 2)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("got %d candidates, want 2", len(outputs))
	}
	if outputs[0] == outputs[1] {
		t.Error("candidates should come from separate calls")
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestOllamaComplete_EmptySystemOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 {
			t.Errorf("got %d messages, want 1 (no system)", len(req.Messages))
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen3:4b", nil)
	if _, err := c.Complete(context.Background(), "", "mensagem", 1); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func TestOllamaComplete_BlankOutputFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "   "},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen3:4b", nil)
	_, err := c.Complete(context.Background(), "sys", "user", 1)
	if !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("err = %v, want ErrEmptyOutput", err)
	}
}

func TestOllamaComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "missing-model", nil)
	if _, err := c.Complete(context.Background(), "sys", "user", 1); err == nil {
		t.Fatal("expected error on HTTP 404")
	}
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s, want /api/tags", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen3:4b", nil)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOllamaPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	// Bound the context so the refused-dial retries do not stall the test.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	c := NewOllamaClient(srv.URL, "qwen3:4b", nil)
	if err := c.Ping(ctx); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
		wantType string
	}{
		{"default is ollama", Config{Model: "qwen3:4b"}, false, "*llm.OllamaClient"},
		{"explicit ollama", Config{Provider: "ollama", Model: "qwen3:4b"}, false, "*llm.OllamaClient"},
		{"openai without key", Config{Provider: "openai", Model: "gpt-4o-mini"}, true, ""},
		{"openai with key", Config{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"}, false, "*llm.OpenAIClient"},
		{"unknown provider", Config{Provider: "llamacpp"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := fmt.Sprintf("%T", c); got != tt.wantType {
				t.Errorf("client type = %s, want %s", got, tt.wantType)
			}
		})
	}
}
