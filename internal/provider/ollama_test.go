package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/marvin/internal/provider"
	"github.com/petasbytes/marvin/memory"
)

func TestOllamaSend(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Format   string `json:"format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"mode\":\"run\",\"command\":\"ls\"}"},"done":true}`))
	}))
	defer srv.Close()

	o := provider.NewOllama(provider.OllamaConfig{BaseURL: srv.URL + "/", Model: "llama3"})
	reply, err := o.Send(context.Background(), "SYS", []memory.Turn{
		{Role: memory.RoleUser, Content: "list"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != `{"mode":"run","command":"ls"}` {
		t.Fatalf("reply = %q", reply)
	}
	if got.Model != "llama3" || got.Stream || got.Format != "json" {
		t.Fatalf("unexpected request: %+v", got)
	}
	type m struct{ Role, Content string }
	var msgs []m
	for _, x := range got.Messages {
		msgs = append(msgs, m{x.Role, x.Content})
	}
	if diff := cmp.Diff([]m{{"system", "SYS"}, {"user", "list"}}, msgs); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestOllamaSend_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := provider.NewOllama(provider.OllamaConfig{BaseURL: srv.URL}).Send(context.Background(), "", nil)
	if got := provider.Classify(err); got != provider.KindRateLimit {
		t.Fatalf("Classify = %v (err %v)", got, err)
	}
}

func TestOllamaSend_ErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	_, err := provider.NewOllama(provider.OllamaConfig{BaseURL: srv.URL}).Send(context.Background(), "", nil)
	if err == nil || provider.Classify(err) != provider.KindOther {
		t.Fatalf("want other error, got %v", err)
	}
}

func TestOllama_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o := provider.NewOllama(provider.OllamaConfig{BaseURL: url})
	if err := o.Ping(context.Background()); provider.Classify(err) != provider.KindConnectivity {
		t.Fatalf("Ping: want connectivity error, got %v", err)
	}
	_, err := o.Send(context.Background(), "", nil)
	if got := provider.Classify(err); got != provider.KindConnectivity {
		t.Fatalf("Send: Classify = %v (err %v)", got, err)
	}
}

func TestOllama_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	o := provider.NewOllama(provider.OllamaConfig{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})
	_, err := o.Send(context.Background(), "", nil)
	if got := provider.Classify(err); got != provider.KindTimeout {
		t.Fatalf("Classify = %v (err %v)", got, err)
	}
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()
	if err := provider.NewOllama(provider.OllamaConfig{BaseURL: srv.URL}).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
