package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestNewRetrieverValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRetriever(Config{Token: "tok"}); err == nil {
		t.Error("missing url should fail")
	}
	if _, err := NewRetriever(Config{URL: "https://index.example.com"}); err == nil {
		t.Error("missing token should fail")
	}
}

func TestRetrieve(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody queryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/query" {
			t.Errorf("path = %s, want /query", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": "doc-1", "score": 0.92, "metadata": map[string]any{"text": "waterproof shell"}},
				{"id": "doc-2", "score": 0.88, "metadata": map[string]any{"text": "  packs into its own pocket  "}},
				{"id": "doc-3", "score": 0.70, "metadata": map[string]any{}},
			},
		})
	}))
	defer server.Close()

	r := MustNewRetriever(Config{URL: server.URL, Token: "tok", Timeout: time.Second})
	chunks, err := r.Retrieve(context.Background(), "Trail Jacket", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	want := []string{"waterproof shell", "packs into its own pocket"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("chunks = %v, want %v", chunks, want)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Data != "Trail Jacket" || gotBody.TopK != 3 || !gotBody.IncludeMetadata {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	t.Parallel()

	var gotTopK int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body queryRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTopK = body.TopK
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	defer server.Close()

	r := MustNewRetriever(Config{URL: server.URL, Token: "tok"})
	if _, err := r.Retrieve(context.Background(), "query", 0); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if gotTopK != 3 {
		t.Errorf("topK = %d, want default 3", gotTopK)
	}
}

func TestRetrieveErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	r := MustNewRetriever(Config{URL: server.URL, Token: "bad"})
	if _, err := r.Retrieve(context.Background(), "query", 3); err == nil {
		t.Error("http error should propagate")
	}

	if _, err := r.Retrieve(context.Background(), "   ", 3); err == nil {
		t.Error("empty query should fail")
	}
}

func TestRetrieveIndexError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "index not found"})
	}))
	defer server.Close()

	r := MustNewRetriever(Config{URL: server.URL, Token: "tok"})
	if _, err := r.Retrieve(context.Background(), "query", 3); err == nil {
		t.Error("index error should propagate")
	}
}
