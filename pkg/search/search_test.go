package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSearch(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotReq searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"results":[{"title":"Desk stretches","url":"https://example.com/s","content":"simple stretches"}]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "secret", MaxResults: 3})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	results, err := client.Search(context.Background(), "desk stretches")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Title != "Desk stretches" {
		t.Fatalf("unexpected results: %#v", results)
	}
	if results[0].Snippet != "simple stretches" {
		t.Fatalf("unexpected snippet: %q", results[0].Snippet)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReq.Query != "desk stretches" || gotReq.MaxResults != 3 {
		t.Fatalf("unexpected request: %#v", gotReq)
	}
}

func TestClientSearchErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for bad gateway")
	}
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{Token: "t"}); err == nil {
		t.Fatal("expected error for missing url")
	}
}
