package agents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientSendText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected request id header")
		}

		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("expected JSON body, got %v", err)
		}
		if body.Text != "tell me a joke" {
			t.Errorf("expected text %q, got %q", "tell me a joke", body.Text)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Why did the chicken cross the road?"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient("genie", server.URL, WithToken("secret"))
	if err != nil {
		t.Fatalf("expected client to be created, got %v", err)
	}

	reply, err := client.SendText(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	if reply.Text != "Why did the chicken cross the road?" {
		t.Fatalf("expected reply text, got %q", reply.Text)
	}
}

func TestHTTPClientReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClient("magenta", server.URL)
	if err != nil {
		t.Fatalf("expected client to be created, got %v", err)
	}

	_, err = client.SendText(context.Background(), "hello")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable || statusErr.Body != "overloaded" || statusErr.Agent != "magenta" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestHTTPClientHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewHTTPClient("magenta", server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("expected client to be created, got %v", err)
	}

	if _, err := client.SendText(context.Background(), "hello"); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestNewHTTPClientRejectsInvalidEndpoint(t *testing.T) {
	if _, err := NewHTTPClient("genie", "ftp://example.com"); err == nil {
		t.Fatalf("expected unsupported scheme to be rejected")
	}
}
