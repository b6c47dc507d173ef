package agents

import (
	"context"
	"errors"
	"testing"
)

func namedClient(name string) Client {
	return ClientFunc(func(context.Context, string) (Reply, error) {
		return Reply{Text: name}, nil
	})
}

func TestRegistryLookupExactMatch(t *testing.T) {
	registry := NewRegistry()
	registry.Register("magenta", namedClient("magenta"))
	registry.Register("genie", namedClient("genie"))

	client, err := registry.Lookup("magenta")
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if reply, _ := client.SendText(context.Background(), ""); reply.Text != "magenta" {
		t.Fatalf("expected magenta client, got %q", reply.Text)
	}

	if _, err := registry.Lookup("Magenta"); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected case-sensitive miss to be ErrUnknownAgent, got %v", err)
	}
	if _, err := registry.Lookup(""); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected empty name to be ErrUnknownAgent, got %v", err)
	}
}

func TestRegistryLookupFallback(t *testing.T) {
	registry := NewRegistry(WithFallback("genie"))
	registry.Register("magenta", namedClient("magenta"))
	registry.Register("genie", namedClient("genie"))

	for _, name := range []string{"", "unknown"} {
		client, err := registry.Lookup(name)
		if err != nil {
			t.Fatalf("expected fallback for %q, got %v", name, err)
		}
		if reply, _ := client.SendText(context.Background(), ""); reply.Text != "genie" {
			t.Fatalf("expected genie fallback for %q, got %q", name, reply.Text)
		}
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("magenta", namedClient("magenta"))
	registry.Register("genie", namedClient("genie"))

	names := registry.Names()
	if len(names) != 2 || names[0] != "genie" || names[1] != "magenta" {
		t.Fatalf("expected [genie magenta], got %v", names)
	}
}

func TestNewRegistryFromEndpoints(t *testing.T) {
	registry, err := NewRegistryFromEndpoints([]Endpoint{
		{Name: "magenta", URL: "http://localhost:9001/magenta"},
		{Name: "genie", URL: "https://genie.example.com/api"},
	}, WithFallback("genie"))
	if err != nil {
		t.Fatalf("expected registry to build, got %v", err)
	}

	client, err := registry.Lookup("magenta")
	if err != nil {
		t.Fatalf("expected magenta lookup to succeed, got %v", err)
	}
	if httpClient, ok := client.(*HTTPClient); !ok || httpClient.Name() != "magenta" {
		t.Fatalf("expected magenta HTTP client, got %T", client)
	}

	if _, err := NewRegistryFromEndpoints([]Endpoint{{URL: "http://localhost"}}); err == nil {
		t.Fatalf("expected nameless endpoint to be rejected")
	}
}
