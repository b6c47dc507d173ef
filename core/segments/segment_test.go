package segments

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPlainTextSkipsEmptyWords(t *testing.T) {
	segment := Segment{Words: []Word{
		{Value: "hello", Index: 0},
		{Value: "", Index: 1},
		{Value: "world", Index: 2},
	}, Entities: []Entity{}}

	if got := segment.PlainText(); got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func TestEntityReturnsFirstMatch(t *testing.T) {
	segment := Segment{Words: []Word{}, Entities: []Entity{
		{Type: EntityUtterance, Value: "tell me a joke"},
		{Type: EntityAgent, Value: "genie"},
		{Type: EntityAgent, Value: "magenta"},
	}}

	agent, ok := segment.Entity(EntityAgent)
	if !ok || agent != "genie" {
		t.Fatalf("expected first agent entity genie, got %q (found=%t)", agent, ok)
	}

	if _, ok := segment.Entity("colour"); ok {
		t.Fatalf("expected missing entity type to report not found")
	}
}

func TestFinalIntent(t *testing.T) {
	testCases := []struct {
		name     string
		intent   *Intent
		expected string
	}{
		{name: "absent", intent: nil, expected: ""},
		{name: "not final", intent: &Intent{Intent: IntentLaunch}, expected: ""},
		{name: "final", intent: &Intent{Intent: IntentLaunch, IsFinal: true}, expected: IntentLaunch},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			segment := Segment{Intent: testCase.intent}
			if got := segment.FinalIntent(); got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	testCases := map[string]string{
		"missing words":    `{"isFinal":true,"entities":[]}`,
		"missing entities": `{"isFinal":true,"words":[]}`,
		"not json":         `{"isFinal":`,
	}

	for name, payload := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode([]byte(payload)); !errors.Is(err, ErrMalformedSegment) {
				t.Fatalf("expected ErrMalformedSegment, got %v", err)
			}
		})
	}
}

func TestDecodeAssignsID(t *testing.T) {
	segment, err := Decode([]byte(`{"words":[{"value":"stop","index":0}],"isFinal":true,"intent":{"intent":"StopIntent","isFinal":true},"entities":[]}`))
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if segment.ID == "" {
		t.Fatalf("expected decode to assign an id")
	}
	if segment.FinalIntent() != IntentStop {
		t.Fatalf("expected StopIntent, got %q", segment.FinalIntent())
	}
}

func TestDecodeKeepsProvidedID(t *testing.T) {
	segment, err := Decode([]byte(`{"id":"abc","words":[],"isFinal":false,"entities":[]}`))
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if segment.ID != "abc" {
		t.Fatalf("expected id abc, got %q", segment.ID)
	}
}

func TestNewFinal(t *testing.T) {
	segment := NewFinal("ask genie  a riddle", IntentAsk, Entity{Type: EntityAgent, Value: "genie"})

	if !segment.IsFinal {
		t.Fatalf("expected segment to be final")
	}
	if got := segment.PlainText(); got != "ask genie a riddle" {
		t.Fatalf("expected normalised plain text, got %q", got)
	}
	if segment.FinalIntent() != IntentAsk {
		t.Fatalf("expected AskIntent, got %q", segment.FinalIntent())
	}
	if err := segment.Validate(); err != nil {
		t.Fatalf("expected segment to be valid, got %v", err)
	}

	empty := NewFinal("", "")
	if empty.Intent != nil {
		t.Fatalf("expected no intent, got %+v", empty.Intent)
	}
	if err := empty.Validate(); err != nil {
		t.Fatalf("expected empty segment to be valid, got %v", err)
	}
}

func TestSchemaDescribesRequiredFields(t *testing.T) {
	raw, err := json.Marshal(Schema())
	if err != nil {
		t.Fatalf("expected schema to marshal, got %v", err)
	}

	var decoded struct {
		Title    string         `json:"title"`
		Required []string       `json:"required"`
		Props    map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("expected schema to unmarshal, got %v", err)
	}

	if decoded.Title != "Segment" {
		t.Fatalf("expected title Segment, got %q", decoded.Title)
	}
	for _, field := range []string{"words", "isFinal", "entities"} {
		if _, ok := decoded.Props[field]; !ok {
			t.Fatalf("expected schema property %q, got %v", field, decoded.Props)
		}
	}
	required := map[string]bool{}
	for _, field := range decoded.Required {
		required[field] = true
	}
	if !required["words"] || !required["entities"] {
		t.Fatalf("expected words and entities to be required, got %v", decoded.Required)
	}
}
