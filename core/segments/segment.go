// Package segments models the output of a streaming speech recogniser: the
// words heard so far, an optional intent classification and the entities
// extracted from the utterance.
package segments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrMalformedSegment = errors.New("malformed segment")

// Well-known entity types.
const (
	EntityAgent     = "agent"
	EntityUtterance = "utterance"
)

// Well-known intent labels.
const (
	IntentLaunch = "LaunchIntent"
	IntentStop   = "StopIntent"
	IntentAsk    = "AskIntent"
)

type Word struct {
	Value   string `json:"value" jsonschema:"description=Recognised word; empty while the recogniser has not settled on it"`
	Index   int    `json:"index" jsonschema:"description=Position of the word in the segment"`
	IsFinal bool   `json:"isFinal,omitempty"`
}

type Intent struct {
	Intent  string `json:"intent" jsonschema:"description=Intent label,example=LaunchIntent,example=StopIntent,example=AskIntent"`
	IsFinal bool   `json:"isFinal"`
}

type Entity struct {
	Type  string `json:"type" jsonschema:"description=Entity type,example=agent,example=utterance"`
	Value string `json:"value"`
}

// Segment is a single recognised utterance. Words and Entities are required
// on the wire; a segment missing either is malformed.
type Segment struct {
	ID       string   `json:"id,omitempty"`
	Words    []Word   `json:"words"`
	IsFinal  bool     `json:"isFinal"`
	Intent   *Intent  `json:"intent,omitempty"`
	Entities []Entity `json:"entities"`
}

// Decode parses a JSON encoded segment, validates it and assigns an ID when
// the sender did not provide one.
func Decode(data []byte) (Segment, error) {
	var segment Segment
	if err := json.Unmarshal(data, &segment); err != nil {
		return Segment{}, fmt.Errorf("%w: %w", ErrMalformedSegment, err)
	}
	if err := segment.Validate(); err != nil {
		return Segment{}, err
	}
	if segment.ID == "" {
		segment.ID = uuid.NewString()
	}

	return segment, nil
}

func (s Segment) Validate() error {
	if s.Words == nil {
		return fmt.Errorf("%w: words missing", ErrMalformedSegment)
	}
	if s.Entities == nil {
		return fmt.Errorf("%w: entities missing", ErrMalformedSegment)
	}
	return nil
}

// PlainText joins the non-empty word values with single spaces, in segment
// order.
func (s Segment) PlainText() string {
	values := make([]string, 0, len(s.Words))
	for _, word := range s.Words {
		if word.Value != "" {
			values = append(values, word.Value)
		}
	}
	return strings.Join(values, " ")
}

// Entity returns the value of the first entity of the given type.
func (s Segment) Entity(entityType string) (string, bool) {
	for _, entity := range s.Entities {
		if entity.Type == entityType {
			return entity.Value, true
		}
	}
	return "", false
}

// FinalIntent returns the intent label, or an empty string when there is no
// intent or its classification is not final yet.
func (s Segment) FinalIntent() string {
	if s.Intent == nil || !s.Intent.IsFinal {
		return ""
	}
	return s.Intent.Intent
}

// NewFinal builds a final segment from plain text, one word per whitespace
// separated field.
func NewFinal(text string, intent string, entities ...Entity) Segment {
	fields := strings.Fields(text)
	words := make([]Word, len(fields))
	for i, field := range fields {
		words[i] = Word{Value: field, Index: i, IsFinal: true}
	}
	if entities == nil {
		entities = []Entity{}
	}

	segment := Segment{
		ID:       uuid.NewString(),
		Words:    words,
		IsFinal:  true,
		Entities: entities,
	}
	if intent != "" {
		segment.Intent = &Intent{Intent: intent, IsFinal: true}
	}
	return segment
}
