// Package intents tags plain transcripts with the intents and entities the
// voice dispatcher understands. It stands in for a spoken-language
// understanding service when the speech source only produces words.
package intents

import (
	"regexp"
	"slices"
	"strings"

	"github.com/koscakluka/snapscout/core/segments"
)

var (
	launchPattern = regexp.MustCompile(`^(?:launch|start|activate|open)\s+(\S+)$`)
	stopPattern   = regexp.MustCompile(`^(?:stop|terminate|deactivate|close)(?:\s+(\S+))?$`)
	askPattern    = regexp.MustCompile(`^ask\s+(\S+)(?:\s+(?:to|about|if|whether))?\s+(.+)$`)
)

// Tagger recognises launch, stop and ask commands addressed to known agents.
type Tagger struct {
	agents []string
}

func NewTagger(agents ...string) *Tagger {
	normalised := make([]string, 0, len(agents))
	for _, agent := range agents {
		normalised = append(normalised, strings.ToLower(agent))
	}
	return &Tagger{agents: normalised}
}

// Tag fills in the intent and entities of segment from its plain text. Only
// final segments are tagged; interim segments are returned unchanged apart
// from an empty entity list.
func (t *Tagger) Tag(segment segments.Segment) segments.Segment {
	if segment.Entities == nil {
		segment.Entities = []segments.Entity{}
	}
	if !segment.IsFinal || segment.Intent != nil {
		return segment
	}

	text := normalise(segment.PlainText())

	if match := launchPattern.FindStringSubmatch(text); match != nil && t.isAgent(match[1]) {
		segment.Intent = &segments.Intent{Intent: segments.IntentLaunch, IsFinal: true}
		segment.Entities = append(segment.Entities, segments.Entity{Type: segments.EntityAgent, Value: match[1]})
		return segment
	}

	if match := stopPattern.FindStringSubmatch(text); match != nil && (match[1] == "" || t.isAgent(match[1])) {
		segment.Intent = &segments.Intent{Intent: segments.IntentStop, IsFinal: true}
		if match[1] != "" {
			segment.Entities = append(segment.Entities, segments.Entity{Type: segments.EntityAgent, Value: match[1]})
		}
		return segment
	}

	if match := askPattern.FindStringSubmatch(text); match != nil && t.isAgent(match[1]) {
		segment.Intent = &segments.Intent{Intent: segments.IntentAsk, IsFinal: true}
		segment.Entities = append(segment.Entities,
			segments.Entity{Type: segments.EntityAgent, Value: match[1]},
			segments.Entity{Type: segments.EntityUtterance, Value: match[2]},
		)
		return segment
	}

	return segment
}

func (t *Tagger) isAgent(name string) bool {
	return slices.Contains(t.agents, name)
}

func normalise(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimRight(text, ".!?")
	text = strings.ReplaceAll(text, ",", "")
	return strings.Join(strings.Fields(text), " ")
}
