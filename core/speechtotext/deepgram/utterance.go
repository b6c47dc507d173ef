package deepgram

import (
	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/google/uuid"
	"github.com/koscakluka/snapscout/core/segments"
)

// utteranceState accumulates the finalised chunks Deepgram sends until the
// speaker stops. Interim and final segments of one utterance share an ID.
type utteranceState struct {
	id      string
	words   []segments.Word
	unended bool
}

func (u *utteranceState) ensureID() {
	if u.id == "" {
		u.id = uuid.NewString()
	}
}

func (u *utteranceState) append(words []api.Word) {
	u.ensureID()
	for _, word := range words {
		u.words = append(u.words, segments.Word{Value: wordValue(word), Index: len(u.words), IsFinal: true})
	}
}

// interim returns the accumulated words followed by the still changing tail.
func (u *utteranceState) interim(tail []api.Word) segments.Segment {
	u.ensureID()
	words := make([]segments.Word, len(u.words), len(u.words)+len(tail))
	copy(words, u.words)
	for _, word := range tail {
		words = append(words, segments.Word{Value: wordValue(word), Index: len(words)})
	}

	return segments.Segment{ID: u.id, Words: words, Entities: []segments.Entity{}}
}

func (u *utteranceState) finalise() (segments.Segment, bool) {
	if len(u.words) == 0 {
		u.id = ""
		return segments.Segment{}, false
	}

	segment := segments.Segment{ID: u.id, Words: u.words, IsFinal: true, Entities: []segments.Entity{}}
	u.id = ""
	u.words = nil
	return segment, true
}

func wordValue(word api.Word) string {
	if word.PunctuatedWord != "" {
		return word.PunctuatedWord
	}
	return word.Word
}
