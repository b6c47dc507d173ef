// Package speechtotext defines how live transcription clients report
// recognised speech as segments.
package speechtotext

import (
	"github.com/koscakluka/snapscout/core/audio"
	"github.com/koscakluka/snapscout/core/segments"
)

// Tagger adds intent and entities to a finalised segment.
type Tagger interface {
	Tag(segment segments.Segment) segments.Segment
}

type TranscriptionOptions struct {
	// SegmentCallback receives interim and final segments in recognition
	// order. Interim segments share the ID of the final segment they lead to.
	SegmentCallback func(segment segments.Segment)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// Tagger classifies final segments. Without one final segments carry no
	// intent.
	Tagger Tagger

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithSegmentCallback(callback func(segment segments.Segment)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SegmentCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithTagger(tagger Tagger) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Tagger = tagger
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
