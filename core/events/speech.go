package events

const (
	// KindSpeechRequested identifies text handed to the synthesis sink.
	KindSpeechRequested Kind = "speech.requested"
	// KindSpeechFailed identifies a synthesis sink failure.
	KindSpeechFailed Kind = "speech.failed"
)

// SpeechRequested carries text handed to the synthesis sink.
type SpeechRequested struct {
	Base
	Text string
}

// NewSpeechRequested creates a speech requested event.
func NewSpeechRequested(text string) SpeechRequested {
	return SpeechRequested{Base: NewBase(KindSpeechRequested), Text: text}
}

// SpeechFailed carries the synthesis error for Text.
type SpeechFailed struct {
	Base
	Text string
	Err  error
}

// NewSpeechFailed creates a speech failed event.
func NewSpeechFailed(text string, err error) SpeechFailed {
	return SpeechFailed{Base: NewBase(KindSpeechFailed), Text: text, Err: err}
}
