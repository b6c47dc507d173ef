package orchestration

import (
	"github.com/koscakluka/snapscout/core/agents"
	"github.com/koscakluka/snapscout/core/events"
	"github.com/koscakluka/snapscout/core/texttospeech"
)

type DispatcherOption func(*Dispatcher)

// WithAgents sets how agent names are resolved to clients.
func WithAgents(selector agents.Selector) DispatcherOption {
	return func(d *Dispatcher) {
		if selector != nil {
			d.agents = selector
		}
	}
}

// WithSpeaker sets the synthesis sink replies and announcements are spoken
// through.
func WithSpeaker(speaker texttospeech.Speaker) DispatcherOption {
	return func(d *Dispatcher) {
		if speaker == nil {
			speaker = texttospeech.Discard
		}
		d.speaker = speaker
	}
}

// WithEventEmitter registers a receiver for dispatcher events.
//
// The emitter is called from the goroutine handling the segment as well as
// from the detached goroutines completing agent calls, so it must be safe
// for concurrent use and should not block.
func WithEventEmitter(emit func(events.Event)) DispatcherOption {
	return func(d *Dispatcher) { d.emitEvent = newEventEmitter(emit) }
}

// TerminationAnnouncement selects which agent name the stop announcement
// uses.
type TerminationAnnouncement int

const (
	// AnnouncePreviousAgent names the agent that was just stopped.
	AnnouncePreviousAgent TerminationAnnouncement = iota
	// AnnounceCurrentAgent reads the active agent after it was cleared, so
	// the announcement carries no name.
	AnnounceCurrentAgent
)

// ParseTerminationAnnouncement accepts "previous" and "current".
func ParseTerminationAnnouncement(value string) (TerminationAnnouncement, bool) {
	switch value {
	case "", "previous":
		return AnnouncePreviousAgent, true
	case "current":
		return AnnounceCurrentAgent, true
	}
	return AnnouncePreviousAgent, false
}

func WithTerminationAnnouncement(mode TerminationAnnouncement) DispatcherOption {
	return func(d *Dispatcher) { d.terminationAnnouncement = mode }
}
