package orchestration

import (
	"github.com/koscakluka/snapscout/core/segments"
)

type action int

const (
	actionOther action = iota
	actionLaunch
	actionStop
	actionAsk
)

func (a action) String() string {
	switch a {
	case actionLaunch:
		return "launch"
	case actionStop:
		return "stop"
	case actionAsk:
		return "ask"
	default:
		return "other"
	}
}

// command is a finalised segment reduced to what the dispatcher acts on.
type command struct {
	action action

	segmentID string
	intent    string
	plainText string

	agent        string
	hasAgent     bool
	utterance    string
	hasUtterance bool
}

// classify maps a final segment onto one of the four actions. An ask without
// an agent entity has nobody to address and is handled like any other
// utterance.
func classify(segment segments.Segment) command {
	cmd := command{
		segmentID: segment.ID,
		intent:    segment.FinalIntent(),
		plainText: segment.PlainText(),
	}
	cmd.agent, cmd.hasAgent = segment.Entity(segments.EntityAgent)
	cmd.utterance, cmd.hasUtterance = segment.Entity(segments.EntityUtterance)

	switch cmd.intent {
	case segments.IntentLaunch:
		cmd.action = actionLaunch
	case segments.IntentStop:
		cmd.action = actionStop
	case segments.IntentAsk:
		if cmd.hasAgent && cmd.agent != "" {
			cmd.action = actionAsk
		}
	}

	return cmd
}

// askText is the text forwarded to the addressed agent.
func (c command) askText() string {
	if c.hasUtterance && c.utterance != "" {
		return c.utterance
	}
	return c.plainText
}
