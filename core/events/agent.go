package events

const (
	// KindAgentActivated identifies a transition to a new active agent.
	KindAgentActivated Kind = "agent.activated"
	// KindAgentTerminated identifies clearing of the active agent.
	KindAgentTerminated Kind = "agent.terminated"
	// KindAgentRequestStarted identifies text sent to an agent.
	KindAgentRequestStarted Kind = "agent.request_started"
	// KindAgentReplied identifies an agent reply.
	KindAgentReplied Kind = "agent.replied"
	// KindAgentRequestFailed identifies a failed agent call.
	KindAgentRequestFailed Kind = "agent.request_failed"
)

// AgentActivated marks a change of the active agent to Agent.
type AgentActivated struct {
	Base
	Agent string
}

// NewAgentActivated creates an agent activated event.
func NewAgentActivated(agent string) AgentActivated {
	return AgentActivated{Base: NewBase(KindAgentActivated), Agent: agent}
}

// AgentTerminated marks clearing of the active agent. Agent is the name that
// was active before the stop.
type AgentTerminated struct {
	Base
	Agent string
}

// NewAgentTerminated creates an agent terminated event.
func NewAgentTerminated(agent string) AgentTerminated {
	return AgentTerminated{Base: NewBase(KindAgentTerminated), Agent: agent}
}

// AgentRequestStarted marks text being sent to an agent.
type AgentRequestStarted struct {
	Base
	SegmentID string
	Agent     string
	Text      string
}

// NewAgentRequestStarted creates an agent request started event.
func NewAgentRequestStarted(segmentID, agent, text string) AgentRequestStarted {
	return AgentRequestStarted{Base: NewBase(KindAgentRequestStarted), SegmentID: segmentID, Agent: agent, Text: text}
}

// AgentReplied carries an agent reply.
type AgentReplied struct {
	Base
	SegmentID string
	Agent     string
	Text      string
}

// NewAgentReplied creates an agent replied event.
func NewAgentReplied(segmentID, agent, text string) AgentReplied {
	return AgentReplied{Base: NewBase(KindAgentReplied), SegmentID: segmentID, Agent: agent, Text: text}
}

// AgentRequestFailed carries the error of a failed agent call.
type AgentRequestFailed struct {
	Base
	SegmentID string
	Agent     string
	Err       error
}

// NewAgentRequestFailed creates an agent request failed event.
func NewAgentRequestFailed(segmentID, agent string, err error) AgentRequestFailed {
	return AgentRequestFailed{Base: NewBase(KindAgentRequestFailed), SegmentID: segmentID, Agent: agent, Err: err}
}
