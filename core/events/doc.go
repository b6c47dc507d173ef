// Package events defines the typed event contract emitted while voice
// segments are dispatched to agents.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - voice.*
//   - agent.*
//   - speech.*
//
// voice events
//
//   - SegmentInterim (voice.segment_interim): a segment that is still being
//     recognised; carries the plain text seen so far.
//   - SegmentFinal (voice.segment_final): a finalised segment; carries the
//     plain text and the final intent label, if any.
//   - SegmentRejected (voice.segment_rejected): a segment that could not be
//     dispatched because it was malformed.
//
// agent events
//
//   - AgentActivated (agent.activated): the active agent changed to a new
//     non-empty name.
//   - AgentTerminated (agent.terminated): the active agent was cleared.
//   - AgentRequestStarted (agent.request_started): text was sent to an agent.
//   - AgentReplied (agent.replied): an agent replied.
//   - AgentRequestFailed (agent.request_failed): an agent call failed or the
//     agent could not be resolved.
//
// speech events
//
//   - SpeechRequested (speech.requested): text was handed to the synthesis
//     sink.
//   - SpeechFailed (speech.failed): the synthesis sink reported an error.
package events
