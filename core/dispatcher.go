// Package orchestration turns recognised speech into agent activity. The
// [Dispatcher] reads finalised segments, keeps track of which agent is
// active, forwards utterances to agents and speaks their replies.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/snapscout/core/agents"
	"github.com/koscakluka/snapscout/core/events"
	"github.com/koscakluka/snapscout/core/segments"
	"github.com/koscakluka/snapscout/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrClosed = errors.New("dispatcher closed")

type Dispatcher struct {
	session session

	agents    agents.Selector
	speaker   texttospeech.Speaker
	emitEvent eventEmitter

	terminationAnnouncement TerminationAnnouncement

	// baseContext bounds agent calls and speech started by the dispatcher;
	// it is cancelled by Close.
	baseContext context.Context
	cancel      context.CancelFunc

	// lifecycleMu orders detached work against Close so that no work is
	// added to inFlight once Close started waiting.
	lifecycleMu sync.RWMutex
	inFlight    sync.WaitGroup
	closed      atomic.Bool
	closeOnce   sync.Once
}

func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		agents:      agents.NewRegistry(),
		speaker:     texttospeech.Discard,
		emitEvent:   noopEventEmitter,
		baseContext: ctx,
		cancel:      cancel,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ActiveAgent returns the name of the active agent, or an empty string when
// none is active.
func (d *Dispatcher) ActiveAgent() string { return d.session.ActiveAgent() }

// Run handles segments in arrival order until the channel is closed or ctx is
// done.
func (d *Dispatcher) Run(ctx context.Context, source <-chan segments.Segment) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case segment, ok := <-source:
			if !ok {
				return nil
			}
			if err := d.Handle(ctx, segment); errors.Is(err, ErrClosed) {
				return err
			}
		}
	}
}

// Handle inspects a single segment. Interim segments are only observed. A
// final segment results in at most one agent call and at most one spoken
// reply or announcement; those run detached and Handle does not wait for
// them.
//
// The returned error is informational: malformed segments are rejected and
// nothing else happens.
func (d *Dispatcher) Handle(ctx context.Context, segment segments.Segment) error {
	if d.closed.Load() {
		return ErrClosed
	}

	ctx, span := tracer.Start(ctx, "handle segment", trace.WithAttributes(
		attribute.String("segment.id", segment.ID),
		attribute.Bool("segment.final", segment.IsFinal),
	))
	defer span.End()

	if err := segment.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "ignoring malformed segment", "segment_id", segment.ID, "error", err)
		d.emitEvent(events.NewSegmentRejected(segment.ID, err))
		return err
	}

	if !segment.IsFinal {
		d.emitEvent(events.NewSegmentInterim(segment.ID, segment.PlainText()))
		return nil
	}

	cmd := classify(segment)
	span.SetAttributes(
		attribute.String("segment.intent", cmd.intent),
		attribute.String("dispatch.action", cmd.action.String()),
	)
	logger.InfoContext(ctx, "final segment", "segment_id", cmd.segmentID, "text", cmd.plainText, "intent", cmd.intent, "action", cmd.action.String())
	d.emitEvent(events.NewSegmentFinal(cmd.segmentID, cmd.plainText, cmd.intent))

	switch cmd.action {
	case actionLaunch:
		d.launch(ctx, cmd)
	case actionStop:
		d.stop(ctx)
	case actionAsk:
		d.ask(ctx, cmd.segmentID, cmd.agent, cmd.askText())
	default:
		d.ask(ctx, cmd.segmentID, d.session.ActiveAgent(), cmd.plainText)
	}

	return nil
}

func (d *Dispatcher) launch(ctx context.Context, cmd command) {
	previous := d.session.swap(cmd.agent)
	if cmd.agent == previous {
		return
	}

	if cmd.agent == "" {
		logger.InfoContext(ctx, "launch without agent cleared the active agent", "previous", previous)
		d.emitEvent(events.NewAgentTerminated(previous))
		return
	}

	d.emitEvent(events.NewAgentActivated(cmd.agent))
	d.speak(ctx, cmd.agent+" activated.")
}

func (d *Dispatcher) stop(ctx context.Context) {
	previous := d.session.swap("")
	d.emitEvent(events.NewAgentTerminated(previous))

	name := previous
	if d.terminationAnnouncement == AnnounceCurrentAgent {
		name = d.session.ActiveAgent()
	}
	d.speak(ctx, strings.TrimSpace(name+" terminated."))
}

// ask sends text to the named agent in the background and speaks the reply.
func (d *Dispatcher) ask(ctx context.Context, segmentID, agentName, text string) {
	// Segments whose words are all empty are dropped here instead of sending
	// an empty request to the agent.
	if text == "" {
		logger.DebugContext(ctx, "nothing to send to agent", "segment_id", segmentID)
		return
	}

	client, err := d.agents.Lookup(agentName)
	if err != nil {
		d.reportAgentFailure(ctx, segmentID, agentName, err)
		return
	}

	d.emitEvent(events.NewAgentRequestStarted(segmentID, agentName, text))
	d.detach(ctx, "agent request", func(ctx context.Context) error {
		reply, err := client.SendText(ctx, text)
		if err != nil {
			d.reportAgentFailure(ctx, segmentID, agentName, err)
			return nil
		}

		logger.InfoContext(ctx, "agent replied", "segment_id", segmentID, "agent", agentName, "text", reply.Text)
		d.emitEvent(events.NewAgentReplied(segmentID, agentName, reply.Text))
		if reply.Text == "" {
			return nil
		}
		return d.speakNow(ctx, reply.Text)
	})
}

func (d *Dispatcher) reportAgentFailure(ctx context.Context, segmentID, agentName string, err error) {
	recordedErr := fmt.Errorf("agent %q request failed: %w", agentName, err)
	span := trace.SpanFromContext(ctx)
	span.RecordError(recordedErr)
	span.SetStatus(codes.Error, recordedErr.Error())
	logger.ErrorContext(ctx, "agent request failed", "segment_id", segmentID, "agent", agentName, "error", err)
	d.emitEvent(events.NewAgentRequestFailed(segmentID, agentName, err))
}

func (d *Dispatcher) speak(ctx context.Context, text string) {
	d.detach(ctx, "speech", func(ctx context.Context) error {
		return d.speakNow(ctx, text)
	})
}

func (d *Dispatcher) speakNow(ctx context.Context, text string) error {
	d.emitEvent(events.NewSpeechRequested(text))
	if err := d.speaker.Speak(ctx, text); err != nil {
		d.emitEvent(events.NewSpeechFailed(text, err))
		return fmt.Errorf("failed to speak: %w", err)
	}
	return nil
}

// detach runs work on its own goroutine. The work inherits the span of ctx
// but is bounded by the dispatcher lifetime rather than by ctx.
func (d *Dispatcher) detach(ctx context.Context, name string, work func(context.Context) error) {
	workCtx := trace.ContextWithSpan(d.baseContext, trace.SpanFromContext(ctx))
	run := panicSafeNamedWorker(name, work)

	d.lifecycleMu.RLock()
	defer d.lifecycleMu.RUnlock()
	if d.closed.Load() {
		logger.DebugContext(ctx, "dispatcher closed, dropping background work", "work", name)
		return
	}

	d.inFlight.Add(1)
	go func() {
		defer d.inFlight.Done()
		if err := run(workCtx); err != nil {
			logger.ErrorContext(workCtx, "background work failed", "error", err)
		}
	}()
}

// Wait blocks until all agent calls and speech started so far have
// completed.
func (d *Dispatcher) Wait() {
	d.inFlight.Wait()
}

// Close stops accepting segments, cancels in-flight agent calls and speech,
// and waits for them to return.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.lifecycleMu.Lock()
		d.closed.Store(true)
		d.lifecycleMu.Unlock()

		d.cancel()
		d.inFlight.Wait()
	})
}
