package orchestration

import (
	"context"
	"slices"
	"sync"

	"github.com/koscakluka/snapscout/core/agents"
	"github.com/koscakluka/snapscout/core/events"
	"github.com/koscakluka/snapscout/core/segments"
)

type agentClientStub struct {
	mu    sync.Mutex
	texts []string

	reply agents.Reply
	err   error
}

func (stub *agentClientStub) SendText(_ context.Context, text string) (agents.Reply, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.texts = append(stub.texts, text)
	return stub.reply, stub.err
}

func (stub *agentClientStub) calls() []string {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return slices.Clone(stub.texts)
}

type speakerStub struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

func (stub *speakerStub) Speak(_ context.Context, text string) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.spoken = append(stub.spoken, text)
	return stub.err
}

func (stub *speakerStub) calls() []string {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return slices.Clone(stub.spoken)
}

type eventRecorder struct {
	mu       sync.Mutex
	recorded []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, len(r.recorded))
	for i, event := range r.recorded {
		kinds[i] = event.Kind()
	}
	return kinds
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	magenta    *agentClientStub
	genie      *agentClientStub
	speaker    *speakerStub
	events     *eventRecorder
}

func newDispatcherFixture(opts ...DispatcherOption) dispatcherFixture {
	fixture := dispatcherFixture{
		magenta: &agentClientStub{reply: agents.Reply{Text: "magenta says hi"}},
		genie:   &agentClientStub{reply: agents.Reply{Text: "genie says hi"}},
		speaker: &speakerStub{},
		events:  &eventRecorder{},
	}

	registry := agents.NewRegistry()
	registry.Register("magenta", fixture.magenta)
	registry.Register("genie", fixture.genie)

	opts = append([]DispatcherOption{
		WithAgents(registry),
		WithSpeaker(fixture.speaker),
		WithEventEmitter(fixture.events.record),
	}, opts...)
	fixture.dispatcher = NewDispatcher(opts...)
	return fixture
}

func agentEntity(name string) segments.Entity {
	return segments.Entity{Type: segments.EntityAgent, Value: name}
}

func utteranceEntity(text string) segments.Entity {
	return segments.Entity{Type: segments.EntityUtterance, Value: text}
}
