package orchestration

import "github.com/koscakluka/snapscout/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newEventEmitter(emit func(events.Event)) eventEmitter {
	if emit == nil {
		return noopEventEmitter
	}
	return func(event events.Event) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("event receiver panicked", "kind", string(event.Kind()), "panic", recovered)
			}
		}()
		emit(event)
	}
}
