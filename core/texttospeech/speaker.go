// Package texttospeech defines the synthesis sink replies are spoken through.
package texttospeech

import (
	"context"
	"errors"
)

// Speaker speaks text aloud. Callers treat it as fire-and-forget; the error
// is only used for diagnostics.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the [Speaker] interface.
type SpeakerFunc func(ctx context.Context, text string) error

func (f SpeakerFunc) Speak(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Multi speaks through every speaker in order and joins their errors.
func Multi(speakers ...Speaker) Speaker {
	return SpeakerFunc(func(ctx context.Context, text string) error {
		var errs []error
		for _, speaker := range speakers {
			if speaker == nil {
				continue
			}
			if err := speaker.Speak(ctx, text); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Discard is a speaker that drops everything.
var Discard Speaker = SpeakerFunc(func(context.Context, string) error { return nil })
