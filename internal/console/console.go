// Package console drives the voice dispatcher from the terminal, either with
// typed utterances or with the microphone.
package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/snapscout/core"
	"github.com/koscakluka/snapscout/core/agents"
	"github.com/koscakluka/snapscout/core/events"
	"github.com/koscakluka/snapscout/core/intents"
	"github.com/koscakluka/snapscout/core/segments"
	"github.com/koscakluka/snapscout/core/texttospeech"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const (
	scopeName       = "github.com/koscakluka/snapscout/internal/console"
	eventBufferSize = 128
)

var logger = otelslog.NewLogger(scopeName)

type Options struct {
	Agents     agents.Selector
	AgentNames []string
	// DispatcherOptions are applied after the agents, speaker and event
	// emitter set up by the console.
	DispatcherOptions []orchestration.DispatcherOption
	// Voice enables microphone input and spoken replies.
	Voice *VoiceOptions
}

// Run shows the console until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventsCh := make(chan events.Event, eventBufferSize)
	emit := func(event events.Event) {
		select {
		case eventsCh <- event:
		default:
			logger.Warn("console event buffer full, dropping event", "kind", string(event.Kind()))
		}
	}

	tagger := intents.NewTagger(opts.AgentNames...)
	spokenCh := make(chan string, eventBufferSize)
	var speaker texttospeech.Speaker = transcriptSpeaker{spoken: spokenCh}
	var voice *voiceSession
	if opts.Voice != nil {
		var err error
		voice, err = startVoice(ctx, *opts.Voice)
		if err != nil {
			return fmt.Errorf("failed to start voice mode: %w", err)
		}
		defer voice.Close()
		speaker = texttospeech.Multi(speaker, voice)
	}

	dispatcherOpts := append([]orchestration.DispatcherOption{
		orchestration.WithAgents(opts.Agents),
		orchestration.WithSpeaker(speaker),
		orchestration.WithEventEmitter(emit),
	}, opts.DispatcherOptions...)
	dispatcher := orchestration.NewDispatcher(dispatcherOpts...)
	defer dispatcher.Close()

	segmentsCh := make(chan segments.Segment, eventBufferSize)
	go func() {
		if err := dispatcher.Run(ctx, segmentsCh); err != nil && ctx.Err() == nil {
			logger.Error("dispatcher stopped", "error", err)
		}
	}()

	if voice != nil {
		if err := voice.Listen(ctx, tagger, func(segment segments.Segment) {
			select {
			case segmentsCh <- segment:
			case <-ctx.Done():
			}
		}); err != nil {
			return fmt.Errorf("failed to start listening: %w", err)
		}
	}

	submit := func(text string) {
		segment := tagger.Tag(segments.NewFinal(text, ""))
		select {
		case segmentsCh <- segment:
		case <-ctx.Done():
		}
	}

	program := tea.NewProgram(NewModel(submit, eventsCh, spokenCh, voice != nil), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

// transcriptSpeaker shows spoken text in the console transcript.
type transcriptSpeaker struct {
	spoken chan<- string
}

func (s transcriptSpeaker) Speak(ctx context.Context, text string) error {
	select {
	case s.spoken <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
