package console

import (
	"context"
	"fmt"

	"github.com/koscakluka/snapscout/core/audio"
	"github.com/koscakluka/snapscout/core/audio/miniaudio"
	"github.com/koscakluka/snapscout/core/intents"
	"github.com/koscakluka/snapscout/core/segments"
	"github.com/koscakluka/snapscout/core/speechtotext"
	sttdeepgram "github.com/koscakluka/snapscout/core/speechtotext/deepgram"
	"github.com/koscakluka/snapscout/core/texttospeech"
	ttsdeepgram "github.com/koscakluka/snapscout/core/texttospeech/deepgram"
)

type VoiceOptions struct {
	DeepgramAPIKey string
	Voice          string
}

// voiceSession transcribes the microphone with Deepgram and speaks through
// Deepgram synthesis on the local speakers.
type voiceSession struct {
	device        *miniaudio.Device
	transcription *sttdeepgram.TranscriptionClient
	synthesis     *ttsdeepgram.TextToSpeechClient
}

func startVoice(_ context.Context, opts VoiceOptions) (*voiceSession, error) {
	v := &voiceSession{}

	synthesis, err := ttsdeepgram.NewTextToSpeechClient(ttsdeepgram.Voice(opts.Voice),
		ttsdeepgram.WithAPIKey(opts.DeepgramAPIKey),
		ttsdeepgram.WithSpeechOptions(
			texttospeech.WithSpeechAudioCallback(v.play),
			texttospeech.WithErrorCallback(func(err error) {
				logger.Warn("speech synthesis failed", "voice", opts.Voice, "error", err)
				v.device.Clear()
			}),
		))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech synthesis client: %w", err)
	}
	v.synthesis = synthesis

	transcription, err := sttdeepgram.NewTranscriptionClient(sttdeepgram.WithAPIKey(opts.DeepgramAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription client: %w", err)
	}
	v.transcription = transcription

	device, err := miniaudio.NewDevice(
		miniaudio.WithCaptureEncoding(audio.GetDefaultEncodingInfo()),
		miniaudio.WithPlaybackEncoding(synthesis.EncodingInfo()))
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	v.device = device

	return v, nil
}

func (v *voiceSession) play(chunk []byte) {
	if v.device == nil {
		return
	}
	if err := v.device.Write(chunk); err != nil {
		logger.Warn("failed to play synthesised audio", "error", err)
	}
}

// Speak synthesises text and waits until it was played.
func (v *voiceSession) Speak(ctx context.Context, text string) error {
	if err := v.synthesis.Speak(ctx, text); err != nil {
		return err
	}
	return v.device.Drain(ctx)
}

// Listen streams the microphone to Deepgram and hands every segment to
// onSegment.
func (v *voiceSession) Listen(ctx context.Context, tagger *intents.Tagger, onSegment func(segments.Segment)) error {
	if err := v.transcription.Transcribe(ctx,
		speechtotext.WithEncodingInfo(v.device.CaptureEncoding()),
		speechtotext.WithTagger(tagger),
		speechtotext.WithSegmentCallback(onSegment),
	); err != nil {
		return err
	}

	return v.device.StartCapture(ctx, func(chunk []byte) {
		if err := v.transcription.SendAudio(chunk); err != nil {
			logger.Debug("failed to send audio to deepgram", "error", err)
		}
	})
}

func (v *voiceSession) Close() {
	if v.device != nil {
		_ = v.device.StopCapture()
		v.device.Clear()
	}
	if v.transcription != nil {
		if err := v.transcription.Close(); err != nil {
			logger.Warn("failed to close transcription", "error", err)
		}
	}
	if v.device != nil {
		v.device.Close()
	}
}
