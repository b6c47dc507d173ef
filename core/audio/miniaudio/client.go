// Package miniaudio connects the local microphone and speakers through
// miniaudio.
package miniaudio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/snapscout/core/audio"
)

var ErrNotInitialized = errors.New("audio device not initialized")

// Device captures mono audio from the default microphone and plays mono audio
// on the default speakers. Capture and playback may use different rates.
type Device struct {
	// audioContext is only kept so it can be released on Close.
	audioContext *malgo.AllocatedContext
	capture      captureDevice
	playback     playbackDevice

	captureEncoding  audio.EncodingInfo
	playbackEncoding audio.EncodingInfo
}

type DeviceOption func(*Device)

func WithCaptureEncoding(encoding audio.EncodingInfo) DeviceOption {
	return func(d *Device) {
		if !encoding.IsZero() {
			d.captureEncoding = encoding
		}
	}
}

func WithPlaybackEncoding(encoding audio.EncodingInfo) DeviceOption {
	return func(d *Device) {
		if !encoding.IsZero() {
			d.playbackEncoding = encoding
		}
	}
}

// NewDevice opens both devices and starts playback. Capture starts with
// [Device.StartCapture].
func NewDevice(opts ...DeviceOption) (*Device, error) {
	d := &Device{
		captureEncoding:  audio.GetDefaultEncodingInfo(),
		playbackEncoding: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(d)
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	d.audioContext = audioCtx

	if err := d.playback.init(audioCtx, d.playbackEncoding); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.playback.start(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.capture.init(audioCtx, d.captureEncoding); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

func (d *Device) CaptureEncoding() audio.EncodingInfo  { return d.captureEncoding }
func (d *Device) PlaybackEncoding() audio.EncodingInfo { return d.playbackEncoding }

// StartCapture delivers microphone audio to onAudio until StopCapture.
func (d *Device) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return d.capture.start(onAudio)
}

func (d *Device) StopCapture() error {
	return d.capture.stop()
}

// Write queues audio for playback.
func (d *Device) Write(audio []byte) error {
	return d.playback.write(audio)
}

// Drain waits until the audio queued so far was played or ctx is done.
func (d *Device) Drain(ctx context.Context) error {
	select {
	case <-d.playback.buffer.mark():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear drops queued playback audio.
func (d *Device) Clear() {
	d.playback.buffer.clear()
}

func (d *Device) Close() {
	d.capture.uninit()
	d.playback.uninit()
	if d.audioContext != nil {
		_ = d.audioContext.Uninit()
		d.audioContext.Free()
		d.audioContext = nil
	}
}

func deviceFormat(encoding audio.EncodingInfo) (malgo.FormatType, error) {
	switch encoding.Format {
	case audio.EncodingLinear16:
		return malgo.FormatS16, nil
	}
	return malgo.FormatUnknown, fmt.Errorf("unsupported device encoding %q", encoding.Format.Name())
}
