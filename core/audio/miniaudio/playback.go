package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/snapscout/core/audio"
)

type playbackDevice struct {
	device *malgo.Device
	buffer playbackBuffer
}

func (p *playbackDevice) init(audioContext *malgo.AllocatedContext, encoding audio.EncodingInfo) error {
	format, err := deviceFormat(encoding)
	if err != nil {
		return err
	}
	bytesPerFrame := malgo.SampleSizeInBytes(format)
	silence := encoding.SilenceValue()

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(encoding.SampleRate)
	config.Playback.Format = format
	config.Playback.Channels = 1
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = uint32(encoding.SampleRate / 10) // ~100ms of audio
	config.Periods = 4

	p.device, err = malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			need := min(int(frameCount)*bytesPerFrame, len(pOutput))
			p.buffer.fill(pOutput[:need], silence)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

func (p *playbackDevice) start() error {
	if p.device == nil {
		return ErrNotInitialized
	}
	if p.device.IsStarted() {
		return nil
	}
	if err := p.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

func (p *playbackDevice) write(audio []byte) error {
	if p.device == nil {
		return ErrNotInitialized
	} else if !p.device.IsStarted() {
		return fmt.Errorf("playback device not started")
	}

	p.buffer.write(audio)
	return nil
}

func (p *playbackDevice) uninit() {
	p.buffer.clear()
	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
}
