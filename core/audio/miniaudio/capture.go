package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/snapscout/core/audio"
)

type captureDevice struct {
	device *malgo.Device

	mu      sync.Mutex
	onAudio func(audio []byte)
}

func (c *captureDevice) init(audioContext *malgo.AllocatedContext, encoding audio.EncodingInfo) error {
	format, err := deviceFormat(encoding)
	if err != nil {
		return err
	}
	bytesPerFrame := malgo.SampleSizeInBytes(format)

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(encoding.SampleRate)
	config.Capture.Format = format
	config.Capture.Channels = 1
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	c.device, err = malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}

			c.mu.Lock()
			onAudio := c.onAudio
			c.mu.Unlock()
			if onAudio != nil {
				// The device reuses its buffer after the callback returns.
				onAudio(append([]byte(nil), pInput[:n]...))
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

func (c *captureDevice) start(onAudio func(audio []byte)) error {
	if c.device == nil {
		return ErrNotInitialized
	}

	c.mu.Lock()
	c.onAudio = onAudio
	c.mu.Unlock()

	if c.device.IsStarted() {
		return nil
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureDevice) stop() error {
	if c.device == nil {
		return ErrNotInitialized
	}

	c.mu.Lock()
	c.onAudio = nil
	c.mu.Unlock()

	if !c.device.IsStarted() {
		return nil
	}
	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (c *captureDevice) uninit() {
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
}
