package miniaudio

import "sync"

// playbackBuffer queues audio for the playback device and lets writers wait
// until everything queued so far has been handed to the device.
type playbackBuffer struct {
	mu      sync.Mutex
	pending []byte
	marks   []playbackMark
}

type playbackMark struct {
	// position is the number of pending bytes that must be consumed before
	// the mark is passed.
	position int
	passed   chan struct{}
}

func (b *playbackBuffer) write(audio []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, audio...)
}

// fill copies queued audio into out, pads the rest with silence and returns
// the number of queued bytes consumed.
func (b *playbackBuffer) fill(out []byte, silence byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(out, b.pending)
	for i := n; i < len(out); i++ {
		out[i] = silence
	}
	b.pending = b.pending[n:]
	if len(b.pending) == 0 {
		b.pending = nil
	}

	kept := b.marks[:0]
	for _, mark := range b.marks {
		mark.position -= n
		if mark.position <= 0 {
			close(mark.passed)
			continue
		}
		kept = append(kept, mark)
	}
	b.marks = kept

	return n
}

// mark returns a channel closed once the audio queued so far was consumed.
func (b *playbackBuffer) mark() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	passed := make(chan struct{})
	if len(b.pending) == 0 {
		close(passed)
		return passed
	}
	b.marks = append(b.marks, playbackMark{position: len(b.pending), passed: passed})
	return passed
}

// clear drops queued audio and releases every waiting mark.
func (b *playbackBuffer) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = nil
	for _, mark := range b.marks {
		close(mark.passed)
	}
	b.marks = nil
}

func (b *playbackBuffer) buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
