package texttospeech

import "github.com/koscakluka/snapscout/core/audio"

type TextToSpeechOptions struct {
	// SpeechAudioCallback is called for every chunk of synthesised audio
	SpeechAudioCallback func(audio []byte)
	// SpeechEndedCallback is called once all audio for a text was delivered
	SpeechEndedCallback func(text string)
	// ErrorCallback is called when synthesis fails part way through
	ErrorCallback func(error)

	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithSpeechAudioCallback(callback func([]byte)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechAudioCallback = callback }
}

func WithSpeechEndedCallback(callback func(text string)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechEndedCallback = callback }
}

func WithErrorCallback(callback func(error)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.ErrorCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}
