package deepgram

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/snapscout/core/audio"
	"github.com/koscakluka/snapscout/core/texttospeech"
)

const defaultSpeakURL = "wss://api.deepgram.com/v1/speak"

// TextToSpeechClient speaks text through the Deepgram streaming speak API.
// Utterances are synthesised one at a time so their audio never interleaves.
type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	voice    Voice
	options  texttospeech.TextToSpeechOptions
	dialer   *websocket.Dialer

	mu sync.Mutex
}

type ClientOption func(*TextToSpeechClient)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *TextToSpeechClient) { c.apiKey = apiKey }
}

// WithSpeakURL points the client at a different speak endpoint.
func WithSpeakURL(speakURL string) ClientOption {
	return func(c *TextToSpeechClient) { c.speakURL = speakURL }
}

func WithSpeechOptions(opts ...texttospeech.TextToSpeechOption) ClientOption {
	return func(c *TextToSpeechClient) {
		for _, opt := range opts {
			opt(&c.options)
		}
	}
}

func NewTextToSpeechClient(voice Voice, opts ...ClientOption) (*TextToSpeechClient, error) {
	if voice == "" {
		voice = DefaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", voice)
	}

	client := &TextToSpeechClient{
		speakURL: defaultSpeakURL,
		voice:    voice,
		dialer:   websocket.DefaultDialer,
		options: texttospeech.TextToSpeechOptions{
			SpeechAudioCallback: func([]byte) {},
			SpeechEndedCallback: func(string) {},
			ErrorCallback:       func(error) {},
			EncodingInfo:        audio.EncodingInfo{SampleRate: 24000, Format: audio.EncodingLinear16},
		},
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("deepgram api key not found")
		}
		client.apiKey = apiKey
	}

	return client, nil
}

func (c *TextToSpeechClient) Voice() Voice { return c.voice }

func (c *TextToSpeechClient) EncodingInfo() audio.EncodingInfo { return c.options.EncodingInfo }

func (c *TextToSpeechClient) speakEndpoint() (string, error) {
	endpoint, err := url.Parse(c.speakURL)
	if err != nil {
		return "", fmt.Errorf("invalid speak url: %w", err)
	}

	query := endpoint.Query()
	query.Set("model", string(c.voice))
	query.Set("encoding", c.options.EncodingInfo.Format.Name())
	query.Set("sample_rate", fmt.Sprint(c.options.EncodingInfo.SampleRate))
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}
