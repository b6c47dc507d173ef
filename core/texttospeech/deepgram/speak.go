package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type controlMsg struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

var (
	flushMsg = controlMsg{Type: "Flush"}
	closeMsg = controlMsg{Type: "Close"}
)

func speakMsg(text string) controlMsg { return controlMsg{Type: "Speak", Text: text} }

// Speak synthesises text and streams the audio to the configured audio
// callback. It returns once Deepgram confirms the text was flushed.
func (c *TextToSpeechClient) Speak(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "speak text")
	defer span.End()
	span.SetAttributes(attribute.String("tts.voice", string(c.voice)), attribute.Int("tts.text_length", len(text)))

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.speak(ctx, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.options.ErrorCallback(err)
		return err
	}

	c.options.SpeechEndedCallback(text)
	return nil
}

func (c *TextToSpeechClient) speak(ctx context.Context, text string) error {
	endpoint, err := c.speakEndpoint()
	if err != nil {
		return err
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(speakMsg(text)); err != nil {
		return fmt.Errorf("failed to send speak message: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return fmt.Errorf("failed to send flush message: %w", err)
	}

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read deepgram message: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			c.options.SpeechAudioCallback(msg)
		case websocket.TextMessage:
			var parsedMsg struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Warn("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				if err := conn.WriteJSON(closeMsg); err != nil {
					logger.Debug("failed to close deepgram speak stream", "error", err)
				}
				return nil
			case "Warning":
				logger.Warn("deepgram speak warning", "description", parsedMsg.Description)
			case "Error":
				return fmt.Errorf("deepgram speak error: %s", parsedMsg.Description)
			}
		}
	}
}
