package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	orchestration "github.com/koscakluka/snapscout/core"
	"github.com/koscakluka/snapscout/core/events"
	"github.com/koscakluka/snapscout/core/segments"
	"github.com/koscakluka/snapscout/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

// Message types exchanged over /ws.
const (
	MessageSegment    = "segment"
	MessageSpeak      = "speak"
	MessageTranscript = "transcript"
	MessageAgent      = "agent"
	MessageError      = "error"
)

// InboundMessage is sent by the browser.
type InboundMessage struct {
	Type    string          `json:"type"`
	Segment json.RawMessage `json:"segment,omitempty"`
}

// OutboundMessage is sent to the browser.
type OutboundMessage struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`
	Agent string `json:"agent,omitempty"`
	Error string `json:"error,omitempty"`
}

// session is one browser connection with its own dispatcher and therefore
// its own active agent.
type session struct {
	id         string
	conn       *websocket.Conn
	server     *Server
	dispatcher *orchestration.Dispatcher

	send      chan OutboundMessage
	done      chan struct{}
	closeOnce sync.Once
}

func (s *Server) serveWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WarnContext(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sess := s.newSession(conn)
	s.addSession(sess)
	defer s.removeSession(sess)

	go sess.writePump()
	sess.readPump()
}

func (s *Server) newSession(conn *websocket.Conn) *session {
	sess := &session{
		id:     uuid.NewString(),
		conn:   conn,
		server: s,
		send:   make(chan OutboundMessage, sendBufferSize),
		done:   make(chan struct{}),
	}

	opts := append([]orchestration.DispatcherOption{
		orchestration.WithAgents(s.agents),
		orchestration.WithSpeaker(texttospeech.SpeakerFunc(sess.speak)),
		orchestration.WithEventEmitter(sess.forwardEvent),
	}, s.dispatcherOptions...)
	sess.dispatcher = orchestration.NewDispatcher(opts...)

	logger.Info("voice session opened", "session_id", sess.id)
	return sess
}

// speak asks the browser to speak text with its own speech synthesis.
func (sess *session) speak(_ context.Context, text string) error {
	if !sess.enqueue(OutboundMessage{Type: MessageSpeak, Text: text}) {
		return fmt.Errorf("voice session %s cannot deliver speech", sess.id)
	}
	return nil
}

func (sess *session) forwardEvent(event events.Event) {
	switch event := event.(type) {
	case events.SegmentInterim:
		sess.enqueue(OutboundMessage{Type: MessageTranscript, Text: event.Text})
	case events.SegmentFinal:
		sess.enqueue(OutboundMessage{Type: MessageTranscript, Text: event.Text, Final: true})
	case events.AgentActivated:
		sess.enqueue(OutboundMessage{Type: MessageAgent, Agent: event.Agent})
	case events.AgentTerminated:
		sess.enqueue(OutboundMessage{Type: MessageAgent})
	}
}

// enqueue never blocks; messages are dropped when the browser is too slow or
// the session is closed.
func (sess *session) enqueue(msg OutboundMessage) bool {
	select {
	case <-sess.done:
		return false
	default:
	}

	select {
	case sess.send <- msg:
		return true
	case <-sess.done:
		return false
	default:
		logger.Warn("voice session send buffer full, dropping message", "session_id", sess.id, "type", msg.Type)
		return false
	}
}

func (sess *session) readPump() {
	defer sess.close()

	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("voice session read failed", "session_id", sess.id, "error", err)
			}
			return
		}
		sess.handleMessage(data)
	}
}

func (sess *session) handleMessage(data []byte) {
	ctx, span := tracer.Start(context.Background(), "voice session message",
		trace.WithAttributes(attribute.String("session.id", sess.id)))
	defer span.End()

	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		sess.reject(ctx, fmt.Errorf("invalid message: %w", err))
		return
	}

	switch msg.Type {
	case MessageSegment:
		segment, err := segments.Decode(msg.Segment)
		if err != nil {
			sess.reject(ctx, err)
			return
		}
		segment = sess.server.tagger.Tag(segment)

		if err := sess.dispatcher.Handle(ctx, segment); err != nil && !errors.Is(err, orchestration.ErrClosed) {
			sess.reject(ctx, err)
		}
	default:
		sess.reject(ctx, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

func (sess *session) reject(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.WarnContext(ctx, "voice session message rejected", "session_id", sess.id, "error", err)
	sess.enqueue(OutboundMessage{Type: MessageError, Error: err.Error()})
}

func (sess *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteJSON(msg); err != nil {
				logger.Warn("voice session write failed", "session_id", sess.id, "error", err)
				sess.close()
				return
			}
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.close()
				return
			}
		case <-sess.done:
			return
		}
	}
}

// close stops the dispatcher, which cancels pending agent calls, and
// closes the connection. It is safe to call more than once.
func (sess *session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		sess.dispatcher.Close()
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = sess.conn.Close()
		logger.Info("voice session closed", "session_id", sess.id)
	})
}
