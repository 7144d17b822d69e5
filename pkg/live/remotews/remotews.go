// Package remotews speaks the studio live WebSocket protocol. All frames are
// JSON text messages tagged with a "type" field; audio travels base64-encoded
// inside them.
package remotews

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Anety5/ioa-studio/pkg/live"
)

const defaultConnectTimeout = 15 * time.Second

// Config describes how to reach the live endpoint.
type Config struct {
	// URL is the ws:// or wss:// endpoint.
	URL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Model selects the remote model for the session.
	Model string
	// Voice selects the spoken voice.
	Voice string
	// ConnectTimeout bounds the dial plus handshake. Zero means 15s.
	ConnectTimeout time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// clientHello opens a session.
type clientHello struct {
	Type         string `json:"type"`
	Model        string `json:"model,omitempty"`
	Voice        string `json:"voice,omitempty"`
	SampleRateHz int    `json:"sample_rate_hz"`
}

// clientAudioFrame carries one base64 PCM capture frame upstream.
type clientAudioFrame struct {
	Type    string `json:"type"`
	DataB64 string `json:"data"`
}

// clientAttachment carries an out-of-band attachment upstream.
type clientAttachment struct {
	Type     string `json:"type"`
	DataB64  string `json:"data"`
	MimeType string `json:"mime_type"`
}

// serverFrame is the superset of all downstream frames; Type selects which
// fields are meaningful.
type serverFrame struct {
	Type    string `json:"type"`
	DataB64 string `json:"data,omitempty"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text,omitempty"`
	Error   *struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	} `json:"error,omitempty"`
}

// Remote is a live.Remote over a websocket connection.
type Remote struct {
	conn    *websocket.Conn
	handler live.Handler
	logger  *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

// Dialer returns a live.Dialer for the configured endpoint.
func Dialer(cfg Config) live.Dialer {
	return func(ctx context.Context, handler live.Handler) (live.Remote, error) {
		return Dial(ctx, cfg, handler)
	}
}

// Dial connects, sends the hello frame, and starts the read loop. The
// session is confirmed asynchronously: handler.OnOpen fires when the server
// acknowledges the hello.
func Dial(ctx context.Context, cfg Config, handler live.Handler) (*Remote, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	headers := make(http.Header)
	if cfg.APIKey != "" {
		headers.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	dialer := websocket.DefaultDialer
	conn, resp, err := dialer.DialContext(dialCtx, cfg.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s (status %d): %w", cfg.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", cfg.URL, err)
	}

	hello := clientHello{
		Type:         "hello",
		Model:        cfg.Model,
		Voice:        cfg.Voice,
		SampleRateHz: live.CaptureFormat().SampleRateHz,
	}
	if err := conn.WriteJSON(hello); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send hello: %w", err)
	}

	r := &Remote{
		conn:    conn,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

// SendAudio pushes one base64-encoded capture frame.
func (r *Remote) SendAudio(frame string) error {
	return r.sendJSON(clientAudioFrame{Type: "audio_frame", DataB64: frame})
}

// SendAttachment pushes an attachment into the running session.
func (r *Remote) SendAttachment(data []byte, mimeType string) error {
	return r.sendJSON(clientAttachment{
		Type:     "attachment",
		DataB64:  live.EncodeFrame(data),
		MimeType: mimeType,
	})
}

func (r *Remote) sendJSON(v any) error {
	if r.closed.Load() {
		return fmt.Errorf("remote is closed")
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteJSON(v)
}

// Close tears the connection down. Safe to call more than once, including
// from inside a handler callback; it does not wait for the read loop.
func (r *Remote) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.writeMu.Lock()
		_ = r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		r.writeMu.Unlock()
		_ = r.conn.Close()
	})
	return nil
}

// Done is closed when the read loop has exited.
func (r *Remote) Done() <-chan struct{} {
	return r.done
}

func (r *Remote) readLoop() {
	defer close(r.done)

	for {
		messageType, data, err := r.conn.ReadMessage()
		if err != nil {
			if r.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.emitClose()
				return
			}
			r.emitError(err)
			return
		}
		if messageType != websocket.TextMessage {
			r.logger.Warn("ignoring non-text live frame", "message_type", messageType)
			continue
		}
		if err := r.dispatch(data); err != nil {
			r.emitError(err)
			return
		}
	}
}

func (r *Remote) dispatch(data []byte) error {
	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return fmt.Errorf("decode live frame: %w", err)
	}

	switch frame.Type {
	case "hello_ack":
		if r.handler.OnOpen != nil {
			r.handler.OnOpen()
		}
	case "audio_chunk":
		pcm, err := live.DecodeChunk(frame.DataB64)
		if err != nil {
			return fmt.Errorf("decode audio chunk: %w", err)
		}
		if r.handler.OnAudio != nil {
			r.handler.OnAudio(pcm)
		}
	case "transcript_delta":
		speaker := live.SpeakerModel
		if frame.Speaker == "user" {
			speaker = live.SpeakerUser
		}
		if r.handler.OnTranscript != nil {
			r.handler.OnTranscript(speaker, frame.Text)
		}
	case "interrupted":
		if r.handler.OnInterrupted != nil {
			r.handler.OnInterrupted()
		}
	case "turn_complete":
		if r.handler.OnTurnComplete != nil {
			r.handler.OnTurnComplete()
		}
	case "error":
		msg := "live session error"
		if frame.Error != nil && frame.Error.Message != "" {
			msg = frame.Error.Message
		}
		return fmt.Errorf("remote: %s", msg)
	default:
		// Unknown frame types are forward compatibility, not errors.
		r.logger.Debug("ignoring unknown live frame", "type", frame.Type)
	}
	return nil
}

func (r *Remote) emitClose() {
	if r.handler.OnClose != nil {
		r.handler.OnClose()
	}
}

func (r *Remote) emitError(err error) {
	if r.handler.OnError != nil {
		r.handler.OnError(err)
	}
}
