package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the lifecycle phase of a Session.
type State int

const (
	// StateIdle means no session is active. Start is only legal here.
	StateIdle State = iota
	// StateConnecting means the microphone and remote stream are being
	// acquired.
	StateConnecting
	// StateLive means the duplex stream is open and audio is flowing.
	StateLive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotIdle is returned by Start when a session is already running.
	ErrNotIdle = errors.New("live: session already started")
	// ErrNotLive is returned by SendAttachment outside the live state.
	ErrNotLive = errors.New("live: session is not live")
)

// Session drives one live voice conversation: it captures microphone frames,
// streams them to a Remote, schedules returned audio for gapless playback,
// and accumulates the transcript. A Session is reusable: after Stop it
// returns to idle and Start may be called again.
type Session struct {
	dial       Dialer
	capture    Capture
	scheduler  *Scheduler
	transcript *Transcript
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time

	mu        sync.Mutex
	state     State
	remote    Remote
	cancel    context.CancelFunc
	startedAt time.Time
	err       error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithScheduler replaces the default playback scheduler.
func WithScheduler(sched *Scheduler) SessionOption {
	return func(s *Session) { s.scheduler = sched }
}

// NewSession creates an idle session. Playback goes through sink with the
// standard 24 kHz playback format unless WithScheduler overrides it.
func NewSession(dial Dialer, capture Capture, sink Sink, opts ...SessionOption) *Session {
	s := &Session{
		dial:       dial,
		capture:    capture,
		scheduler:  NewScheduler(sink, PlaybackFormat()),
		transcript: NewTranscript(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that ended the last session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Transcript returns the session transcript.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Start moves the session from idle to connecting: it acquires the
// microphone, then dials the remote. The session becomes live once the
// remote confirms the stream is open. Start fails without side effects if
// either step fails; the session is back in idle and may be retried.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	s.state = StateConnecting
	s.err = nil
	s.mu.Unlock()

	s.transcript.Reset()

	ctx, cancel := context.WithCancel(ctx)

	frames, err := s.capture.Start(ctx)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateIdle
		s.err = err
		s.mu.Unlock()
		s.metrics.RecordError("capture")
		return fmt.Errorf("start capture: %w", err)
	}

	remote, err := s.dial(ctx, s.handler(ctx, frames))
	if err != nil {
		cancel()
		s.capture.Stop()
		s.mu.Lock()
		s.state = StateIdle
		s.err = err
		s.mu.Unlock()
		s.metrics.RecordError("dial")
		return fmt.Errorf("dial remote: %w", err)
	}

	s.mu.Lock()
	if s.state == StateIdle {
		// The remote failed or closed before the dial returned and teardown
		// already ran without seeing it; finish the cleanup here.
		err := s.err
		s.mu.Unlock()
		cancel()
		s.capture.Stop()
		remote.Close()
		if err == nil {
			err = errors.New("remote closed during start")
		}
		return fmt.Errorf("dial remote: %w", err)
	}
	s.remote = remote
	s.cancel = cancel
	s.startedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("live session connecting")
	return nil
}

// SendAttachment pushes an out-of-band attachment into the conversation.
// Only legal while live.
func (s *Session) SendAttachment(data []byte, mimeType string) error {
	s.mu.Lock()
	if s.state != StateLive {
		s.mu.Unlock()
		return ErrNotLive
	}
	remote := s.remote
	s.mu.Unlock()

	if err := remote.SendAttachment(data, mimeType); err != nil {
		return fmt.Errorf("send attachment: %w", err)
	}
	s.transcript.AppendMarker(SpeakerUser, fmt.Sprintf("[attachment: %s]", mimeType))
	return nil
}

// Stop ends the session and returns it to idle. Calling Stop on an idle
// session is a no-op.
func (s *Session) Stop() {
	s.teardown("stopped", nil)
}

func (s *Session) handler(ctx context.Context, frames <-chan []byte) Handler {
	return Handler{
		OnOpen: func() {
			s.mu.Lock()
			if s.state != StateConnecting {
				s.mu.Unlock()
				return
			}
			s.state = StateLive
			s.mu.Unlock()

			s.metrics.RecordSessionStart()
			s.logger.Info("live session open")
			go s.pump(ctx, frames)
		},
		OnAudio: func(pcm []byte) {
			s.metrics.RecordAudio("playback", len(pcm))
			s.scheduler.Schedule(pcm)
		},
		OnTranscript: func(speaker Speaker, text string) {
			s.transcript.Append(speaker, text)
		},
		OnInterrupted: func() {
			s.metrics.RecordInterruption()
			s.logger.Debug("playback interrupted")
			s.scheduler.Flush()
		},
		OnTurnComplete: func() {
			s.metrics.RecordTurn()
			s.transcript.CommitTurn()
		},
		OnError: func(err error) {
			s.metrics.RecordError("remote")
			s.logger.Error("live session error", "error", err)
			s.teardown("error", err)
		},
		OnClose: func() {
			s.teardown("closed", nil)
		},
	}
}

// pump streams captured frames to the remote until the session ends or the
// capture channel closes.
func (s *Session) pump(ctx context.Context, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			s.mu.Lock()
			remote := s.remote
			s.mu.Unlock()
			if remote == nil {
				// Start has not finished publishing the remote yet.
				continue
			}
			if err := remote.SendAudio(EncodeFrame(frame)); err != nil {
				s.metrics.RecordError("send")
				s.logger.Error("send audio frame", "error", err)
				s.teardown("error", err)
				return
			}
			s.metrics.RecordAudio("capture", len(frame))
		}
	}
}

func (s *Session) teardown(status string, err error) {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	wasLive := s.state == StateLive
	remote := s.remote
	cancel := s.cancel
	startedAt := s.startedAt
	s.state = StateIdle
	s.remote = nil
	s.cancel = nil
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.capture.Stop()
	s.scheduler.Flush()
	if remote != nil {
		remote.Close()
	}
	if wasLive {
		s.metrics.RecordSessionEnd(status, s.now().Sub(startedAt))
	}
	s.logger.Info("live session ended", "status", status)
}
