package live

import "context"

// Speaker identifies which side of the conversation a fragment belongs to.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// Handler carries the event callbacks a Remote invokes as the session runs.
// Callbacks are invoked from the remote's read loop; nil callbacks are
// skipped.
type Handler struct {
	// OnOpen fires once when the remote confirms the session is open.
	OnOpen func()

	// OnAudio delivers a decoded PCM playback chunk.
	OnAudio func(pcm []byte)

	// OnTranscript delivers a partial transcript fragment for the current
	// turn.
	OnTranscript func(speaker Speaker, text string)

	// OnInterrupted signals server-side barge-in: queued playback must be
	// discarded.
	OnInterrupted func()

	// OnTurnComplete marks the end of the current exchange.
	OnTurnComplete func()

	// OnError reports a terminal session error.
	OnError func(err error)

	// OnClose fires when the remote stream ends.
	OnClose func()
}

// Remote is an open duplex stream to the AI capability. Sends are
// fire-and-forget from the session's point of view; asynchronous send
// failures come back through Handler.OnError.
type Remote interface {
	// SendAudio pushes one base64-encoded PCM capture frame.
	SendAudio(frame string) error

	// SendAttachment pushes an out-of-band attachment into the session.
	SendAttachment(data []byte, mimeType string) error

	// Close tears the stream down. Safe to call more than once.
	Close() error
}

// Dialer opens a Remote delivering events to handler. Provider
// implementations supply this; tests supply fakes.
type Dialer func(ctx context.Context, handler Handler) (Remote, error)

// Capture is a microphone-like source of fixed-size PCM16 frames. Acquiring
// the device may fail or be denied; Start is the only asynchronous step in
// session setup.
type Capture interface {
	// Start acquires the device and returns the frame stream. The channel
	// closes when the capture stops or ctx is cancelled.
	Start(ctx context.Context) (<-chan []byte, error)

	// Stop releases the device. Safe to call more than once.
	Stop() error
}

// Sink plays PCM chunks. Play begins output effectively immediately;
// ordering and gapless timing are the Scheduler's job, not the Sink's.
type Sink interface {
	Play(pcm []byte)
	StopAll()
}
