package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/Anety5/ioa-studio/pkg/live"
)

// Speaker implements live.Sink on the default system output device. It is a
// pull-based oto player fed from an internal buffer; StopAll drops buffered
// audio and resets the player so stale output never overlaps fresh output.
type Speaker struct {
	otoCtx *oto.Context

	mu      sync.Mutex
	cond    *sync.Cond
	player  *oto.Player
	buf     []byte
	playing bool
	closed  bool
}

// NewSpeaker opens the output device in the standard playback format and
// blocks until it is ready.
func NewSpeaker() (*Speaker, error) {
	format := live.PlaybackFormat()
	opts := &oto.NewContextOptions{
		SampleRate:   format.SampleRateHz,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		// ~100ms buffer keeps latency low without glitching.
		BufferSize: format.BytesPerSecond() / 10,
	}
	otoCtx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready

	s := &Speaker{otoCtx: otoCtx}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

// Play queues pcm for immediate output.
func (s *Speaker) Play(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.buf = append(s.buf, pcm...)
	if !s.playing {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
}

// Read implements io.Reader for the oto player. It blocks until audio is
// buffered or the speaker closes.
func (s *Speaker) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed && len(s.buf) == 0 {
		// Feed silence so oto drains gracefully.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// StopAll discards buffered audio and stops playback immediately.
func (s *Speaker) StopAll() {
	s.mu.Lock()
	s.buf = s.buf[:0]
	if s.player == nil || !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	player := s.player
	s.player = nil
	s.mu.Unlock()

	// Pause first so output stops now, then reset to drop oto's internal
	// buffer.
	player.Pause()
	player.Reset()
	player.Close()
}

// Close releases the output device.
func (s *Speaker) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		player.Close()
	}
}
