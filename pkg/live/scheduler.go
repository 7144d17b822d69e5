package live

import (
	"sync"
	"time"
)

// Scheduler queues remote audio chunks for gapless playback. Each chunk
// starts at the later of "now" and the end of the previously scheduled
// chunk, so a steady stream plays back-to-back with no gaps and no overlap.
// Flush discards everything not yet handed to the sink and resets the
// timeline to now, which is how server-side barge-in lands.
type Scheduler struct {
	sink   Sink
	format Format
	now    func() time.Duration

	mu      sync.Mutex
	tail    time.Duration
	pending map[int]*time.Timer
	nextID  int
}

// NewScheduler creates a scheduler playing into sink.
func NewScheduler(sink Sink, format Format) *Scheduler {
	epoch := time.Now()
	return &Scheduler{
		sink:    sink,
		format:  format,
		now:     func() time.Duration { return time.Since(epoch) },
		pending: make(map[int]*time.Timer),
	}
}

// WithNow overrides the scheduler clock. Tests use this to make start times
// deterministic.
func (s *Scheduler) WithNow(now func() time.Duration) *Scheduler {
	s.now = now
	return s
}

// Schedule queues one chunk and returns its start time on the scheduler
// clock.
func (s *Scheduler) Schedule(pcm []byte) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	start := now
	if s.tail > start {
		start = s.tail
	}
	s.tail = start + s.format.Duration(len(pcm))

	id := s.nextID
	s.nextID++
	delay := start - now
	s.pending[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if live {
			s.sink.Play(pcm)
		}
	})
	return start
}

// Flush stops and discards every scheduled-but-unplayed chunk and resets the
// timeline to now.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
	s.tail = s.now()
	s.mu.Unlock()

	s.sink.StopAll()
}

// PendingChunks returns how many chunks are queued but not yet played.
func (s *Scheduler) PendingChunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
