package live

import (
	"sync"
	"testing"
	"time"
)

type fakeSink struct {
	mu     sync.Mutex
	played [][]byte
	stops  int
}

func (s *fakeSink) Play(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, pcm)
}

func (s *fakeSink) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *fakeSink) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

func TestScheduler_ChunksAreGapless(t *testing.T) {
	sink := &fakeSink{}
	sched := NewScheduler(sink, PlaybackFormat()).WithNow(func() time.Duration { return 0 })

	format := PlaybackFormat()
	d1, d2, d3 := 100*time.Millisecond, 40*time.Millisecond, 250*time.Millisecond

	starts := []time.Duration{
		sched.Schedule(make([]byte, format.FrameBytes(d1))),
		sched.Schedule(make([]byte, format.FrameBytes(d2))),
		sched.Schedule(make([]byte, format.FrameBytes(d3))),
	}
	want := []time.Duration{0, d1, d1 + d2}
	for i := range want {
		if starts[i] != want[i] {
			t.Errorf("chunk %d start = %v, want %v", i, starts[i], want[i])
		}
	}
}

func TestScheduler_IdleGapRestartsAtNow(t *testing.T) {
	sink := &fakeSink{}
	now := time.Duration(0)
	sched := NewScheduler(sink, PlaybackFormat()).WithNow(func() time.Duration { return now })

	chunk := make([]byte, PlaybackFormat().FrameBytes(50*time.Millisecond))
	if got := sched.Schedule(chunk); got != 0 {
		t.Fatalf("first start = %v, want 0", got)
	}

	// The stream goes quiet past the end of the queue; the next chunk must
	// not be scheduled in the past.
	now = 5 * time.Second
	if got := sched.Schedule(chunk); got != 5*time.Second {
		t.Fatalf("start after gap = %v, want 5s", got)
	}
}

func TestScheduler_FlushDiscardsPendingAndResetsTail(t *testing.T) {
	sink := &fakeSink{}
	sched := NewScheduler(sink, PlaybackFormat()).WithNow(func() time.Duration { return 0 })

	chunk := make([]byte, PlaybackFormat().FrameBytes(100*time.Millisecond))
	sched.Schedule(chunk)
	sched.Schedule(chunk)
	sched.Schedule(chunk)

	sched.Flush()

	if got := sched.PendingChunks(); got != 0 {
		t.Errorf("pending after flush = %d, want 0", got)
	}
	if got := sink.stopCount(); got != 1 {
		t.Errorf("sink stops = %d, want 1", got)
	}

	// The timeline is reset: new audio starts at now, not at the old tail.
	if got := sched.Schedule(chunk); got != 0 {
		t.Errorf("start after flush = %v, want 0", got)
	}
}
