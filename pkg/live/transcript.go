package live

import (
	"strings"
	"sync"
	"time"
)

// TranscriptEntry is one committed utterance in a conversation.
type TranscriptEntry struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript accumulates streaming text fragments per speaker and commits
// them as whole entries when the remote signals the end of a turn. Fragments
// arrive out of order relative to turn boundaries, so nothing is visible in
// Entries until CommitTurn.
type Transcript struct {
	now func() time.Time

	mu      sync.Mutex
	user    strings.Builder
	model   strings.Builder
	entries []TranscriptEntry
}

// NewTranscript creates an empty transcript using the wall clock.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// WithClock overrides the timestamp source. Tests use this.
func (t *Transcript) WithClock(now func() time.Time) *Transcript {
	t.now = now
	return t
}

// Append adds a text fragment to the given speaker's buffer.
func (t *Transcript) Append(speaker Speaker, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch speaker {
	case SpeakerUser:
		t.user.WriteString(text)
	case SpeakerModel:
		t.model.WriteString(text)
	}
}

// AppendMarker commits a standalone entry immediately, bypassing the turn
// buffers. Used for non-speech events such as attachments.
func (t *Transcript) AppendMarker(speaker Speaker, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TranscriptEntry{Speaker: speaker, Text: text, Timestamp: t.now()})
}

// CommitTurn flushes both speaker buffers into the entry list, user first,
// then model. Empty buffers produce no entry.
func (t *Transcript) CommitTurn() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if text := strings.TrimSpace(t.user.String()); text != "" {
		t.entries = append(t.entries, TranscriptEntry{Speaker: SpeakerUser, Text: text, Timestamp: t.now()})
	}
	t.user.Reset()
	if text := strings.TrimSpace(t.model.String()); text != "" {
		t.entries = append(t.entries, TranscriptEntry{Speaker: SpeakerModel, Text: text, Timestamp: t.now()})
	}
	t.model.Reset()
}

// Entries returns a copy of the committed entries in order.
func (t *Transcript) Entries() []TranscriptEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Reset discards all buffered fragments and committed entries.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.user.Reset()
	t.model.Reset()
	t.entries = nil
}
