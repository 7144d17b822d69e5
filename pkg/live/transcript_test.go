package live

import (
	"testing"
	"time"
)

func TestTranscript_CommitOrdersUserBeforeModel(t *testing.T) {
	tr := NewTranscript().WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})

	tr.Append(SpeakerModel, "I can ")
	tr.Append(SpeakerUser, "what's the ")
	tr.Append(SpeakerUser, "weather?")
	tr.Append(SpeakerModel, "help with that.")

	if got := len(tr.Entries()); got != 0 {
		t.Fatalf("entries before commit = %d, want 0", got)
	}

	tr.CommitTurn()

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Speaker != SpeakerUser || entries[0].Text != "what's the weather?" {
		t.Errorf("entry 0 = %+v, want user utterance", entries[0])
	}
	if entries[1].Speaker != SpeakerModel || entries[1].Text != "I can help with that." {
		t.Errorf("entry 1 = %+v, want model utterance", entries[1])
	}
}

func TestTranscript_EmptyBuffersProduceNoEntries(t *testing.T) {
	tr := NewTranscript()

	tr.CommitTurn()
	if got := len(tr.Entries()); got != 0 {
		t.Fatalf("entries = %d, want 0", got)
	}

	// A model-only turn yields a single entry.
	tr.Append(SpeakerModel, "hello")
	tr.CommitTurn()
	entries := tr.Entries()
	if len(entries) != 1 || entries[0].Speaker != SpeakerModel {
		t.Fatalf("entries = %+v, want one model entry", entries)
	}
}

func TestTranscript_BuffersClearAfterCommit(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SpeakerUser, "first")
	tr.CommitTurn()
	tr.CommitTurn()

	if got := len(tr.Entries()); got != 1 {
		t.Fatalf("entries = %d, want 1 (second commit must add nothing)", got)
	}
}

func TestTranscript_MarkersBypassTurnBuffers(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SpeakerUser, "look at this")
	tr.AppendMarker(SpeakerUser, "[attachment: image/png]")

	entries := tr.Entries()
	if len(entries) != 1 || entries[0].Text != "[attachment: image/png]" {
		t.Fatalf("entries = %+v, want the marker only", entries)
	}

	tr.CommitTurn()
	if got := len(tr.Entries()); got != 2 {
		t.Fatalf("entries after commit = %d, want 2", got)
	}
}
