package live

import (
	"bytes"
	"math"
	"testing"
	"time"
)

func TestFormat_DurationAndFrameBytes(t *testing.T) {
	f := PlaybackFormat() // 24kHz mono, 2 bytes/sample = 48000 B/s

	if got := f.Duration(48000); got != time.Second {
		t.Errorf("Duration(48000) = %v, want 1s", got)
	}
	if got := f.Duration(4800); got != 100*time.Millisecond {
		t.Errorf("Duration(4800) = %v, want 100ms", got)
	}
	if got := f.FrameBytes(100 * time.Millisecond); got != 4800 {
		t.Errorf("FrameBytes(100ms) = %d, want 4800", got)
	}
	if got := f.Duration(0); got != 0 {
		t.Errorf("Duration(0) = %v, want 0", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame := []byte{0x00, 0x01, 0x7f, 0x80, 0xff}
	decoded, err := DecodeChunk(EncodeFrame(frame))
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	if !bytes.Equal(decoded, frame) {
		t.Fatalf("round trip = %v, want %v", decoded, frame)
	}
}

func TestRMSEnergy(t *testing.T) {
	if got := RMSEnergy(nil); got != 0 {
		t.Errorf("RMSEnergy(nil) = %v, want 0", got)
	}

	// A full-scale square wave has RMS of ~1.
	loud := make([]byte, 200)
	for i := 0; i < len(loud); i += 2 {
		loud[i] = 0xff
		loud[i+1] = 0x7f
	}
	if got := RMSEnergy(loud); math.Abs(got-1) > 0.001 {
		t.Errorf("full-scale RMS = %v, want ~1", got)
	}

	silence := make([]byte, 200)
	if got := RMSEnergy(silence); got != 0 {
		t.Errorf("silence RMS = %v, want 0", got)
	}
}
