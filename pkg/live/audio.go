package live

import (
	"encoding/base64"
	"math"
	"time"
)

// Format describes the PCM shape flowing through a session. Both directions
// are 16-bit signed little-endian; capture runs at 16 kHz, playback at 24 kHz.
type Format struct {
	SampleRateHz   int
	Channels       int
	BytesPerSample int
}

// CaptureFormat is the canonical microphone format.
func CaptureFormat() Format {
	return Format{SampleRateHz: 16000, Channels: 1, BytesPerSample: 2}
}

// PlaybackFormat is the canonical remote-audio format.
func PlaybackFormat() Format {
	return Format{SampleRateHz: 24000, Channels: 1, BytesPerSample: 2}
}

// BytesPerSecond returns the PCM data rate.
func (f Format) BytesPerSecond() int {
	return f.SampleRateHz * f.Channels * f.BytesPerSample
}

// Duration returns how long n bytes of PCM play for.
func (f Format) Duration(n int) time.Duration {
	bps := f.BytesPerSecond()
	if bps <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(bps)
}

// FrameBytes returns the byte size of a frame of the given duration.
func (f Format) FrameBytes(d time.Duration) int {
	return int(int64(f.BytesPerSecond()) * int64(d) / int64(time.Second))
}

// EncodeFrame converts a PCM frame to the base64 wire encoding.
func EncodeFrame(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeChunk converts a base64 wire chunk back to PCM bytes.
func DecodeChunk(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

// RMSEnergy computes the root-mean-square energy of 16-bit signed
// little-endian PCM, normalized to 0.0-1.0.
func RMSEnergy(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(pcm)-1; i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}
	return math.Sqrt(sum / float64(samples))
}
