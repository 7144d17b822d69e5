// Package audio binds the live session to real devices: a malgo-backed
// microphone and an oto-backed speaker.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/Anety5/ioa-studio/pkg/live"
)

const defaultFrameDuration = 20 * time.Millisecond

// Microphone implements live.Capture on the default system input device.
type Microphone struct {
	format   live.Format
	frameDur time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	frames  chan []byte
	stopped bool
}

// MicOption configures a Microphone.
type MicOption func(*Microphone)

// WithMicLogger sets the microphone logger.
func WithMicLogger(logger *slog.Logger) MicOption {
	return func(m *Microphone) { m.logger = logger }
}

// WithFrameDuration sets the capture frame length. Default 20ms.
func WithFrameDuration(d time.Duration) MicOption {
	return func(m *Microphone) { m.frameDur = d }
}

// NewMicrophone creates an unstarted microphone in the standard capture
// format.
func NewMicrophone(opts ...MicOption) *Microphone {
	m := &Microphone{
		format:   live.CaptureFormat(),
		frameDur: defaultFrameDuration,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start acquires the default capture device and begins streaming fixed-size
// PCM16 frames. The returned channel closes on Stop or when ctx is
// cancelled.
func (m *Microphone) Start(ctx context.Context) (<-chan []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		return nil, fmt.Errorf("microphone already started")
	}

	cfg := malgo.ContextConfig{}
	cfg.ThreadPriority = malgo.ThreadPriorityRealtime
	malgoCtx, err := malgo.InitContext(nil, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(m.format.Channels)
	deviceConfig.SampleRate = uint32(m.format.SampleRateHz)
	deviceConfig.PeriodSizeInMilliseconds = uint32(m.frameDur / time.Millisecond)

	frames := make(chan []byte, 32)
	frameBytes := m.format.FrameBytes(m.frameDur)
	levelEvery := int(time.Second / m.frameDur)
	if levelEvery < 1 {
		levelEvery = 1
	}
	var pending []byte
	frameCount := 0

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			pending = append(pending, input...)
			for len(pending) >= frameBytes {
				frame := make([]byte, frameBytes)
				copy(frame, pending)
				pending = pending[frameBytes:]

				frameCount++
				if frameCount%levelEvery == 0 {
					m.logger.Debug("mic input level", "rms", live.RMSEnergy(frame))
				}

				m.mu.Lock()
				if m.stopped {
					m.mu.Unlock()
					return
				}
				select {
				case frames <- frame:
				default:
					// The consumer fell behind; dropping is better than
					// stalling the audio thread.
				}
				m.mu.Unlock()
			}
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = malgoCtx.Uninit()
		return nil, fmt.Errorf("start capture device: %w", err)
	}

	m.ctx = malgoCtx
	m.device = device
	m.frames = frames
	m.stopped = false

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	m.logger.Debug("microphone started",
		"sample_rate_hz", m.format.SampleRateHz,
		"frame_ms", m.frameDur/time.Millisecond)
	return frames, nil
}

// Stop releases the device. Safe to call more than once.
func (m *Microphone) Stop() error {
	m.mu.Lock()
	if m.stopped || m.device == nil {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	device := m.device
	malgoCtx := m.ctx
	frames := m.frames
	m.device = nil
	m.ctx = nil
	m.frames = nil
	m.mu.Unlock()

	_ = device.Stop()
	device.Uninit()
	_ = malgoCtx.Uninit()
	close(frames)
	return nil
}
