package gemini

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"

	"github.com/Anety5/ioa-studio/pkg/live"
)

// OpenLive opens a duplex voice session against the Gemini Live API. Audio
// flows up as 16 kHz PCM and comes back as 24 kHz PCM; both directions are
// transcribed server-side.
func (p *Provider) OpenLive(ctx context.Context, handler live.Handler) (live.Remote, error) {
	session, err := p.client.Live.Connect(ctx, liveModel, &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: defaultVoice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}

	r := &liveRemote{session: session, handler: handler}
	go r.readLoop()
	// Connect completes the setup handshake, so the session is open as soon
	// as it returns.
	go r.emitOpen()
	return r, nil
}

type liveRemote struct {
	session *genai.Session
	handler live.Handler

	closeOnce sync.Once
	closed    atomic.Bool
}

func (r *liveRemote) SendAudio(frame string) error {
	if r.closed.Load() {
		return fmt.Errorf("live session is closed")
	}
	pcm, err := live.DecodeChunk(frame)
	if err != nil {
		return fmt.Errorf("decode audio frame: %w", err)
	}
	return r.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			Data:     pcm,
			MIMEType: fmt.Sprintf("audio/pcm;rate=%d", live.CaptureFormat().SampleRateHz),
		},
	})
}

func (r *liveRemote) SendAttachment(data []byte, mimeType string) error {
	if r.closed.Load() {
		return fmt.Errorf("live session is closed")
	}
	return r.session.SendClientContent(genai.LiveClientContentInput{
		Turns: []*genai.Content{
			genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromBytes(data, mimeType),
			}, genai.RoleUser),
		},
	})
}

func (r *liveRemote) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		_ = r.session.Close()
	})
	return nil
}

func (r *liveRemote) readLoop() {
	for {
		msg, err := r.session.Receive()
		if err != nil {
			if r.closed.Load() {
				r.emitClose()
				return
			}
			r.emitError(err)
			return
		}
		r.dispatch(msg)
	}
}

func (r *liveRemote) dispatch(msg *genai.LiveServerMessage) {
	sc := msg.ServerContent
	if sc == nil {
		return
	}

	if sc.Interrupted {
		if r.handler.OnInterrupted != nil {
			r.handler.OnInterrupted()
		}
		return
	}

	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" && r.handler.OnTranscript != nil {
		r.handler.OnTranscript(live.SpeakerUser, sc.InputTranscription.Text)
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" && r.handler.OnTranscript != nil {
		r.handler.OnTranscript(live.SpeakerModel, sc.OutputTranscription.Text)
	}

	if sc.ModelTurn != nil && r.handler.OnAudio != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				r.handler.OnAudio(part.InlineData.Data)
			}
		}
	}

	if sc.TurnComplete && r.handler.OnTurnComplete != nil {
		r.handler.OnTurnComplete()
	}
}

func (r *liveRemote) emitOpen() {
	if r.handler.OnOpen != nil {
		r.handler.OnOpen()
	}
}

func (r *liveRemote) emitClose() {
	if r.handler.OnClose != nil {
		r.handler.OnClose()
	}
}

func (r *liveRemote) emitError(err error) {
	if r.handler.OnError != nil {
		r.handler.OnError(err)
	}
}
