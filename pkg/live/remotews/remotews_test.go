package remotews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Anety5/ioa-studio/pkg/live"
)

func newWebsocketTestServer(t *testing.T, handler func(conn *websocket.Conn)) (string, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return wsURL, server.Close
}

// eventRecorder collects handler callbacks for assertions.
type eventRecorder struct {
	mu          sync.Mutex
	opened      bool
	audio       [][]byte
	transcripts []string
	interrupted int
	turns       int
	errs        []error
	closed      bool
}

func (r *eventRecorder) handler() live.Handler {
	return live.Handler{
		OnOpen: func() {
			r.mu.Lock()
			r.opened = true
			r.mu.Unlock()
		},
		OnAudio: func(pcm []byte) {
			r.mu.Lock()
			r.audio = append(r.audio, pcm)
			r.mu.Unlock()
		},
		OnTranscript: func(speaker live.Speaker, text string) {
			r.mu.Lock()
			r.transcripts = append(r.transcripts, string(speaker)+":"+text)
			r.mu.Unlock()
		},
		OnInterrupted: func() {
			r.mu.Lock()
			r.interrupted++
			r.mu.Unlock()
		},
		OnTurnComplete: func() {
			r.mu.Lock()
			r.turns++
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
		OnClose: func() {
			r.mu.Lock()
			r.closed = true
			r.mu.Unlock()
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDial_HandshakeAndEventDispatch(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}

	wsURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()

		var hello map[string]any
		if err := conn.ReadJSON(&hello); err != nil {
			t.Errorf("read hello: %v", err)
			return
		}
		if hello["type"] != "hello" || hello["sample_rate_hz"] != float64(16000) {
			t.Errorf("hello = %+v", hello)
			return
		}

		_ = conn.WriteJSON(map[string]any{"type": "hello_ack"})
		_ = conn.WriteJSON(map[string]any{"type": "audio_chunk", "data": live.EncodeFrame(pcm)})
		_ = conn.WriteJSON(map[string]any{"type": "transcript_delta", "speaker": "user", "text": "hi"})
		_ = conn.WriteJSON(map[string]any{"type": "transcript_delta", "speaker": "model", "text": "hello"})
		_ = conn.WriteJSON(map[string]any{"type": "interrupted"})
		_ = conn.WriteJSON(map[string]any{"type": "turn_complete"})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	})
	defer closeServer()

	rec := &eventRecorder{}
	remote, err := Dial(context.Background(), Config{URL: wsURL, Model: "test-model"}, rec.handler())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer remote.Close()

	waitFor(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.closed
	})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.opened {
		t.Error("OnOpen never fired")
	}
	if len(rec.audio) != 1 || string(rec.audio[0]) != string(pcm) {
		t.Errorf("audio = %v, want one chunk %v", rec.audio, pcm)
	}
	want := []string{"user:hi", "model:hello"}
	if len(rec.transcripts) != 2 || rec.transcripts[0] != want[0] || rec.transcripts[1] != want[1] {
		t.Errorf("transcripts = %v, want %v", rec.transcripts, want)
	}
	if rec.interrupted != 1 {
		t.Errorf("interrupted = %d, want 1", rec.interrupted)
	}
	if rec.turns != 1 {
		t.Errorf("turns = %d, want 1", rec.turns)
	}
	if len(rec.errs) != 0 {
		t.Errorf("errors = %v, want none", rec.errs)
	}
}

func TestDial_ServerErrorSurfacesThroughHandler(t *testing.T) {
	wsURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var hello map[string]any
		_ = conn.ReadJSON(&hello)
		_ = conn.WriteJSON(map[string]any{
			"type":  "error",
			"error": map[string]any{"message": "quota exceeded", "code": "quota"},
		})
	})
	defer closeServer()

	rec := &eventRecorder{}
	remote, err := Dial(context.Background(), Config{URL: wsURL}, rec.handler())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer remote.Close()

	waitFor(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.errs) == 1
	})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !strings.Contains(rec.errs[0].Error(), "quota exceeded") {
		t.Fatalf("error = %v, want quota message", rec.errs[0])
	}
}

func TestRemote_SendAudioAndAttachment(t *testing.T) {
	type frame struct {
		Type     string `json:"type"`
		Data     string `json:"data"`
		MimeType string `json:"mime_type"`
	}
	received := make(chan frame, 4)

	wsURL, closeServer := newWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var hello map[string]any
		_ = conn.ReadJSON(&hello)
		_ = conn.WriteJSON(map[string]any{"type": "hello_ack"})
		for i := 0; i < 2; i++ {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			received <- f
		}
	})
	defer closeServer()

	rec := &eventRecorder{}
	remote, err := Dial(context.Background(), Config{URL: wsURL}, rec.handler())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer remote.Close()

	encoded := live.EncodeFrame([]byte{0xaa, 0xbb})
	if err := remote.SendAudio(encoded); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}
	if err := remote.SendAttachment([]byte("picture"), "image/png"); err != nil {
		t.Fatalf("SendAttachment: %v", err)
	}

	audio := <-received
	if audio.Type != "audio_frame" || audio.Data != encoded {
		t.Errorf("audio frame = %+v", audio)
	}
	attachment := <-received
	if attachment.Type != "attachment" || attachment.MimeType != "image/png" {
		t.Errorf("attachment frame = %+v", attachment)
	}

	// Sends after Close fail instead of panicking.
	remote.Close()
	if err := remote.SendAudio(encoded); err == nil {
		t.Fatal("SendAudio after Close succeeded")
	}
}
