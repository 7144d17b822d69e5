// Package ai defines the capability surface the studio core depends on.
// Views and the live session consume these interfaces; they never see a
// vendor SDK's request or response shapes.
package ai

import (
	"context"

	"github.com/Anety5/ioa-studio/pkg/live"
)

// TextAction selects how ProcessText transforms its input.
type TextAction string

const (
	ActionSummarize TextAction = "summarize"
	ActionModify    TextAction = "modify"
	ActionProofread TextAction = "proofread"
	ActionOptimize  TextAction = "optimize"
)

// TextRequest configures a text transformation.
type TextRequest struct {
	Text        string
	Action      TextAction
	Instruction string // for ActionModify

	// Optimizer controls, 0-100 sliders plus categorical hints.
	Creativity *int
	Complexity *int
	Formality  string
	Tone       string
	Proofread  bool
	Rephrase   bool
}

// Image is raw image bytes plus a MIME type, the shape the file import
// boundary hands the core.
type Image struct {
	Data     []byte
	MimeType string
}

// ImageRequest configures image generation.
type ImageRequest struct {
	Prompt         string
	NumberOfImages int    // 1-4
	AspectRatio    string // 1:1 | 16:9 | 9:16 | 4:3 | 3:4
}

// SpeechRequest configures text-to-speech synthesis.
type SpeechRequest struct {
	Text  string
	Voice string
}

// Speech is synthesized audio.
type Speech struct {
	Audio    []byte
	MimeType string
}

// Provider is the injected AI capability. Every operation is a single
// attempt; failures surface as errors and are never retried here.
type Provider interface {
	// ProcessText runs a text transformation and returns the result text.
	ProcessText(ctx context.Context, req TextRequest) (string, error)

	// GenerateImages produces 1-4 images for a prompt.
	GenerateImages(ctx context.Context, req ImageRequest) ([]Image, error)

	// EditImage applies a prompt to a source image and returns the edit.
	EditImage(ctx context.Context, prompt string, source Image) (Image, error)

	// AnalyzeImage describes a source image.
	AnalyzeImage(ctx context.Context, prompt string, source Image) (string, error)

	// Translate translates text between language codes; from may be "auto".
	Translate(ctx context.Context, text, from, to string) (string, error)

	// Speak synthesizes speech for text.
	Speak(ctx context.Context, req SpeechRequest) (Speech, error)

	// OpenLive opens a duplex voice session delivering events to handler.
	// The returned Remote is owned by the caller and must be closed.
	OpenLive(ctx context.Context, handler live.Handler) (live.Remote, error)
}
