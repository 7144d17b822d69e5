// Package gemini implements the ai.Provider surface on top of the Google
// genai SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/Anety5/ioa-studio/pkg/ai"
)

const (
	flashModel = "gemini-2.5-flash"
	proModel   = "gemini-2.5-pro"
	imageModel = "imagen-4.0-generate-001"
	editModel  = "gemini-2.5-flash-image"
	ttsModel   = "gemini-2.5-flash-preview-tts"
	liveModel  = "gemini-2.5-flash-native-audio-preview-09-2025"

	defaultVoice = "Kore"
)

// Provider is an ai.Provider backed by the Gemini API.
type Provider struct {
	client *genai.Client
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// New creates a Provider authenticated with apiKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ai.NewAuthenticationError("gemini api key must not be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	p := &Provider{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessText runs a text transformation and returns the result text.
func (p *Provider) ProcessText(ctx context.Context, req ai.TextRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ai.NewInvalidRequestError("text must not be empty")
	}

	model := flashModel
	system := "You are an expert content assistant."
	var prompt string

	switch req.Action {
	case ai.ActionSummarize:
		prompt = fmt.Sprintf("Please summarize the following text:\n\n%s", req.Text)
	case ai.ActionModify:
		prompt = fmt.Sprintf("Original Text:\n%q\n\nInstruction: %q\n\nModified Text:", req.Text, req.Instruction)
	case ai.ActionProofread:
		prompt = fmt.Sprintf("Please proofread the following text for any grammar, spelling, or punctuation errors. Only return the corrected text, without any commentary or explanations.\n\n%s", req.Text)
	case ai.ActionOptimize:
		model = proModel
		system = "You are an expert content optimizer. Your goal is to improve the provided text based on the user's instructions."
		prompt = p.optimizePrompt(req, &system)
	default:
		return "", ai.NewInvalidRequestError(fmt.Sprintf("unknown text action %q", req.Action))
	}

	temperature := float32(0.5)
	if req.Creativity != nil {
		temperature = float32(*req.Creativity) / 100
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

func (p *Provider) optimizePrompt(req ai.TextRequest, system *string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original text:\n\n---\n%s\n---\n\nPlease optimize the text.", req.Text)

	if req.Creativity != nil {
		desc := "balanced in creativity"
		switch {
		case *req.Creativity < 33:
			desc = "more straightforward and factual"
		case *req.Creativity > 66:
			desc = "more creative and expressive"
		}
		fmt.Fprintf(&b, "\nMake the tone %s.", desc)
	}
	if req.Complexity != nil {
		desc := "with moderate complexity"
		switch {
		case *req.Complexity < 33:
			desc = "simpler and easier to understand, suitable for a general audience"
		case *req.Complexity > 66:
			desc = "more sophisticated and detailed, suitable for an expert audience"
		}
		fmt.Fprintf(&b, "\nAdjust the complexity to be %s.", desc)
	}
	if req.Formality != "" {
		fmt.Fprintf(&b, "\nThe formality should be %s.", req.Formality)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "\nThe tone should be %s.", req.Tone)
	}
	if req.Proofread {
		b.WriteString("\nThoroughly proofread for any grammatical errors, typos, or awkward phrasing.")
	}
	if req.Rephrase {
		*system += " You should also rephrase sentences to ensure the final text is original and unique."
	}
	return b.String()
}

// GenerateImages produces 1-4 images for a prompt.
func (p *Provider) GenerateImages(ctx context.Context, req ai.ImageRequest) ([]ai.Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ai.NewInvalidRequestError("prompt must not be empty")
	}
	count := req.NumberOfImages
	if count < 1 {
		count = 1
	}
	if count > 4 {
		count = 4
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "1:1"
	}

	resp, err := p.client.Models.GenerateImages(ctx, imageModel, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		OutputMIMEType: "image/png",
		AspectRatio:    aspect,
		NegativePrompt: "text, words, letters, logos, watermarks, signatures",
	})
	if err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}
	if len(resp.GeneratedImages) == 0 {
		return nil, ai.NewProviderError("image generation produced no images")
	}

	images := make([]ai.Image, 0, len(resp.GeneratedImages))
	for _, gi := range resp.GeneratedImages {
		if gi.Image == nil {
			continue
		}
		images = append(images, ai.Image{Data: gi.Image.ImageBytes, MimeType: "image/png"})
	}
	return images, nil
}

// EditImage applies a prompt to a source image and returns the edit.
func (p *Provider) EditImage(ctx context.Context, prompt string, source ai.Image) (ai.Image, error) {
	if len(source.Data) == 0 {
		return ai.Image{}, ai.NewInvalidRequestError("source image must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(source.Data, source.MimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	resp, err := p.client.Models.GenerateContent(ctx, editModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return ai.Image{}, fmt.Errorf("edit image: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return ai.Image{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return ai.Image{}, ai.NewProviderError("image editing produced no image")
}

// AnalyzeImage describes a source image.
func (p *Provider) AnalyzeImage(ctx context.Context, prompt string, source ai.Image) (string, error) {
	if len(source.Data) == 0 {
		return "", ai.NewInvalidRequestError("source image must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(source.Data, source.MimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	resp, err := p.client.Models.GenerateContent(ctx, flashModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}
	return resp.Text(), nil
}

// Translate translates text between language codes; from may be "auto".
func (p *Provider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	prompt := fmt.Sprintf("Translate the following text from %s to %s. Only return the translated text, without any additional explanation or quotation marks.\n\nText: %q", from, to, text)
	resp, err := p.client.Models.GenerateContent(ctx, flashModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Speak synthesizes speech for text.
func (p *Provider) Speak(ctx context.Context, req ai.SpeechRequest) (ai.Speech, error) {
	if strings.TrimSpace(req.Text) == "" {
		return ai.Speech{}, ai.NewInvalidRequestError("text must not be empty")
	}
	voice := req.Voice
	if voice == "" {
		voice = defaultVoice
	}

	resp, err := p.client.Models.GenerateContent(ctx, ttsModel, genai.Text(req.Text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return ai.Speech{}, fmt.Errorf("synthesize speech: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return ai.Speech{Audio: part.InlineData.Data, MimeType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return ai.Speech{}, ai.NewProviderError("text-to-speech produced no audio")
}
