package store

import (
	"encoding/json"
	"fmt"
)

// AssetType tags an asset with the view that produced it. The set is closed;
// adding a view means adding a tag and a content type here, not inventing an
// ad hoc shape.
type AssetType string

const (
	AssetOptimizer        AssetType = "optimizer"
	AssetImage            AssetType = "image"
	AssetTranslator       AssetType = "translator"
	AssetChat             AssetType = "chat"
	AssetAnalysis         AssetType = "analysis"
	AssetLiveConversation AssetType = "liveConversation"
	AssetProjectStudio    AssetType = "project_studio"
	AssetVideo            AssetType = "video"
)

// Valid reports whether t is one of the known asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetOptimizer, AssetImage, AssetTranslator, AssetChat,
		AssetAnalysis, AssetLiveConversation, AssetProjectStudio, AssetVideo:
		return true
	}
	return false
}

// Content is the payload of an asset. Each AssetType has exactly one
// concrete Content type; the store persists the payload as given and returns
// it unchanged.
type Content interface {
	assetType() AssetType
}

// Attachment is a user-picked file exposed as base64 data plus a MIME type.
type Attachment struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// OptimizerResult is one produced result in an optimizer session.
type OptimizerResult struct {
	Type    string `json:"type"` // optimization | summary | modification | proofread
	Content string `json:"content"`
	Prompt  string `json:"prompt,omitempty"`
}

// OptimizerOptions are the tuning controls of an optimizer session.
type OptimizerOptions struct {
	Creativity  int    `json:"creativity"`  // 0-100
	Readability int    `json:"readability"` // 0-100
	Formality   string `json:"formality"`
	Tone        string `json:"tone"`
	Guardrails  struct {
		Proofread       bool `json:"proofread"`
		PlagiarismCheck bool `json:"plagiarismCheck"`
	} `json:"guardrails"`
}

// OptimizerContent is a saved optimizer session.
type OptimizerContent struct {
	OriginalText string            `json:"originalText"`
	Attachments  []Attachment      `json:"attachments,omitempty"`
	Results      []OptimizerResult `json:"results"`
	Options      OptimizerOptions  `json:"options"`
}

func (*OptimizerContent) assetType() AssetType { return AssetOptimizer }

// GeneratedImage is one produced image with its originating prompt.
type GeneratedImage struct {
	Src    string `json:"src"`
	Prompt string `json:"prompt"`
}

// ImageContent is a saved image session (generate, edit, or analyze mode).
type ImageContent struct {
	Mode           string           `json:"mode"` // generate | edit | analyze
	Prompt         string           `json:"prompt"`
	Images         []GeneratedImage `json:"images,omitempty"`
	SourceImage    *Attachment      `json:"sourceImage,omitempty"`
	AnalysisResult string           `json:"analysisResult,omitempty"`
	NumberOfImages int              `json:"numberOfImages"` // 1-4
	AspectRatio    string           `json:"aspectRatio"`    // 1:1 | 16:9 | 9:16 | 4:3 | 3:4
	Style          string           `json:"style,omitempty"`
}

func (*ImageContent) assetType() AssetType { return AssetImage }

// TranslatorContent is a saved translation session. SourceLang may be "auto".
type TranslatorContent struct {
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
	SourceLang     string `json:"sourceLang"`
	TargetLang     string `json:"targetLang"`
}

func (*TranslatorContent) assetType() AssetType { return AssetTranslator }

// ChatTurn is one exchange in a chat transcript.
type ChatTurn struct {
	Role      string   `json:"role"` // user | model
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
}

// ChatContent is a saved chat transcript.
type ChatContent struct {
	Turns []ChatTurn `json:"turns"`
}

func (*ChatContent) assetType() AssetType { return AssetChat }

// AnalysisContent is a saved image-analysis result.
type AnalysisContent struct {
	Prompt      string      `json:"prompt"`
	SourceImage *Attachment `json:"sourceImage,omitempty"`
	Result      string      `json:"result"`
}

func (*AnalysisContent) assetType() AssetType { return AssetAnalysis }

// ConversationEntry is one committed turn in a live conversation transcript.
type ConversationEntry struct {
	Speaker string `json:"speaker"` // user | model
	Text    string `json:"text"`
}

// LiveConversationContent is a saved live voice conversation transcript.
type LiveConversationContent struct {
	Entries []ConversationEntry `json:"entries"`
}

func (*LiveConversationContent) assetType() AssetType { return AssetLiveConversation }

// StudioResult is one produced result in a project studio session.
type StudioResult struct {
	Type    string `json:"type"` // summary | modification
	Content string `json:"content"`
	Prompt  string `json:"prompt,omitempty"`
}

// ProjectStudioContent is a saved project studio session.
type ProjectStudioContent struct {
	MainText    string         `json:"mainText"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Results     []StudioResult `json:"results"`
}

func (*ProjectStudioContent) assetType() AssetType { return AssetProjectStudio }

// VideoContent is a saved video session.
type VideoContent struct {
	Prompt   string `json:"prompt"`
	VideoURL string `json:"videoUrl,omitempty"`
}

func (*VideoContent) assetType() AssetType { return AssetVideo }

// decodeContent decodes a raw content payload according to the asset's type
// tag. Unknown tags are rejected; the set is closed on purpose.
func decodeContent(t AssetType, raw json.RawMessage) (Content, error) {
	var target Content
	switch t {
	case AssetOptimizer:
		target = &OptimizerContent{}
	case AssetImage:
		target = &ImageContent{}
	case AssetTranslator:
		target = &TranslatorContent{}
	case AssetChat:
		target = &ChatContent{}
	case AssetAnalysis:
		target = &AnalysisContent{}
	case AssetLiveConversation:
		target = &LiveConversationContent{}
	case AssetProjectStudio:
		target = &ProjectStudioContent{}
	case AssetVideo:
		target = &VideoContent{}
	default:
		return nil, fmt.Errorf("unknown asset type %q", t)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", t, err)
		}
	}
	return target, nil
}
