package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Anety5/ioa-studio/pkg/live"
	"github.com/Anety5/ioa-studio/pkg/store"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("IOA_CONFIG", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", cfg.FrameDuration)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "endpoint: ws://localhost:8080/live\nmodel: test-model\ndata_dir: /tmp/studio\nmetrics_addr: \":9090\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Endpoint != "ws://localhost:8080/live" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Model != "test-model" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.DataDir != "/tmp/studio" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	// Unset fields keep their defaults.
	if cfg.TranscriptName != "Live Conversation" {
		t.Errorf("TranscriptName = %q", cfg.TranscriptName)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig succeeded on a missing file")
	}
}

func TestSaveTranscript(t *testing.T) {
	projects := store.New(store.NewMemoryBlob())

	// Empty conversations save nothing.
	if err := saveTranscript(projects, "Live Conversation", live.NewTranscript()); err != nil {
		t.Fatalf("saveTranscript(empty): %v", err)
	}
	if got := len(projects.ListProjects()); got != 0 {
		t.Fatalf("projects after empty save = %d, want 0", got)
	}

	tr := live.NewTranscript()
	tr.Append(live.SpeakerUser, "hello")
	tr.Append(live.SpeakerModel, "hi there")
	tr.CommitTurn()

	if err := saveTranscript(projects, "Live Conversation", tr); err != nil {
		t.Fatalf("saveTranscript: %v", err)
	}

	list := projects.ListProjects()
	if len(list) != 1 || list[0].Name != store.DefaultProjectName {
		t.Fatalf("projects = %+v, want the default project", list)
	}
	if len(list[0].Assets) != 1 {
		t.Fatalf("assets = %d, want 1", len(list[0].Assets))
	}
	asset := list[0].Assets[0]
	if asset.Type != store.AssetLiveConversation {
		t.Errorf("asset type = %q", asset.Type)
	}
	content, ok := asset.Content.(*store.LiveConversationContent)
	if !ok {
		t.Fatalf("content type = %T", asset.Content)
	}
	if len(content.Entries) != 2 || content.Entries[0].Speaker != "user" {
		t.Errorf("entries = %+v", content.Entries)
	}
}
