package media

import (
	"strings"
	"testing"
)

func TestParsePromptSpec(t *testing.T) {
	raw := "```json\n{\"subject\": \"a cute laptop mascot\", \"positive_prompt\": \"soft 3D render\", \"negative_prompt\": \"no logos\"}\n```"

	spec, err := parsePromptSpec(raw)
	if err != nil {
		t.Fatalf("parsePromptSpec failed: %v", err)
	}
	if spec.PositivePrompt != "soft 3D render" {
		t.Errorf("PositivePrompt = %q, want %q", spec.PositivePrompt, "soft 3D render")
	}
}

func TestParsePromptSpecMissingPositivePrompt(t *testing.T) {
	if _, err := parsePromptSpec(`{"subject": "something", "negative_prompt": "no logos"}`); err == nil {
		t.Error("parsePromptSpec succeeded without positive_prompt, want error")
	}
}

func TestParsePromptSpecNotJSON(t *testing.T) {
	if _, err := parsePromptSpec("I cannot comply with this request."); err == nil {
		t.Error("parsePromptSpec succeeded on prose, want error")
	}
}

func TestBattlePrompt(t *testing.T) {
	prompt := BattlePrompt("Laptop X: fast, light, durable", "Laptop Y: cheap, colorful, loud")

	for _, want := range []string{
		"[PRODUCT A]:< Laptop X: fast, light, durable >",
		"[PRODUCT B]:< Laptop Y: cheap, colorful, loud >",
		"8-second, seamless loop",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BattlePrompt output missing %q", want)
		}
	}
}

func TestParseGSURI(t *testing.T) {
	tests := []struct {
		uri        string
		bucket     string
		objectPath string
		wantErr    bool
	}{
		{uri: "gs://my-bucket/2025-01-01/session/video.mp4", bucket: "my-bucket", objectPath: "2025-01-01/session/video.mp4"},
		{uri: "gs://bucket-only", wantErr: true},
		{uri: "https://example.com/not-gs", wantErr: true},
		{uri: "", wantErr: true},
	}

	for _, tt := range tests {
		bucket, objectPath, err := parseGSURI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseGSURI(%q) succeeded, want error", tt.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseGSURI(%q) failed: %v", tt.uri, err)
			continue
		}
		if bucket != tt.bucket || objectPath != tt.objectPath {
			t.Errorf("parseGSURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, objectPath, tt.bucket, tt.objectPath)
		}
	}
}
