package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storybook-server/models"
)

// fakeLLM 便于本地测试的桩实现，不访问外部模型
type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestStoryGenerator_OfflineTierAlwaysProduces(t *testing.T) {
	g := NewStoryGenerator(nil, nil)
	for _, tone := range []string{models.TonePositive, models.ToneNegative, models.ToneNeutral, "UNKNOWN"} {
		t.Run(tone, func(t *testing.T) {
			body, tier, err := g.Generate(context.Background(), "a tiny boat with big dreams", tone)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tier != "offline_composer" {
				t.Errorf("tier = %q, want offline_composer", tier)
			}
			if strings.TrimSpace(body) == "" {
				t.Fatal("story body must be non-empty")
			}
			if len(models.SplitParagraphs(body)) < 2 {
				t.Errorf("story must be multi-paragraph, got %q", body)
			}
		})
	}
}

func TestStoryGenerator_RemotePreferred(t *testing.T) {
	remote := &fakeLLM{reply: "Para one.\n\nPara two."}
	g := NewStoryGenerator(remote, nil)
	body, tier, err := g.Generate(context.Background(), "seed", models.ToneNeutral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != "remote_llm" || body != "Para one.\n\nPara two." {
		t.Errorf("got (%q, %q), want remote story", tier, body)
	}
}

func TestStoryGenerator_RemoteFailureFallsThrough(t *testing.T) {
	tests := []struct {
		name   string
		remote *fakeLLM
	}{
		{"remote error", &fakeLLM{err: errors.New("quota exceeded")}},
		{"remote empty", &fakeLLM{reply: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewStoryGenerator(tt.remote, nil)
			body, tier, err := g.Generate(context.Background(), "seed", models.ToneNeutral)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tier != "offline_composer" {
				t.Errorf("tier = %q, want offline_composer", tier)
			}
			if body == "" {
				t.Error("fallback story must be non-empty")
			}
			if tt.remote.calls != 1 {
				t.Errorf("remote tried %d times, want exactly 1 (no per-tier retry)", tt.remote.calls)
			}
		})
	}
}

func TestStoryGenerator_EmptySeed(t *testing.T) {
	g := NewStoryGenerator(nil, nil)
	_, _, err := g.Generate(context.Background(), "  \n ", models.ToneNeutral)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestLocalLLM_UnavailableWithoutModelFile(t *testing.T) {
	l := NewLocalLLM("/does/not/exist.gguf", "http://127.0.0.1:1")
	if l.Available() {
		t.Error("missing model file must make local tier unavailable")
	}
	var nilLocal *LocalLLM
	if nilLocal.Available() {
		t.Error("nil local tier must be unavailable")
	}
}

func TestTitleFromSeed(t *testing.T) {
	long := strings.Repeat("x", 60)
	tests := []struct {
		in   string
		want string
	}{
		{"a glowing seed", "Story about a glowing seed"},
		{long, "Story about " + strings.Repeat("x", 40) + "..."},
		{"  trimmed  ", "Story about trimmed"},
	}
	for _, tt := range tests {
		if got := TitleFromSeed(tt.in); got != tt.want {
			t.Errorf("TitleFromSeed(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
