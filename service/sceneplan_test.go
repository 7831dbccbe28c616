package service

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

const planStory = "Mia found a tiny door in the garden wall. She knocked three times.\n\n" +
	"Behind the door lived a mouse named Pip! He wore a red scarf. He loved visitors.\n\n" +
	"They shared tea in acorn cups.\n\n" +
	"Rain began to fall outside. The two friends watched the drops race down the leaves.\n\n" +
	"When the sun returned, a rainbow arched over the garden.\n\n" +
	"Mia promised to visit every week.\n\n" +
	"And she always did."

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{
			"fenced block",
			"Here you go:\n```json\n[{\"caption\":\"a\",\"image_prompt\":\"b\"}]\n```\nEnjoy!",
			1,
		},
		{
			"bare array",
			"Sure! [{\"caption\":\"one\"},{\"caption\":\"two\"}] done",
			2,
		},
		{
			"fenced preferred over trailing junk",
			"```json\n[{\"caption\":\"x\"}]\n``` but also [not json]",
			1,
		},
		{"no array", "I could not produce scenes, sorry.", 0},
		{"invalid json", "[{caption: broken}]", 0},
		{"empty array", "[]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := extractJSONArray(tt.in)
			if len(items) != tt.want {
				t.Errorf("extractJSONArray() yielded %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestScenePlanner_RemoteStructuredOutput(t *testing.T) {
	remote := &fakeLLM{reply: "```json\n[" +
		"{\"caption\":\"Mia finds a door.\",\"image_prompt\":\"a tiny door in a wall\"}," +
		"{\"caption\":\"  \",\"image_prompt\":\"dropped, empty caption\"}," +
		"{\"caption\":\"Pip waves hello.\",\"image_prompt\":\"\"}" +
		"]\n```"}
	p := &ScenePlanner{Remote: remote}

	scenes, tier := p.Plan(context.Background(), planStory, 6, true)
	if tier != "remote_llm" {
		t.Fatalf("tier = %q, want remote_llm", tier)
	}
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2 (blank caption dropped)", len(scenes))
	}
	if scenes[0].ImagePrompt != "a tiny door in a wall" {
		t.Errorf("provided image prompt must be preserved, got %q", scenes[0].ImagePrompt)
	}
	if scenes[1].ImagePrompt != ImagePromptFromCaption("Pip waves hello.") {
		t.Errorf("missing image prompt must be synthesized from caption, got %q", scenes[1].ImagePrompt)
	}
}

func TestScenePlanner_RemoteTruncatesToN(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 10; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("{\"caption\":\"scene\"}")
	}
	sb.WriteString("]")
	p := &ScenePlanner{Remote: &fakeLLM{reply: sb.String()}}

	scenes, _ := p.Plan(context.Background(), planStory, 4, true)
	if len(scenes) != 4 {
		t.Errorf("got %d scenes, want truncation to 4", len(scenes))
	}
}

func TestScenePlanner_RemoteFailureUsesHeuristic(t *testing.T) {
	tests := []struct {
		name   string
		remote LLMClient
	}{
		{"remote nil", nil},
		{"remote garbage", &fakeLLM{reply: "no structured data here"}},
		{"remote empty array", &fakeLLM{reply: "[]"}},
	}
	want := FallbackScenes(planStory, 6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ScenePlanner{Remote: tt.remote}
			scenes, tier := p.Plan(context.Background(), planStory, 6, true)
			if tier != "paragraph_split" {
				t.Fatalf("tier = %q, want paragraph_split", tier)
			}
			if !reflect.DeepEqual(scenes, want) {
				t.Errorf("fallback output must match the deterministic heuristic exactly")
			}
		})
	}
}

func TestScenePlanner_RemoteDisabled(t *testing.T) {
	p := &ScenePlanner{Remote: &fakeLLM{reply: "[{\"caption\":\"never used\"}]"}}
	scenes, tier := p.Plan(context.Background(), planStory, 6, false)
	if tier != "paragraph_split" {
		t.Fatalf("tier = %q, want paragraph_split when remote not preferred", tier)
	}
	if !reflect.DeepEqual(scenes, FallbackScenes(planStory, 6)) {
		t.Error("remote-disabled planning must equal the heuristic output")
	}
}

func TestFallbackScenes(t *testing.T) {
	t.Run("caption is first two sentences", func(t *testing.T) {
		scenes := FallbackScenes(planStory, 6)
		if len(scenes) != 6 {
			t.Fatalf("got %d scenes, want 6", len(scenes))
		}
		if scenes[0].Caption != "Mia found a tiny door in the garden wall. She knocked three times." {
			t.Errorf("caption = %q", scenes[0].Caption)
		}
		if scenes[1].Caption != "Behind the door lived a mouse named Pip! He wore a red scarf." {
			t.Errorf("second caption must stop after two sentences, got %q", scenes[1].Caption)
		}
		for i, sc := range scenes {
			if strings.TrimSpace(sc.Caption) == "" {
				t.Errorf("scene %d caption empty", i)
			}
			if sc.ImagePrompt != ImagePromptFromCaption(sc.Caption) {
				t.Errorf("scene %d image prompt not from the fixed template", i)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := FallbackScenes(planStory, 5)
		b := FallbackScenes(planStory, 5)
		if !reflect.DeepEqual(a, b) {
			t.Error("heuristic must be deterministic for the same story and N")
		}
	})

	t.Run("fewer paragraphs than N", func(t *testing.T) {
		story := "Only one paragraph here.\n\nAnd a second one."
		scenes := FallbackScenes(story, 6)
		if len(scenes) != 2 {
			t.Errorf("got %d scenes, want 2 (never pad)", len(scenes))
		}
	})

	t.Run("single run-on paragraph truncated", func(t *testing.T) {
		long := strings.Repeat("word ", 80) // 无句末标点
		scenes := FallbackScenes(long, 4)
		if len(scenes) != 1 {
			t.Fatalf("got %d scenes, want 1", len(scenes))
		}
		if got := len([]rune(scenes[0].Caption)); got > 160 {
			t.Errorf("caption length = %d runes, want <= 160", got)
		}
	})

	t.Run("empty story", func(t *testing.T) {
		if scenes := FallbackScenes("   ", 4); scenes != nil {
			t.Errorf("empty story must yield no scenes, got %v", scenes)
		}
	})
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"One. Two. Three.", []string{"One.", "Two.", "Three."}},
		{"Hello! Are you there? Yes.", []string{"Hello!", "Are you there?", "Yes."}},
		{"No terminal punctuation", []string{"No terminal punctuation"}},
		{"Dot.at.end stays. Next one.", []string{"Dot.at.end stays.", "Next one."}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := splitSentences(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSentences(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
