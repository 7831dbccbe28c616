package models

import (
	"reflect"
	"testing"
)

func sampleScenes(n int) []Scene {
	scenes := make([]Scene, n)
	for i := range scenes {
		scenes[i] = Scene{Caption: "caption", ImagePrompt: "prompt"}
	}
	return scenes
}

func checkInvariant(t *testing.T, b *BookState) {
	t.Helper()
	max := len(b.Scenes)
	if max == 0 {
		max = 1
	}
	if b.Cursor < 0 || b.Cursor >= max {
		t.Fatalf("cursor invariant violated: cursor=%d scenes=%d", b.Cursor, len(b.Scenes))
	}
}

func TestBookState_Navigation(t *testing.T) {
	tests := []struct {
		name   string
		scenes int
		ops    []string
		want   int
	}{
		{"next moves forward", 3, []string{"next"}, 1},
		{"next clamps at last", 3, []string{"next", "next", "next", "next"}, 2},
		{"prev clamps at zero", 3, []string{"prev", "prev"}, 0},
		{"last jumps to end", 5, []string{"last"}, 4},
		{"first after last", 5, []string{"last", "first"}, 0},
		{"mixed walk", 4, []string{"next", "next", "prev", "last", "next"}, 3},
		{"empty no-op next", 0, []string{"next", "last"}, 0},
		{"empty no-op prev", 0, []string{"prev", "first"}, 0},
		{"single page", 1, []string{"next", "last", "prev"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &BookState{}
			b.SetScenes(sampleScenes(tt.scenes))
			for _, op := range tt.ops {
				switch op {
				case "first":
					b.GotoFirst()
				case "prev":
					b.GotoPrev()
				case "next":
					b.GotoNext()
				case "last":
					b.GotoLast()
				}
				checkInvariant(t, b)
			}
			if b.Cursor != tt.want {
				t.Errorf("cursor = %d, want %d", b.Cursor, tt.want)
			}
		})
	}
}

func TestBookState_SetScenesResetsCursor(t *testing.T) {
	b := &BookState{}
	b.SetScenes(sampleScenes(5))
	b.GotoLast()
	if b.Cursor != 4 {
		t.Fatalf("cursor = %d, want 4", b.Cursor)
	}

	b.SetScenes(sampleScenes(2))
	if b.Cursor != 0 {
		t.Errorf("replacing scenes must reset cursor, got %d", b.Cursor)
	}

	b.GotoLast()
	b.SetScenes(nil)
	if b.Cursor != 0 {
		t.Errorf("clearing scenes must reset cursor, got %d", b.Cursor)
	}
	if b.CurrentScene() != nil {
		t.Error("CurrentScene on empty sequence must be nil")
	}
}

func TestBookState_SetScenesCopies(t *testing.T) {
	src := sampleScenes(3)
	b := &BookState{}
	b.SetScenes(src)
	src[0].Caption = "mutated"
	if b.Scenes[0].Caption == "mutated" {
		t.Error("SetScenes must not alias the caller's slice")
	}
}

func TestBookState_Clone(t *testing.T) {
	b := &BookState{Story: Story{Title: "T", Body: "B"}}
	b.SetScenes(sampleScenes(2))
	c := b.Clone()
	c.Scenes[0].Caption = "changed"
	c.GotoLast()
	if b.Scenes[0].Caption == "changed" {
		t.Error("clone must not share scene storage")
	}
	if b.Cursor != 0 {
		t.Errorf("clone navigation must not move the original cursor, got %d", b.Cursor)
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"two paragraphs", "one\n\ntwo", []string{"one", "two"}},
		{"blank runs skipped", "one\n\n\n\ntwo\n\n", []string{"one", "two"}},
		{"windows newlines", "one\r\n\r\ntwo", []string{"one", "two"}},
		{"whitespace only", "   \n\n  \n", nil},
		{"single paragraph", "just one", []string{"just one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
