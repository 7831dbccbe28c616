package service

import (
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestImageGenerator_PlaceholderWhenNothingConfigured(t *testing.T) {
	g := NewImageGenerator("", "", "")
	out := filepath.Join(t.TempDir(), "scene_01.png")

	path, tier, err := g.Generate(context.Background(), "a tiny door", out, 6, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path == "" {
		t.Fatal("image generator must never return an absent ref")
	}
	if tier != "placeholder" {
		t.Errorf("tier = %q, want placeholder", tier)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("placeholder not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("placeholder is not a valid png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != placeholderWidth || b.Dy() != placeholderHeight {
		t.Errorf("placeholder size = %dx%d, want %dx%d", b.Dx(), b.Dy(), placeholderWidth, placeholderHeight)
	}
}

func TestImageGenerator_RemoteFailureFallsToPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewImageGenerator(srv.URL, "key", "")
	out := filepath.Join(t.TempDir(), "scene.png")
	path, tier, err := g.Generate(context.Background(), "prompt", out, 6, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != "placeholder" || path != out {
		t.Errorf("got (%q, %q), want placeholder at %q", path, tier, out)
	}
}

func TestImageGenerator_RemoteSuccess(t *testing.T) {
	body := []byte("\x89PNG fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		if got := r.FormValue("prompt"); got != "prompt" {
			t.Errorf("prompt field = %q", got)
		}
		if got := r.FormValue("aspect_ratio"); got != "1:1" {
			t.Errorf("aspect_ratio field = %q", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer srv.Close()

	g := NewImageGenerator(srv.URL, "key", "")
	out := filepath.Join(t.TempDir(), "scene.png")
	path, tier, err := g.Generate(context.Background(), "prompt", out, 6, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != "remote_api" {
		t.Errorf("tier = %q, want remote_api", tier)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("remote image not written: %v", err)
	}
	if string(data) != string(body) {
		t.Error("remote bytes must be written verbatim")
	}
}

func TestImageGenerator_WorkerTierAfterRemote(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer remote.Close()
	worker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/txt2img" {
			t.Errorf("worker path = %q", r.URL.Path)
		}
		w.Write([]byte("diffusion bytes"))
	}))
	defer worker.Close()

	g := NewImageGenerator(remote.URL, "key", worker.URL)
	out := filepath.Join(t.TempDir(), "scene.png")
	_, tier, err := g.Generate(context.Background(), "prompt", out, 8, "auto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != "local_diffusion" {
		t.Errorf("tier = %q, want local_diffusion", tier)
	}
}
