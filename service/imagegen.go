package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// 占位图固定尺寸与底色
const (
	placeholderWidth  = 1024
	placeholderHeight = 768
)

var placeholderColor = color.RGBA{R: 240, G: 250, B: 255, A: 255}

// ImageGenerator 三层回退的插图生成：
// 远端生图 API -> 本地扩散 worker -> 纯色占位图。
// 占位层无条件落盘，因此整体契约是"槽位永不为空"。
type ImageGenerator struct {
	RemoteURL   string
	APIKey      string
	WorkerAddr  string // 本地扩散模型 worker，空则跳过该层
	AspectRatio string
	Client      *http.Client
}

func NewImageGenerator(remoteURL, apiKey, workerAddr string) *ImageGenerator {
	return &ImageGenerator{
		RemoteURL:   remoteURL,
		APIKey:      apiKey,
		WorkerAddr:  workerAddr,
		AspectRatio: "1:1",
		Client:      &http.Client{Timeout: 3 * time.Minute},
	}
}

// Generate 为一个输出槽位生成插图，返回文件路径与产出层名。
// 只有占位图都写不进磁盘时才返回错误。
func (g *ImageGenerator) Generate(ctx context.Context, prompt, outPath string, steps int, modelID string) (string, string, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	path, tier, _, err := RunChain(ctx, "image",
		func(s string) bool { return s == "" },
		Tier[string]{
			Name: "remote_api",
			Skip: g.RemoteURL == "" || g.APIKey == "",
			Run: func(ctx context.Context) (string, error) {
				return g.generateRemote(ctx, prompt, outPath)
			},
		},
		Tier[string]{
			Name: "local_diffusion",
			Skip: g.WorkerAddr == "",
			Run: func(ctx context.Context) (string, error) {
				return g.generateWorker(ctx, prompt, outPath, steps, modelID)
			},
		},
		Tier[string]{
			Name: "placeholder",
			Run: func(ctx context.Context) (string, error) {
				return writePlaceholder(outPath)
			},
		},
	)
	if err != nil {
		// 占位层也失败（磁盘问题），上抛
		return "", "", err
	}
	return path, tier, nil
}

// generateRemote 单次 multipart 请求；非 2xx 或传输错误都算层失败
func (g *ImageGenerator) generateRemote(ctx context.Context, prompt, outPath string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("prompt", prompt)
	_ = w.WriteField("aspect_ratio", g.AspectRatio)
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.RemoteURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		logrus.Warnf("[image] 远端生图 %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("remote image status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}

// generateWorker 调本地扩散 worker；model 为空表示让 worker 按可用硬件自选
func (g *ImageGenerator) generateWorker(ctx context.Context, prompt, outPath string, steps int, modelID string) (string, error) {
	if steps <= 0 {
		steps = 6
	}
	reqBody := map[string]interface{}{
		"prompt": prompt,
		"steps":  steps,
	}
	if modelID != "" && modelID != "auto" {
		reqBody["model_id"] = modelID
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.WorkerAddr+"/v1/txt2img", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("diffusion worker status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("diffusion worker returned empty body")
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}

// writePlaceholder 确定性纯色占位图，保证槽位非空
func writePlaceholder(outPath string) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			img.SetRGBA(x, y, placeholderColor)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", err
	}
	return outPath, nil
}
