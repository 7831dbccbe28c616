package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// CaptionImage 一页: 说明文字 + 插图（可缺失）
type CaptionImage struct {
	Caption   string `json:"caption"`
	ImagePath string `json:"image_path,omitempty"`
}

// DocumentAssembler 文档排版的外部边界：排版与编码细节在接口之后。
// 库的保存流程只读消费，排版失败不影响条目本身。
type DocumentAssembler interface {
	BuildStoryPDF(ctx context.Context, title, storyText string, images []string, outPath string) error
	BuildScenePDF(ctx context.Context, title string, pages []CaptionImage, outPath string) error
}

// WorkerAssembler 通过排版 worker 生成 PDF
type WorkerAssembler struct {
	Addr   string
	Client *http.Client
}

func NewWorkerAssembler(addr string) *WorkerAssembler {
	return &WorkerAssembler{Addr: addr, Client: &http.Client{Timeout: 2 * time.Minute}}
}

func (a *WorkerAssembler) BuildStoryPDF(ctx context.Context, title, storyText string, images []string, outPath string) error {
	return a.build(ctx, "/v1/pdf/story", map[string]interface{}{
		"title":  title,
		"story":  storyText,
		"images": images,
	}, outPath)
}

func (a *WorkerAssembler) BuildScenePDF(ctx context.Context, title string, pages []CaptionImage, outPath string) error {
	return a.build(ctx, "/v1/pdf/scenes", map[string]interface{}{
		"title": title,
		"pages": pages,
	}, outPath)
}

func (a *WorkerAssembler) build(ctx context.Context, path string, payload map[string]interface{}, outPath string) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Addr+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assembler status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
