package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// LocalLLM 本地量化模型回退层：模型文件必须在磁盘上存在，
// 推理经由 llama.cpp server 的 chat 接口完成。
type LocalLLM struct {
	ModelPath string
	Endpoint  string
	Client    *http.Client
}

func NewLocalLLM(modelPath, endpoint string) *LocalLLM {
	return &LocalLLM{
		ModelPath: modelPath,
		Endpoint:  endpoint,
		Client:    &http.Client{Timeout: 3 * time.Minute},
	}
}

// Available 模型路径已配置且文件存在才会被纳入回退链
func (l *LocalLLM) Available() bool {
	if l == nil || l.ModelPath == "" || l.Endpoint == "" {
		return false
	}
	_, err := os.Stat(l.ModelPath)
	return err == nil
}

func (l *LocalLLM) Complete(ctx context.Context, system, user string) (string, error) {
	if !l.Available() {
		return "", errors.New("local model not available")
	}
	reqBody := map[string]interface{}{
		"model": l.ModelPath,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  700,
		"temperature": 0.9,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.Endpoint+"/v1/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llama server status: %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("llama server: empty choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
