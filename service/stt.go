package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Transcriber 语音转文字。上游能力，无回退层，错误上抛。
type Transcriber struct {
	Endpoint string
	Client   *http.Client
}

func NewTranscriber(endpoint string) *Transcriber {
	return &Transcriber{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

// Transcribe 调 whisper worker；modelSize 如 tiny/base/small，computeType 如 int8
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, modelSize, computeType string) (string, error) {
	if t.Endpoint == "" {
		return "", errors.New("stt api not configured")
	}
	if modelSize == "" {
		modelSize = "small"
	}
	if computeType == "" {
		computeType = "int8"
	}
	reqBody := map[string]interface{}{
		"audio_path":   audioPath,
		"model_size":   modelSize,
		"compute_type": computeType,
		"device":       "cpu",
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.Endpoint+"/v1/transcribe", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt status: %d", resp.StatusCode)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}
