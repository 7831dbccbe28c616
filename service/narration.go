package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Narrator 文本转旁白语音。单层、尽力而为，错误直接上抛给调用方。
type Narrator struct {
	VoiceAPI string
	Client   *http.Client
}

func NewNarrator(voiceAPI string) *Narrator {
	return &Narrator{
		VoiceAPI: voiceAPI,
		Client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

// Synthesize 把整篇故事写成 wav 文件
func (n *Narrator) Synthesize(ctx context.Context, text, outPath string) error {
	if n.VoiceAPI == "" {
		return errors.New("voice api not configured")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	reqBody := map[string]interface{}{
		"text":   text,
		"rate":   175,
		"format": "wav",
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.VoiceAPI+"/v1/tts", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
