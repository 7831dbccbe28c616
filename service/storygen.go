package service

import (
	"context"
	"fmt"
	"strings"
)

// StoryGenerator 三层回退的故事生成：
// 远端 LLM -> 本地量化模型 -> 内置采样作者（兜底，视为总是可用）
type StoryGenerator struct {
	Remote  LLMClient // 可为 nil
	Local   *LocalLLM
	Offline *OfflineComposer
}

func NewStoryGenerator(remote LLMClient, local *LocalLLM) *StoryGenerator {
	return &StoryGenerator{Remote: remote, Local: local, Offline: NewOfflineComposer()}
}

// Generate 返回多段故事正文。前两层异常吞掉视为层失败；
// 兜底层不做网络调用，正常情况下链路不会整体失败。
func (g *StoryGenerator) Generate(ctx context.Context, seed, tone string) (string, string, error) {
	if strings.TrimSpace(seed) == "" {
		return "", "", fmt.Errorf("empty seed: %w", ErrValidation)
	}
	userPrompt := StoryUserPrompt(seed, tone)

	body, tier, _, err := RunChain(ctx, "story",
		func(s string) bool { return strings.TrimSpace(s) == "" },
		Tier[string]{
			Name: "remote_llm",
			Skip: g.Remote == nil,
			Run: func(ctx context.Context) (string, error) {
				return g.Remote.Complete(ctx, storySystemPrompt, userPrompt)
			},
		},
		Tier[string]{
			Name: "local_gguf",
			Skip: !g.Local.Available(),
			Run: func(ctx context.Context) (string, error) {
				return g.Local.Complete(ctx, storySystemPrompt, userPrompt)
			},
		},
		Tier[string]{
			Name: "offline_composer",
			Run: func(ctx context.Context) (string, error) {
				return g.Offline.Compose(seed, tone), nil
			},
		},
	)
	if err != nil {
		return "", "", err
	}
	return body, tier, nil
}

// TitleFromSeed 标题取种子前 40 个字符
func TitleFromSeed(seed string) string {
	seed = strings.TrimSpace(seed)
	r := []rune(seed)
	if len(r) > 40 {
		return "Story about " + string(r[:40]) + "..."
	}
	return "Story about " + seed
}
