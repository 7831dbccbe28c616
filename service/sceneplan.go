package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"storybook-server/models"
)

// ScenePlanner 把成稿故事切成有序插图场景。
// 远端结构化抽取失败时退回确定性的段落切分，两条路径互不依赖。
type ScenePlanner struct {
	Remote LLMClient // 可为 nil
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(\\[.*?\\])\\s*```")
	anyArrayRe   = regexp.MustCompile(`(?s)(\[.*\])`)
)

type sceneItem struct {
	Caption     string `json:"caption"`
	ImagePrompt string `json:"image_prompt"`
}

// extractJSONArray 两段式容错解析：先找 ```json 围栏块，再找首个中括号区段
func extractJSONArray(text string) []sceneItem {
	for _, re := range []*regexp.Regexp{fencedJSONRe, anyArrayRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var items []sceneItem
		if err := json.Unmarshal([]byte(m[1]), &items); err == nil {
			return items
		}
	}
	return nil
}

// Plan 返回 ≤ numScenes 个场景，caption 均非空；内容不足时返回更少，从不补空场景。
// 不会失败：远端层任何问题都以启发式结果兜底。
func (p *ScenePlanner) Plan(ctx context.Context, storyText string, numScenes int, preferRemote bool) ([]models.Scene, string) {
	if numScenes < 1 {
		numScenes = 1
	}
	if preferRemote && p.Remote != nil {
		if scenes := p.planRemote(ctx, storyText, numScenes); len(scenes) > 0 {
			return scenes, "remote_llm"
		}
		logrus.Warn("[scenes] 远端分场失败，退回段落切分")
	}
	return FallbackScenes(storyText, numScenes), "paragraph_split"
}

func (p *ScenePlanner) planRemote(ctx context.Context, storyText string, numScenes int) []models.Scene {
	txt, err := p.Remote.Complete(ctx, storySystemPrompt, ScenePrompt(storyText, numScenes))
	if err != nil || strings.TrimSpace(txt) == "" {
		return nil
	}
	items := extractJSONArray(txt)
	if len(items) == 0 {
		return nil
	}
	if len(items) > numScenes {
		items = items[:numScenes]
	}
	var cleaned []models.Scene
	for _, item := range items {
		caption := strings.TrimSpace(item.Caption)
		if caption == "" {
			continue
		}
		ip := strings.TrimSpace(item.ImagePrompt)
		if ip == "" {
			ip = ImagePromptFromCaption(caption)
		}
		cleaned = append(cleaned, models.Scene{Caption: caption, ImagePrompt: ip})
	}
	return cleaned
}

// FallbackScenes 确定性启发式：取前 numScenes 个非空段落，
// 每段取前两句作 caption，切不出句子时取前 160 字符。
func FallbackScenes(storyText string, numScenes int) []models.Scene {
	paras := models.SplitParagraphs(storyText)
	if len(paras) == 0 {
		if s := strings.TrimSpace(storyText); s != "" {
			paras = []string{s}
		} else {
			return nil
		}
	}
	if len(paras) > numScenes {
		paras = paras[:numScenes]
	}
	scenes := make([]models.Scene, 0, len(paras))
	for _, para := range paras {
		bits := splitSentences(para)
		if len(bits) > 2 {
			bits = bits[:2]
		}
		caption := strings.TrimSpace(strings.Join(bits, " "))
		// 段落切不出完整句子时退到字符上限
		if caption == "" || !strings.ContainsAny(para, ".!?") {
			caption = truncateRunes(para, 160)
		}
		scenes = append(scenes, models.Scene{
			Caption:     caption,
			ImagePrompt: ImagePromptFromCaption(caption),
		})
	}
	return scenes
}

// splitSentences 在句末标点后跟空白处切分，标点保留在句内
func splitSentences(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && isSpace(runes[i+1]) {
				out = append(out, strings.TrimSpace(string(runes[start:i+1])))
				for i+1 < len(runes) && isSpace(runes[i+1]) {
					i++
				}
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
			out = append(out, tail)
		}
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
