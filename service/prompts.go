package service

import (
	"fmt"

	"storybook-server/models"
)

const storySystemPrompt = `You are a friendly children's book author.
Write in simple, vivid language for ages 6-9. Keep it wholesome, kind, and imaginative.
Target length: 6-9 short paragraphs (2-3 sentences each).
End with a gentle lesson in one sentence.`

// 固定插画风格，要求远端分场时写进每条 image_prompt
const sceneStyle = "children's picture book, soft watercolor, bright, friendly, whimsical, simple shapes, high contrast, clean composition"

// StoryUserPrompt 组装含种子与语气的作者提示词
func StoryUserPrompt(seed, tone string) string {
	desired := map[string]string{
		models.TonePositive: "joyful and adventurous",
		models.ToneNegative: "comforting and hopeful (but not sad)",
		models.ToneNeutral:  "curious and calm",
	}[tone]
	if desired == "" {
		desired = "curious and calm"
	}
	return fmt.Sprintf(
		"Seed idea: %s\nDesired tone: %s\n"+
			"Include a clear beginning, middle, and end. "+
			"Use a consistent main character and setting. "+
			"Avoid brand names, violence, or scary imagery.",
		seed, desired)
}

// ImagePromptFromCaption 从说明文字确定性地合成插图提示词
func ImagePromptFromCaption(caption string) string {
	return fmt.Sprintf(
		"children's picture book, soft watercolor, bright and friendly. Depict: %s. No text on image.",
		caption)
}

// ScenePrompt 面向远端结构化输出的分场提示词
func ScenePrompt(storyText string, numScenes int) string {
	jsonHint := `Return ONLY a JSON array like:
[
  {"caption": "1-2 short sentences a child can read.", "image_prompt": "visual description for an illustration"},
  ...
]`
	return fmt.Sprintf(
		"Split the following children's story into clear visual scenes.\n"+
			"Create exactly %d scenes.\n"+
			"Each scene needs:\n"+
			"- caption: 1-2 short, simple sentences a child can read\n"+
			"- image_prompt: a concise visual description (no text overlay) in this style: "+sceneStyle+"\n\n"+
			"%s\n\nStory:\n---\n%s\n---",
		numScenes, jsonHint, storyText)
}
