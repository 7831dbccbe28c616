package service

import (
	"strings"

	"storybook-server/models"
)

// 粗粒度情感词表；种子文本很短，简单计数足以给出 tone 标签
var positiveWords = map[string]bool{
	"happy": true, "magic": true, "magical": true, "friend": true,
	"friendly": true, "love": true, "loves": true, "wonderful": true, "bright": true,
	"joy": true, "joyful": true, "fun": true, "laugh": true, "laughs": true,
	"brave": true, "kind": true, "smile": true, "smiles": true, "adventure": true,
	"beautiful": true, "shiny": true, "sweet": true, "best": true, "great": true,
	"amazing": true, "favorite": true, "play": true, "plays": true, "dream": true,
}

var negativeWords = map[string]bool{
	"sad": true, "lost": true, "lonely": true, "scared": true, "afraid": true,
	"dark": true, "storm": true, "cry": true, "cries": true, "crying": true,
	"broken": true, "hurt": true, "angry": true, "gone": true, "missing": true,
	"alone": true, "worried": true, "sick": true, "rain": true, "cold": true,
}

// DetectSentiment 将种子文本归为 POSITIVE/NEGATIVE/NEUTRAL。
// 同一种子只应调用一次，结果不再重算。
func DetectSentiment(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ToneNeutral
	}
	// 超长种子只看开头一段
	if len(text) > 512 {
		text = text[:512]
	}
	score := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()")
		if positiveWords[w] {
			score++
		} else if negativeWords[w] {
			score--
		}
	}
	switch {
	case score > 0:
		return models.TonePositive
	case score < 0:
		return models.ToneNegative
	default:
		return models.ToneNeutral
	}
}
