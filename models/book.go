package models

import "strings"

// 情感标签：由种子文本推导一次，同一种子不重复计算
const (
	TonePositive = "POSITIVE"
	ToneNegative = "NEGATIVE"
	ToneNeutral  = "NEUTRAL"
)

type Story struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Paragraphs 按空行切分正文，空段不保留
func (s Story) Paragraphs() []string {
	return SplitParagraphs(s.Body)
}

func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// Scene 绘本中的一页：说明文字 + 插图引用
type Scene struct {
	Caption     string `json:"caption"`
	ImagePrompt string `json:"image_prompt"`
	// 插图文件路径，生成失败时为空；所有消费方必须容忍缺失
	ImagePath string `json:"image_path,omitempty"`
}

// BookState 当前会话正在创作/阅读的绘本。
// 不变式: 0 <= Cursor < max(1, len(Scenes))
type BookState struct {
	Story     Story   `json:"story"`
	Scenes    []Scene `json:"scenes"`
	Cursor    int     `json:"cursor"`
	CoverPath string  `json:"cover_path,omitempty"`
	AudioPath string  `json:"audio_path,omitempty"`
	// 会话内已生成的分场 PDF（可选，保存时一并归档）
	ScenePDFPath string `json:"scene_pdf_path,omitempty"`
}

func (b *BookState) SetStory(title, body string) {
	b.Story = Story{Title: title, Body: body}
}

// SetScenes 整体替换场景序列并把光标归零，从不局部修补
func (b *BookState) SetScenes(scenes []Scene) {
	b.Scenes = append([]Scene(nil), scenes...)
	b.Cursor = 0
}

func (b *BookState) PageCount() int {
	return len(b.Scenes)
}

// CurrentScene 返回当前页；无场景时返回 nil
func (b *BookState) CurrentScene() *Scene {
	if len(b.Scenes) == 0 {
		return nil
	}
	return &b.Scenes[b.Cursor]
}

func (b *BookState) GotoFirst() {
	if len(b.Scenes) == 0 {
		return
	}
	b.Cursor = 0
}

func (b *BookState) GotoPrev() {
	if len(b.Scenes) == 0 {
		return
	}
	if b.Cursor > 0 {
		b.Cursor--
	}
}

func (b *BookState) GotoNext() {
	if len(b.Scenes) == 0 {
		return
	}
	if b.Cursor < len(b.Scenes)-1 {
		b.Cursor++
	}
}

func (b *BookState) GotoLast() {
	if len(b.Scenes) == 0 {
		return
	}
	b.Cursor = len(b.Scenes) - 1
}

// Clone 深拷贝，用于从库条目重建全新 BookState，避免共享可变场景序列
func (b *BookState) Clone() *BookState {
	c := *b
	c.Scenes = append([]Scene(nil), b.Scenes...)
	return &c
}
