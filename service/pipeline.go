package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"storybook-server/models"
)

// Pipeline 把各生成组件和会话/库/留痕绑在一起。
// 所有动作都在请求内同步跑完，无后台队列，层级严格串行。
type Pipeline struct {
	Sessions  *SessionManager
	Story     *StoryGenerator
	Planner   *ScenePlanner
	Images    *ImageGenerator
	Narrator  *Narrator
	STT       *Transcriber
	Store     *LibraryStore
	Assembler DocumentAssembler // 可为 nil
	Recorder  *RunRecorder

	ImagesDir string
	AudioDir  string
}

// GenerateStory 种子 -> 语气 -> 故事，写入会话并清空旧场景
func (p *Pipeline) GenerateStory(ctx context.Context, sess *Session, seed string) (tone, tier string, err error) {
	tone = DetectSentiment(seed)
	run := p.Recorder.Begin(sess.ID, models.RunTypeStory, models.RunParameters{Seed: seed, Tone: tone})

	body, tier, err := p.Story.Generate(ctx, seed, tone)
	if err != nil {
		p.Recorder.Fail(run, tier, err)
		return tone, tier, err
	}

	sess.Book.SetStory(TitleFromSeed(seed), body)
	sess.Book.SetScenes(nil)
	sess.Book.CoverPath = ""

	p.Recorder.Finish(run, tier, models.RunResult{Paragraphs: len(sess.Book.Story.Paragraphs())})
	logrus.Infof("[story] 会话 %s 生成完成 (tone=%s, tier=%s)", sess.ID, tone, tier)
	return tone, tier, nil
}

// PlanScenes 故事 -> 有序场景，整体替换并把光标归零
func (p *Pipeline) PlanScenes(ctx context.Context, sess *Session, numScenes int, preferRemote bool) (int, string, error) {
	if sess.Book.Story.Body == "" {
		return 0, "", fmt.Errorf("no story yet: %w", ErrValidation)
	}
	run := p.Recorder.Begin(sess.ID, models.RunTypeScenes, models.RunParameters{
		SceneCount: numScenes, PreferRemote: preferRemote,
	})

	scenes, tier := p.Planner.Plan(ctx, sess.Book.Story.Body, numScenes, preferRemote)
	sess.Book.SetScenes(scenes)

	p.Recorder.Finish(run, tier, models.RunResult{Scenes: len(scenes)})
	logrus.Infof("[scenes] 会话 %s 规划了 %d 个场景 (tier=%s)", sess.ID, len(scenes), tier)
	return len(scenes), tier, nil
}

// GenerateImages 逐场景顺序生图：进度单调上报，后面场景失败不影响前面。
// 每个槽位由占位层兜底，永不为空。
func (p *Pipeline) GenerateImages(ctx context.Context, sess *Session, steps int, modelID string) (int, error) {
	if len(sess.Book.Scenes) == 0 {
		return 0, fmt.Errorf("no scenes yet: %w", ErrValidation)
	}
	run := p.Recorder.Begin(sess.ID, models.RunTypeImages, models.RunParameters{Steps: steps, ModelID: modelID})

	total := len(sess.Book.Scenes)
	sess.SetProgress(Progress{Total: total, Done: 0, Status: "processing"})

	for i := range sess.Book.Scenes {
		sc := &sess.Book.Scenes[i]
		prompt := sc.ImagePrompt
		if prompt == "" {
			prompt = ImagePromptFromCaption(sc.Caption)
		}
		prompt = "No text on the image. " + prompt

		outPath := filepath.Join(p.ImagesDir, sess.ID, fmt.Sprintf("scene_%02d.png", i+1))
		path, tier, err := p.Images.Generate(ctx, prompt, outPath, steps, modelID)
		if err != nil {
			// 占位层都写不了，磁盘级故障
			sess.SetProgress(Progress{Total: total, Done: i, Status: "failed"})
			p.Recorder.Fail(run, tier, err)
			return i, err
		}
		sc.ImagePath = path
		sess.SetProgress(Progress{Total: total, Done: i + 1, Status: "processing"})
	}

	// 第一页兼作封面
	if sess.Book.CoverPath == "" && total > 0 {
		sess.Book.CoverPath = sess.Book.Scenes[0].ImagePath
	}
	sess.SetProgress(Progress{Total: total, Done: total, Status: "finished"})
	p.Recorder.Finish(run, "", models.RunResult{Images: total})
	return total, nil
}

// Narrate 整篇故事 -> wav；单层，错误直接上抛
func (p *Pipeline) Narrate(ctx context.Context, sess *Session) (string, error) {
	if sess.Book.Story.Body == "" {
		return "", fmt.Errorf("no story yet: %w", ErrValidation)
	}
	run := p.Recorder.Begin(sess.ID, models.RunTypeNarration, models.RunParameters{})

	outPath := filepath.Join(p.AudioDir, sess.ID, "story.wav")
	if err := p.Narrator.Synthesize(ctx, sess.Book.Story.Body, outPath); err != nil {
		p.Recorder.Fail(run, "", err)
		return "", err
	}
	sess.Book.AudioPath = outPath
	p.Recorder.Finish(run, "tts", models.RunResult{OutputPath: outPath})
	return outPath, nil
}

// ExportScenePDF 把当前分场排版成一册 PDF，路径记入会话，
// 之后保存条目时一并归档
func (p *Pipeline) ExportScenePDF(ctx context.Context, sess *Session) (string, error) {
	if len(sess.Book.Scenes) == 0 {
		return "", fmt.Errorf("no scenes yet: %w", ErrValidation)
	}
	if p.Assembler == nil {
		return "", fmt.Errorf("assembler worker not configured")
	}
	run := p.Recorder.Begin(sess.ID, models.RunTypeExport, models.RunParameters{SceneCount: len(sess.Book.Scenes)})

	pages := make([]CaptionImage, 0, len(sess.Book.Scenes))
	for _, sc := range sess.Book.Scenes {
		pages = append(pages, CaptionImage{Caption: sc.Caption, ImagePath: sc.ImagePath})
	}
	outPath := filepath.Join(p.ImagesDir, sess.ID, "scenes.pdf")
	if err := p.Assembler.BuildScenePDF(ctx, sess.Book.Story.Title, pages, outPath); err != nil {
		p.Recorder.Fail(run, "", err)
		return "", err
	}
	sess.Book.ScenePDFPath = outPath
	p.Recorder.Finish(run, "", models.RunResult{OutputPath: outPath})
	return outPath, nil
}

// SaveBook 会话快照 -> 库条目
func (p *Pipeline) SaveBook(ctx context.Context, sess *Session) (string, error) {
	run := p.Recorder.Begin(sess.ID, models.RunTypeSave, models.RunParameters{})
	eid, err := p.Store.Save(ctx, sess.Book)
	if err != nil {
		p.Recorder.Fail(run, "", err)
		return "", err
	}
	p.Recorder.Finish(run, "", models.RunResult{EntryID: eid, Scenes: len(sess.Book.Scenes)})
	return eid, nil
}
