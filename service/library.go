package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storybook-server/models"
)

// LibraryStore 持久库：每个条目一个目录，meta.json 为清单契约。
// 条目保存后不再原地修改；再次保存产生新 id 的新条目。
type LibraryStore struct {
	Root      string
	Assembler DocumentAssembler // 可为 nil
}

func NewLibraryStore(root string, assembler DocumentAssembler) *LibraryStore {
	return &LibraryStore{Root: root, Assembler: assembler}
}

// newEntryID 时间前缀保证按创建时间排序，uuid 后缀保证唯一
func newEntryID() string {
	return time.Now().Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// Save 把 BookState 快照按值拷入新条目，返回条目 id。
// 故事正文为空时返回 ErrValidation，不产生任何条目。
func (s *LibraryStore) Save(ctx context.Context, book *models.BookState) (string, error) {
	if book == nil || strings.TrimSpace(book.Story.Body) == "" {
		return "", fmt.Errorf("no story to save: %w", ErrValidation)
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return "", err
	}

	eid := newEntryID()
	folder := filepath.Join(s.Root, eid)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	title := book.Story.Title
	if title == "" {
		title = "My Storybook"
	}
	if err := os.WriteFile(filepath.Join(folder, "story.txt"), []byte(book.Story.Body), 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(folder, "title.txt"), []byte(title), 0o644); err != nil {
		return "", err
	}

	// 封面
	coverRel := ""
	if book.CoverPath != "" && fileExists(book.CoverPath) {
		if err := copyFile(book.CoverPath, filepath.Join(folder, "cover.png")); err == nil {
			coverRel = "cover.png"
		} else {
			logrus.Warnf("[library] 封面拷贝失败: %v", err)
		}
	}

	// 场景：caption + 插图逐一拷入，插图缺失可容忍
	var scenesMeta []models.SceneMeta
	if len(book.Scenes) > 0 {
		scenesDir := filepath.Join(folder, "scenes")
		if err := os.MkdirAll(scenesDir, 0o755); err != nil {
			return "", err
		}
		for i, sc := range book.Scenes {
			imgRel := ""
			if sc.ImagePath != "" && fileExists(sc.ImagePath) {
				name := fmt.Sprintf("scene_%02d.png", i+1)
				if err := copyFile(sc.ImagePath, filepath.Join(scenesDir, name)); err == nil {
					imgRel = "scenes/" + name
				} else {
					logrus.Warnf("[library] 场景 %d 插图拷贝失败: %v", i+1, err)
				}
			}
			scenesMeta = append(scenesMeta, models.SceneMeta{Caption: sc.Caption, ImagePath: imgRel})
		}
	}

	// 故事 PDF：有排版器时为条目新建一份；失败只记日志
	storyPDF := ""
	if s.Assembler != nil {
		var images []string
		if coverRel != "" {
			images = append(images, filepath.Join(folder, coverRel))
		}
		if err := s.Assembler.BuildStoryPDF(ctx, title, book.Story.Body, images, filepath.Join(folder, "story.pdf")); err != nil {
			logrus.Warnf("[library] 故事 PDF 生成失败: %v", err)
		} else {
			storyPDF = "story.pdf"
		}
	}

	// 会话中已有分场 PDF 的话一并归档
	scenePDF := ""
	if book.ScenePDFPath != "" && fileExists(book.ScenePDFPath) {
		name := filepath.Base(book.ScenePDFPath)
		if err := copyFile(book.ScenePDFPath, filepath.Join(folder, name)); err == nil {
			scenePDF = name
		}
	}

	entry := models.LibraryEntry{
		ID:           eid,
		Title:        title,
		CreatedAt:    time.Now().Format("2006-01-02 15:04:05"),
		CoverImage:   coverRel,
		LastStoryPDF: storyPDF,
		LastScenePDF: scenePDF,
		Scenes:       scenesMeta,
	}
	metaBytes, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(folder, "meta.json"), metaBytes, 0o644); err != nil {
		return "", err
	}
	logrus.Infof("[library] 条目已保存: %s (%d 场景)", eid, len(scenesMeta))
	return eid, nil
}

// List 按 id 倒序（即最新在前）返回条目摘要
func (s *LibraryStore) List(limit int) ([]models.LibraryEntry, error) {
	if limit <= 0 {
		limit = 24
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return nil, err
	}
	children, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, err
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name() > children[j].Name() })

	var entries []models.LibraryEntry
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		entry, err := s.readMeta(child.Name())
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
		if len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// Get 读取单个条目清单
func (s *LibraryStore) Get(id string) (*models.LibraryEntry, error) {
	return s.readMeta(id)
}

func (s *LibraryStore) readMeta(id string) (*models.LibraryEntry, error) {
	folder := filepath.Join(s.Root, id)
	metaBytes, err := os.ReadFile(filepath.Join(folder, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("library entry %s: %w", id, ErrNotFound)
	}
	var entry models.LibraryEntry
	if err := json.Unmarshal(metaBytes, &entry); err != nil {
		return nil, fmt.Errorf("library entry %s manifest broken: %w", id, err)
	}
	entry.Dir = folder
	return &entry, nil
}

// Load 从条目重建全新 BookState：故事与场景均为独立拷贝，光标归零
func (s *LibraryStore) Load(id string) (*models.BookState, *models.LibraryEntry, error) {
	entry, err := s.readMeta(id)
	if err != nil {
		return nil, nil, err
	}
	folder := entry.Dir

	storyBytes, err := os.ReadFile(filepath.Join(folder, "story.txt"))
	if err != nil {
		storyBytes = nil
	}
	title := entry.Title
	if titleBytes, err := os.ReadFile(filepath.Join(folder, "title.txt")); err == nil {
		title = strings.TrimSpace(string(titleBytes))
	}

	book := &models.BookState{
		Story:  models.Story{Title: title, Body: string(storyBytes)},
		Cursor: 0,
	}
	if entry.CoverImage != "" {
		book.CoverPath = filepath.Join(folder, entry.CoverImage)
	}
	scenes := make([]models.Scene, 0, len(entry.Scenes))
	for _, sm := range entry.Scenes {
		sc := models.Scene{Caption: sm.Caption, ImagePrompt: ImagePromptFromCaption(sm.Caption)}
		if sm.ImagePath != "" {
			sc.ImagePath = filepath.Join(folder, filepath.FromSlash(sm.ImagePath))
		}
		scenes = append(scenes, sc)
	}
	book.Scenes = scenes
	return book, entry, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
