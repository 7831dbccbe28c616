package models

// SceneMeta 清单中的一条场景记录，image_path 为条目目录内的相对路径
type SceneMeta struct {
	Caption   string `json:"caption"`
	ImagePath string `json:"image_path,omitempty"`
}

// LibraryEntry 库条目清单（meta.json）。保存后不可变，
// save 与 load 之间的磁盘契约，字段必须精确往返。
type LibraryEntry struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	CreatedAt    string      `json:"created_at"`
	CoverImage   string      `json:"cover_image,omitempty"`
	LastStoryPDF string      `json:"last_story_pdf,omitempty"`
	LastScenePDF string      `json:"last_scene_pdf,omitempty"`
	Scenes       []SceneMeta `json:"scenes"`

	// 条目所在目录（运行期填充，不写入清单）
	Dir string `json:"-"`
}
