package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 流水线动作状态（系统内统一使用）
const (
	RunStatusPending    = "pending"
	RunStatusProcessing = "processing"
	RunStatusFinished   = "finished"
	RunStatusFailed     = "failed"
)

// 核心动作类型
const (
	RunTypeStory     = "generate_story"     // 种子 -> 故事
	RunTypeScenes    = "plan_scenes"        // 故事 -> 分场
	RunTypeImages    = "generate_images"    // 分场 -> 插图
	RunTypeNarration = "generate_narration" // 故事 -> 旁白语音
	RunTypeSave      = "save_entry"         // 会话 -> 库条目
	RunTypeExport    = "export_scene_pdf"   // 分场 -> PDF
)

// Run 一次生成动作的留痕记录：哪个层级最终产出、耗时、结果摘要
type Run struct {
	ID         string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SessionID  string        `json:"sessionId"`
	Type       string        `json:"type"`
	Status     string        `json:"status"`
	TierUsed   string        `json:"tierUsed"`
	Progress   int           `json:"progress"`
	Message    string        `json:"message"`
	Parameters RunParameters `gorm:"type:json" json:"parameters"`
	Result     RunResult     `gorm:"type:json" json:"result"`
	Error      string        `json:"error"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type RunParameters struct {
	Seed         string `json:"seed,omitempty"`
	Tone         string `json:"tone,omitempty"`
	SceneCount   int    `json:"scene_count,omitempty"`
	PreferRemote bool   `json:"prefer_remote,omitempty"`
	Steps        int    `json:"steps,omitempty"`
	ModelID      string `json:"model_id,omitempty"`
}

// RunResult 仅保留最小结果摘要
type RunResult struct {
	Paragraphs int    `json:"paragraphs,omitempty"`
	Scenes     int    `json:"scenes,omitempty"`
	Images     int    `json:"images,omitempty"`
	EntryID    string `json:"entry_id,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

// 实现 driver.Valuer 接口: Go Struct -> JSON String (存入数据库)
func (p RunParameters) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// 实现 sql.Scanner 接口: JSON String -> Go Struct (从数据库读取)
func (p *RunParameters) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, p)
}

func (r RunResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *RunResult) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, r)
}

func (r *Run) UpdateStatus(db *gorm.DB, status, tier string, result *RunResult, errMsg string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if tier != "" {
		updates["tier_used"] = tier
	}
	if result != nil {
		jsonBytes, err := json.Marshal(result)
		if err == nil {
			updates["result"] = jsonBytes
		}
	}
	if errMsg != "" {
		updates["error"] = errMsg
	}
	if status == RunStatusFinished || status == RunStatusFailed {
		updates["finished_at"] = time.Now()
		updates["progress"] = 100
	}
	return db.Model(r).Updates(updates).Error
}

func CreateRun(db *gorm.DB, r *Run) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.StartedAt.IsZero() {
		r.StartedAt = now
	}
	return db.Create(r).Error
}

func ListRuns(db *gorm.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// 强制表名为 "run"
func (Run) TableName() string {
	return "run"
}
