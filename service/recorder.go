package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storybook-server/models"
)

// RunRecorder 把每个生成动作写进 run ledger。
// 没配数据库时各方法都是空操作，核心流水线不受影响。
type RunRecorder struct {
	DB *gorm.DB
}

func NewRunRecorder(db *gorm.DB) *RunRecorder {
	return &RunRecorder{DB: db}
}

func (r *RunRecorder) enabled() bool {
	return r != nil && r.DB != nil
}

func (r *RunRecorder) Begin(sessionID, runType string, params models.RunParameters) *models.Run {
	if !r.enabled() {
		return nil
	}
	run := &models.Run{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Type:       runType,
		Status:     models.RunStatusProcessing,
		Parameters: params,
		StartedAt:  time.Now(),
	}
	if err := models.CreateRun(r.DB, run); err != nil {
		logrus.Warnf("[ledger] 写入 run 失败: %v", err)
		return nil
	}
	return run
}

func (r *RunRecorder) Finish(run *models.Run, tier string, result models.RunResult) {
	if !r.enabled() || run == nil {
		return
	}
	if err := run.UpdateStatus(r.DB, models.RunStatusFinished, tier, &result, ""); err != nil {
		logrus.Warnf("[ledger] 更新 run 失败: %v", err)
	}
}

func (r *RunRecorder) Fail(run *models.Run, tier string, cause error) {
	if !r.enabled() || run == nil {
		return
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := run.UpdateStatus(r.DB, models.RunStatusFailed, tier, nil, msg); err != nil {
		logrus.Warnf("[ledger] 更新 run 失败: %v", err)
	}
}

func (r *RunRecorder) List(limit int) ([]models.Run, error) {
	if !r.enabled() {
		return nil, nil
	}
	return models.ListRuns(r.DB, limit)
}
