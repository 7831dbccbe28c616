package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 语音 -> 文字（上游能力直通，无回退层）
func Transcribe(c *gin.Context) {
	var req struct {
		AudioPath   string `json:"audio_path"`
		ModelSize   string `json:"model_size"`
		ComputeType string `json:"compute_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AudioPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio_path 不能为空"})
		return
	}

	text, err := pipeline.STT.Transcribe(c.Request.Context(), req.AudioPath, req.ModelSize, req.ComputeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "转写失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// 最近的生成动作留痕（未配置数据库时为空列表）
func ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := pipeline.Recorder.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}
