package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storybook-server/service"
)

var pipeline *service.Pipeline

// Init 注入流水线依赖，在 main 中调用
func Init(p *service.Pipeline) {
	pipeline = p
}

// statusFromErr 校验错误 400，不存在 404，其余 500
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// beginAction 会话正忙时返回 409（一次只接受一个动作）
func beginAction(c *gin.Context, sessionID string) *service.Session {
	sess, err := pipeline.Sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话不存在: " + sessionID})
		return nil
	}
	if !sess.TryBegin() {
		c.JSON(http.StatusConflict, gin.H{"error": "会话正忙，请等待当前动作完成"})
		return nil
	}
	return sess
}

// 创建绘本：种子（文本或语音转写结果）-> 语气 -> 故事
func CreateBook(c *gin.Context) {
	var req struct {
		Seed      string `json:"seed"`
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seed := strings.TrimSpace(req.Seed)
	if seed == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "种子不能为空"})
		return
	}

	sess := pipeline.Sessions.GetOrCreate(req.SessionID)
	if !sess.TryBegin() {
		c.JSON(http.StatusConflict, gin.H{"error": "会话正忙，请等待当前动作完成"})
		return
	}
	defer sess.End()

	tone, tier, err := pipeline.GenerateStory(c.Request.Context(), sess, seed)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": "故事生成失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"tone":       tone,
		"tier":       tier,
		"title":      sess.Book.Story.Title,
		"story":      sess.Book.Story.Body,
	})
}

// 获取当前 BookState。读取也占动作槽，
// 避免与正在执行的生成动作并发读写同一 BookState
func GetBook(c *gin.Context) {
	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"book":       sess.Book,
		"pages":      sess.Book.PageCount(),
	})
}

// 用户显式编辑故事正文
func EditStory(c *gin.Context) {
	var req struct {
		Body  string `json:"body"`
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "正文不能为空"})
		return
	}

	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	title := req.Title
	if title == "" {
		title = sess.Book.Story.Title
	}
	sess.Book.SetStory(title, req.Body)
	c.JSON(http.StatusOK, gin.H{"title": sess.Book.Story.Title, "story": sess.Book.Story.Body})
}

// 故事 -> 分场
func PlanScenes(c *gin.Context) {
	var req struct {
		Count        int   `json:"count"`
		PreferRemote *bool `json:"prefer_remote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// 默认 6，限制在 4-8
	if req.Count == 0 {
		req.Count = 6
	}
	if req.Count < 4 {
		req.Count = 4
	}
	if req.Count > 8 {
		req.Count = 8
	}
	preferRemote := true
	if req.PreferRemote != nil {
		preferRemote = *req.PreferRemote
	}

	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	count, tier, err := pipeline.PlanScenes(c.Request.Context(), sess, req.Count, preferRemote)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scenes": sess.Book.Scenes,
		"count":  count,
		"tier":   tier,
	})
}

// 分场 -> 插图（逐页顺序生成，占位兜底）
func GenerateImages(c *gin.Context) {
	var req struct {
		Steps   int    `json:"steps"`
		ModelID string `json:"model_id"`
	}
	_ = c.ShouldBindJSON(&req)

	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	count, err := pipeline.GenerateImages(c.Request.Context(), sess, req.Steps, req.ModelID)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error(), "generated": count})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generated": count,
		"scenes":    sess.Book.Scenes,
		"cover":     sess.Book.CoverPath,
	})
}

// 故事 -> 旁白语音
func GenerateNarration(c *gin.Context) {
	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	path, err := pipeline.Narrate(c.Request.Context(), sess)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": "旁白生成失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio_path": path})
}

// 当前分场 -> PDF，路径记入会话供保存时归档
func ExportScenePDF(c *gin.Context) {
	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	path, err := pipeline.ExportScenePDF(c.Request.Context(), sess)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": "PDF 导出失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pdf_path": path})
}

// 翻页导航：first / prev / next / last
func Navigate(c *gin.Context) {
	var req struct {
		Op string `json:"op"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 导航同样是会话动作：改 Cursor 必须拿到动作槽，
	// 否则会与 PlanScenes/Load 的 SetScenes 竞争
	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	book := sess.Book
	switch req.Op {
	case "first":
		book.GotoFirst()
	case "prev":
		book.GotoPrev()
	case "next":
		book.GotoNext()
	case "last":
		book.GotoLast()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知导航操作: " + req.Op})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cursor": book.Cursor,
		"pages":  book.PageCount(),
		"scene":  book.CurrentScene(),
	})
}
