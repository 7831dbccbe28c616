package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storybook-server/service"
)

// 保存当前会话为库条目
func SaveBook(c *gin.Context) {
	sess := beginAction(c, c.Param("session_id"))
	if sess == nil {
		return
	}
	defer sess.End()

	eid, err := pipeline.SaveBook(c.Request.Context(), sess)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": "保存失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry_id": eid})
}

// 库列表，最新在前
func ListLibrary(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "24"))
	entries, err := pipeline.Store.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// 单条目详情（清单内容）
func GetLibraryEntry(c *gin.Context) {
	entry, err := pipeline.Store.Get(c.Param("entry_id"))
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// 从库条目重建新的 BookState 用于阅读
func LoadLibraryEntry(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	_ = c.ShouldBindJSON(&req)

	book, entry, err := pipeline.Store.Load(c.Param("entry_id"))
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}

	sess := pipeline.Sessions.GetOrCreate(req.SessionID)
	if !sess.TryBegin() {
		c.JSON(http.StatusConflict, gin.H{"error": "会话正忙，请等待当前动作完成"})
		return
	}
	defer sess.End()
	sess.Book = book

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"entry_id":   entry.ID,
		"book":       book,
		"pages":      book.PageCount(),
	})
}

// 把条目文件上传到对象存储并返回分享链接
func PublishLibraryEntry(c *gin.Context) {
	entry, err := pipeline.Store.Get(c.Param("entry_id"))
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	urls, err := service.PublishEntry(c.Request.Context(), entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发布失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry_id": entry.ID, "urls": urls})
}
