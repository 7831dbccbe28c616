package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// 生图动作进度 WebSocket 推送：每秒读一次会话进度，有变化才推，
// 进度单调递增（场景一张接一张生成），结束状态推完即断开。
func BookProgressWebSocket(c *gin.Context) {
	sess, err := pipeline.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "WebSocket升级失败"})
		return
	}
	defer conn.Close()

	prev := sess.GetProgress()
	_ = conn.WriteJSON(prev)

	// 读协程只为感知对端断开，空闲会话的推送循环才不会悬挂
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			cur := sess.GetProgress()
			if cur != prev {
				if err := conn.WriteJSON(cur); err != nil {
					return
				}
				prev = cur
			}
			if cur.Status == "finished" || cur.Status == "failed" {
				return
			}
		}
	}
}
