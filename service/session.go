package service

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storybook-server/models"
)

// Progress 生成插图动作的单调进度，供 websocket 推送
type Progress struct {
	Total  int    `json:"total"`
	Done   int    `json:"done"`
	Status string `json:"status"` // idle / processing / finished / failed
}

// Session 一个会话独占一个 BookState；动作互斥锁保证
// 同一会话内一次只执行一个用户动作（跑完才接受下一个）。
type Session struct {
	ID   string
	Book *models.BookState

	actionMu sync.Mutex

	progMu   sync.Mutex
	progress Progress
}

// TryBegin 尝试开始一个动作；会话正忙时返回 false
func (s *Session) TryBegin() bool {
	return s.actionMu.TryLock()
}

func (s *Session) End() {
	s.actionMu.Unlock()
}

func (s *Session) SetProgress(p Progress) {
	s.progMu.Lock()
	s.progress = p
	s.progMu.Unlock()
}

func (s *Session) GetProgress() Progress {
	s.progMu.Lock()
	defer s.progMu.Unlock()
	return s.progress
}

// SessionManager 按会话键管理 BookState，而不是进程级单例
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

func (m *SessionManager) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Book:     &models.BookState{},
		progress: Progress{Status: "idle"},
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// GetOrCreate id 为空时新建会话
func (m *SessionManager) GetOrCreate(id string) *Session {
	if id == "" {
		return m.Create()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:       id,
		Book:     &models.BookState{},
		progress: Progress{Status: "idle"},
	}
	m.sessions[id] = s
	return s
}
