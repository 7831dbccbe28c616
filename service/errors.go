package service

import "errors"

var (
	// ErrValidation 输入校验失败（空种子、保存空故事），直接上抛给调用方
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 库中不存在该条目
	ErrNotFound = errors.New("entry not found")
	// ErrChainExhausted 回退链所有层级均失败且无兜底产出
	ErrChainExhausted = errors.New("all generation tiers failed")
)
