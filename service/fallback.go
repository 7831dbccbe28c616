package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Tier 回退链中的一个能力提供方，按固定优先级依次尝试
type Tier[T any] struct {
	Name string
	// Skip 为 true 时整层跳过（未配置、模型文件不存在等）
	Skip bool
	Run  func(ctx context.Context) (T, error)
}

// TierOutcome 单层尝试的结果，失败是数据而不是异常
type TierOutcome struct {
	Tier string `json:"tier"`
	OK   bool   `json:"ok"`
	Err  string `json:"err,omitempty"`
}

// RunChain 依序执行各层：返回非空且无错误即短路成功；
// 单层内不重试，层失败只记录并前进。全部失败返回 ErrChainExhausted，
// 由各组件自定义的兜底层决定是否将其转化为可用结果。
func RunChain[T any](ctx context.Context, task string, isEmpty func(T) bool, tiers ...Tier[T]) (T, string, []TierOutcome, error) {
	var zero T
	outcomes := make([]TierOutcome, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Skip {
			logrus.Debugf("[%s] 层 %s 未配置，跳过", task, tier.Name)
			continue
		}
		v, err := tier.Run(ctx)
		if err == nil && (isEmpty == nil || !isEmpty(v)) {
			outcomes = append(outcomes, TierOutcome{Tier: tier.Name, OK: true})
			logrus.Infof("[%s] 层 %s 产出成功", task, tier.Name)
			return v, tier.Name, outcomes, nil
		}
		if err == nil {
			err = fmt.Errorf("empty result")
		}
		outcomes = append(outcomes, TierOutcome{Tier: tier.Name, Err: err.Error()})
		logrus.Warnf("[%s] 层 %s 失败: %v，尝试下一层", task, tier.Name, err)
	}
	return zero, "", outcomes, fmt.Errorf("%s: %w", task, ErrChainExhausted)
}
