package core

// 策略标签：标识本次排序使用了哪一档自适应权重。
const (
	StrategyContentHeavy = "content-heavy"
	StrategyMix          = "content-collaborative-mix"
	StrategyBalanced     = "balanced-hybrid"
)

// Weights 是一次排序过程使用的权重向量。
// 在一次排序调用内选定一次、整批候选统一使用，排序中途不得更换。
//
// Popularity 与 Recency 是前向兼容的预留槽位，当前所有策略档均为 0。
type Weights struct {
	Content       float64
	Collaborative float64
	Popularity    float64
	Recency       float64

	// Strategy 是可读的策略标签，用于日志与 explain。
	Strategy string
}

// Sum 返回四个分量之和。参考策略下应 ≤ 1.0。
func (w Weights) Sum() float64 {
	return w.Content + w.Collaborative + w.Popularity + w.Recency
}

// Valid 校验权重向量：分量非负且总和不超过 1.0。
// 违反属于程序缺陷，由测试兜底，不做运行时修复。
func (w Weights) Valid() bool {
	if w.Content < 0 || w.Collaborative < 0 || w.Popularity < 0 || w.Recency < 0 {
		return false
	}
	return w.Sum() <= 1.0+1e-9
}
