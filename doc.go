// Package unirec 是校园二手书市场的自适应混合推荐引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - 自适应权重: 根据互动数据量在 content/collaborative 档位间自动切换
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 永不失败: 任何信号缺失或内部错误都降级，绝不让调用页面挂掉
package unirec

import "github.com/rushteam/unirec/pipeline"

// 轻量 facade：便于用户直接 import "unirec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
