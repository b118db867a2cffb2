package core

import (
	"time"

	"github.com/rushteam/unirec/pkg/utils"
)

// ItemStatus 是候选物品的交易状态。
type ItemStatus string

const (
	StatusAvailable ItemStatus = "AVAILABLE" // 可购买，进入推荐候选池
	StatusReserved  ItemStatus = "RESERVED"  // 预约中
	StatusCompleted ItemStatus = "COMPLETED" // 已成交
)

// Item 是推荐链路中的候选物品快照：打分、排序、标签全部基于它。
//
// 设计要点：它是一份只读投影（flat projection），不是持久层实体。
// 书目/课程/学科的归属关系在构建快照时已经展开成平铺的 key
// （BookISBN / SubjectID / DepartmentID / SchoolID），
// 打分逻辑不需要、也不应该再穿透任何存储层的加载策略。
// 缺失的归属用零值表示，打分时视为信号不命中而不是错误。
type Item struct {
	ID      int64
	OwnerID int64

	// 内容信号来源。零值表示该归属缺失。
	BookISBN     string // 书目标识（同书判定按 ISBN）
	SubjectID    int64  // 课程
	DepartmentID int64  // 学科（课程 → 教授 → 学科 展开所得）
	SchoolID     int64  // 学校（学科的上级，预留）

	CreatedAt time.Time
	Status    ItemStatus

	// Score 是本次排序过程中的混合分数，仅请求内有效。
	Score float64

	// Labels 用于解释与策略驱动（召回来源、slot 来源等）。
	Labels map[string]utils.Label

	// Meta 存放展示用元信息（标题、价格等），引擎本身不读取。
	Meta map[string]any
}

func NewItem(id int64) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
		Meta:   make(map[string]any),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// AgeDays 返回物品创建至 now 的整天数；未来时间返回负数。
func (it *Item) AgeDays(now time.Time) int64 {
	return int64(now.Sub(it.CreatedAt).Hours() / 24)
}
