package score

import (
	"time"

	"github.com/rushteam/unirec/core"
)

// SimilarityScorer 计算两个候选物品的两两相似度（0.0 ~ 1.0）。
//
// 固定权重的独立布尔信号加和：
//   - 同一本书（ISBN）：0.50
//   - 同一门课程：0.25
//   - 同一学科：0.15
//   - b 的最新性：recency(b) * 0.10
//
// 四个信号相互独立、全部参与、不短路；任一侧归属缺失时该信号按不命中
// 处理而不是报错。静态权重合计 0.90，留给最新性的余量保证总分不会越过
// 1.0，但上限仍然强制封顶。
type SimilarityScorer struct {
	// 零值按默认权重 0.50 / 0.25 / 0.15 / 0.10 处理。
	ISBNWeight       float64
	SubjectWeight    float64
	DepartmentWeight float64
	RecencyWeight    float64

	Recency *RecencyScorer
}

func (s *SimilarityScorer) weights() (isbn, subject, department, recency float64) {
	isbn, subject, department, recency = s.ISBNWeight, s.SubjectWeight, s.DepartmentWeight, s.RecencyWeight
	if isbn == 0 && subject == 0 && department == 0 && recency == 0 {
		return 0.50, 0.25, 0.15, 0.10
	}
	return
}

// Score 返回 a 与 b 的相似度；b 是被打分的候选，最新性取 b 的。
func (s *SimilarityScorer) Score(a, b *core.Item, now time.Time) float64 {
	if a == nil || b == nil {
		return 0.0
	}

	isbnW, subjectW, departmentW, recencyW := s.weights()
	score := 0.0

	if sameBook(a, b) {
		score += isbnW
	}
	if sameSubject(a, b) {
		score += subjectW
	}
	if sameDepartment(a, b) {
		score += departmentW
	}
	score += s.Recency.ScoreItem(b, now) * recencyW

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func sameBook(a, b *core.Item) bool {
	if a.BookISBN == "" || b.BookISBN == "" {
		return false
	}
	return a.BookISBN == b.BookISBN
}

func sameSubject(a, b *core.Item) bool {
	if a.SubjectID == 0 || b.SubjectID == 0 {
		return false
	}
	return a.SubjectID == b.SubjectID
}

func sameDepartment(a, b *core.Item) bool {
	if a.DepartmentID == 0 || b.DepartmentID == 0 {
		return false
	}
	return a.DepartmentID == b.DepartmentID
}
