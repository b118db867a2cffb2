package metrics

// EvalCase 一条离线评估用例：一次推荐返回的物品序列，
// 以及该次请求期望命中的物品集合。Expected 为空表示该用例不参与评估。
type EvalCase struct {
	Ranked   []int64
	Expected []int64
}

// ReciprocalRank 返回第一个命中物品的倒数排名（排名从 1 开始）。
// 无命中返回 0。
func ReciprocalRank(ranked []int64, expected []int64) float64 {
	if len(expected) == 0 {
		return 0
	}
	want := make(map[int64]struct{}, len(expected))
	for _, id := range expected {
		want[id] = struct{}{}
	}
	for i, id := range ranked {
		if _, ok := want[id]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// MeanReciprocalRank 对所有有期望命中的用例求倒数排名均值。
// 没有可评估用例时返回 0。
func MeanReciprocalRank(cases []EvalCase) float64 {
	var sum float64
	var n int
	for _, c := range cases {
		if len(c.Expected) == 0 {
			continue
		}
		sum += ReciprocalRank(c.Ranked, c.Expected)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
