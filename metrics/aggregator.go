package metrics

import (
	"context"
	"math"
	"sort"
	"time"
)

// TypeStat 单个推荐类型的点击 / 曝光 / CTR 统计。
type TypeStat struct {
	Type        RecommendationType
	Clicks      int64
	Impressions int64
	CTR         float64
}

// PositionMetric 位置维度的点击统计。
// 曝光目前不按位置采集，Impressions 是"总曝光次数 / 观测到的位置数"的估算值。
type PositionMetric struct {
	Position    int
	Clicks      int64
	Impressions int64
	CTR         float64
}

// DailyMetric 单日点击统计，Date 格式 yyyy-MM-dd。
type DailyMetric struct {
	Date          string
	ForYouClicks  int64
	SimilarClicks int64
	TotalClicks   int64
}

// ItemClicks 物品点击计数（最多点击榜）。
type ItemClicks struct {
	ItemID int64
	Clicks int64
}

// Summary 一段时间内的整体指标。
type Summary struct {
	TotalClicks  int64
	ClicksByType map[RecommendationType]int64
	PeriodStart  time.Time
	PeriodEnd    time.Time
	DailyMetrics []DailyMetric
}

// Aggregator 在事件流上计算 CTR 等离线指标。
type Aggregator struct {
	Store EventStore

	// Now 便于测试替换时钟。
	Now func() time.Time
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// CTR 计算区间整体点击率（百分比，保留两位小数）。
// 曝光数为 0 时返回 0。
func (a *Aggregator) CTR(ctx context.Context, start, end time.Time) (float64, error) {
	clicks, err := a.Store.ClicksBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	impressions, err := a.Store.ImpressionsBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return ctr(int64(len(clicks)), sumImpressions(impressions, "")), nil
}

// CTRByType 计算单个推荐类型的区间点击率。
func (a *Aggregator) CTRByType(
	ctx context.Context,
	typ RecommendationType,
	start, end time.Time,
) (float64, error) {
	clicks, err := a.Store.ClicksBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	impressions, err := a.Store.ImpressionsBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return ctr(countClicks(clicks, typ), sumImpressions(impressions, typ)), nil
}

// TypeStats 按推荐类型返回点击 / 曝光 / CTR。
func (a *Aggregator) TypeStats(ctx context.Context, start, end time.Time) ([]TypeStat, error) {
	clicks, err := a.Store.ClicksBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	impressions, err := a.Store.ImpressionsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]TypeStat, 0, len(Types()))
	for _, typ := range Types() {
		c := countClicks(clicks, typ)
		imp := sumImpressions(impressions, typ)
		out = append(out, TypeStat{
			Type:        typ,
			Clicks:      c,
			Impressions: imp,
			CTR:         ctr(c, imp),
		})
	}
	return out, nil
}

// PositionMetrics 按位置统计某类型的点击分布。
func (a *Aggregator) PositionMetrics(
	ctx context.Context,
	typ RecommendationType,
) ([]PositionMetric, error) {
	clicks, err := a.Store.ClicksBetween(ctx, time.Time{}, a.now())
	if err != nil {
		return nil, err
	}
	impressions, err := a.Store.ImpressionsBetween(ctx, time.Time{}, a.now())
	if err != nil {
		return nil, err
	}

	byPosition := make(map[int]int64)
	for _, ev := range clicks {
		if ev.Type == typ {
			byPosition[ev.Position]++
		}
	}
	if len(byPosition) == 0 {
		return nil, nil
	}

	// 位置维度的曝光不单独采集，用类型曝光次数均摊估算
	var totalImpressions int64
	for _, ev := range impressions {
		if ev.Type == typ {
			totalImpressions++
		}
	}
	perPosition := int64(0)
	if totalImpressions > 0 {
		perPosition = totalImpressions / int64(len(byPosition))
	}

	out := make([]PositionMetric, 0, len(byPosition))
	for pos, c := range byPosition {
		out = append(out, PositionMetric{
			Position:    pos,
			Clicks:      c,
			Impressions: perPosition,
			CTR:         ctr(c, perPosition),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// DailyMetrics 自 since 起按天汇总点击，按日期升序返回。
func (a *Aggregator) DailyMetrics(ctx context.Context, since time.Time) ([]DailyMetric, error) {
	clicks, err := a.Store.ClicksBetween(ctx, since, a.now())
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*DailyMetric)
	for _, ev := range clicks {
		date := ev.ClickedAt.Format("2006-01-02")
		m, ok := byDate[date]
		if !ok {
			m = &DailyMetric{Date: date}
			byDate[date] = m
		}
		switch ev.Type {
		case TypeForYou:
			m.ForYouClicks++
		case TypeSimilar:
			m.SimilarClicks++
		}
		m.TotalClicks = m.ForYouClicks + m.SimilarClicks
	}

	out := make([]DailyMetric, 0, len(byDate))
	for _, m := range byDate {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// MostClicked 自 since 起某类型点击最多的物品，按点击数降序。
func (a *Aggregator) MostClicked(
	ctx context.Context,
	typ RecommendationType,
	since time.Time,
	limit int,
) ([]ItemClicks, error) {
	clicks, err := a.Store.ClicksBetween(ctx, since, a.now())
	if err != nil {
		return nil, err
	}

	byItem := make(map[int64]int64)
	for _, ev := range clicks {
		if ev.Type == typ {
			byItem[ev.ItemID]++
		}
	}

	out := make([]ItemClicks, 0, len(byItem))
	for id, c := range byItem {
		out = append(out, ItemClicks{ItemID: id, Clicks: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UniqueSessions 区间内去重后的曝光会话数。
func (a *Aggregator) UniqueSessions(ctx context.Context, start, end time.Time) (int64, error) {
	impressions, err := a.Store.ImpressionsBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	sessions := make(map[string]struct{}, len(impressions))
	for _, ev := range impressions {
		sessions[ev.SessionID] = struct{}{}
	}
	return int64(len(sessions)), nil
}

// Metrics 汇总区间指标：总点击、分类型点击和日别明细。
func (a *Aggregator) Metrics(ctx context.Context, start, end time.Time) (*Summary, error) {
	clicks, err := a.Store.ClicksBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byType := make(map[RecommendationType]int64, len(Types()))
	for _, typ := range Types() {
		byType[typ] = countClicks(clicks, typ)
	}

	daily, err := a.DailyMetrics(ctx, start)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalClicks:  int64(len(clicks)),
		ClicksByType: byType,
		PeriodStart:  start,
		PeriodEnd:    end,
		DailyMetrics: daily,
	}, nil
}

func countClicks(clicks []*ClickEvent, typ RecommendationType) int64 {
	var n int64
	for _, ev := range clicks {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// sumImpressions 累加曝光条数。typ 为空表示不过滤类型。
func sumImpressions(impressions []*ImpressionEvent, typ RecommendationType) int64 {
	var n int64
	for _, ev := range impressions {
		if typ != "" && ev.Type != typ {
			continue
		}
		n += int64(ev.Count)
	}
	return n
}

// ctr 点击率百分比，保留两位小数，曝光为 0 时返回 0。
func ctr(clicks, impressions int64) float64 {
	if impressions == 0 {
		return 0.0
	}
	return math.Round(float64(clicks)*100.0/float64(impressions)*100.0) / 100.0
}
