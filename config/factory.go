package config

import (
	"fmt"
	"time"

	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/filter"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/pkg/conv"
	"github.com/rushteam/unirec/rank"
	"github.com/rushteam/unirec/recall"
	"github.com/rushteam/unirec/rerank"
	"github.com/rushteam/unirec/score"
)

// Deps 是配置驱动构建时需要注入的运行态依赖。
// 节点工厂无法从 YAML 里变出存储连接，得由入口处传进来。
type Deps struct {
	Interactions core.InteractionStore
	// KV 可选，popular 召回读 zset 热门榜时使用。
	KV core.KeyValueStore
	// Counters 可选，不设置时自适应权重直接用 Interactions 的计数。
	Counters core.EngagementCounters
}

func (d Deps) counters() core.EngagementCounters {
	if d.Counters != nil {
		return d.Counters
	}
	return d.Interactions
}

// NewFactory 返回注册了全部内置节点的工厂。
// 支持的类型：recall.available / recall.popular / recall.fresh /
// recall.coviewed / recall.fanout / filter / rank.hybrid /
// rerank.topn / rerank.slotmix。
func NewFactory(deps Deps) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("recall.available", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Available{
			Store: deps.Interactions,
			Limit: conv.ConfigGetInt(cfg, "limit", 0),
		}, nil
	})

	f.Register("recall.popular", func(cfg map[string]any) (pipeline.Node, error) {
		return buildPopular(deps, cfg), nil
	})

	f.Register("recall.fresh", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFresh(deps, cfg), nil
	})

	f.Register("recall.coviewed", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.CoViewed{
			Store: deps.Interactions,
			Limit: conv.ConfigGetInt(cfg, "limit", 0),
		}, nil
	})

	f.Register("recall.fanout", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFanout(deps, cfg)
	})

	f.Register("filter", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFilter(cfg)
	})

	f.Register("rank.hybrid", func(cfg map[string]any) (pipeline.Node, error) {
		return buildHybrid(deps, cfg), nil
	})

	f.Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
	})

	f.Register("rerank.slotmix", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.SlotMixNode{
			Size:              conv.ConfigGetInt(cfg, "size", 10),
			PersonalizedRatio: conv.ConfigGetFloat(cfg, "personalized_ratio", 0),
			PopularRatio:      conv.ConfigGetFloat(cfg, "popular_ratio", 0),
			FreshRatio:        conv.ConfigGetFloat(cfg, "fresh_ratio", 0),
			ExploreEpsilon:    conv.ConfigGetFloat(cfg, "explore_epsilon", 0),
			ExploreSize:       conv.ConfigGetInt(cfg, "explore_size", 0),
			Popular:           buildPopular(deps, conv.ConfigGet[map[string]any](cfg, "popular", nil)),
			Fresh:             buildFresh(deps, conv.ConfigGet[map[string]any](cfg, "fresh", nil)),
		}, nil
	})

	return f
}

func buildPopular(deps Deps, cfg map[string]any) *recall.Popular {
	return &recall.Popular{
		Store:        deps.Interactions,
		KV:           deps.KV,
		Key:          conv.ConfigGet[string](cfg, "key", ""),
		LookbackDays: conv.ConfigGetInt(cfg, "lookback_days", 0),
		Size:         conv.ConfigGetInt(cfg, "size", 0),
		CacheTTL:     time.Duration(conv.ConfigGetInt(cfg, "cache_ttl_seconds", 0)) * time.Second,
	}
}

func buildFresh(deps Deps, cfg map[string]any) *recall.Fresh {
	return &recall.Fresh{
		Store:      deps.Interactions,
		WindowDays: conv.ConfigGetInt(cfg, "window_days", 0),
		Size:       conv.ConfigGetInt(cfg, "size", 0),
		CacheTTL:   time.Duration(conv.ConfigGetInt(cfg, "cache_ttl_seconds", 0)) * time.Second,
	}
}

func buildFanout(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	sourcesCfg, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesCfg))
	for _, sc := range sourcesCfg {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		switch sourceType := conv.ConfigGet[string](sourceMap, "type", ""); sourceType {
		case "available":
			sources = append(sources, &recall.Available{
				Store: deps.Interactions,
				Limit: conv.ConfigGetInt(sourceMap, "limit", 0),
			})
		case "popular":
			sources = append(sources, buildPopular(deps, sourceMap))
		case "fresh":
			sources = append(sources, buildFresh(deps, sourceMap))
		case "coviewed":
			sources = append(sources, &recall.CoViewed{
				Store: deps.Interactions,
				Limit: conv.ConfigGetInt(sourceMap, "limit", 0),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet[bool](cfg, "dedup", true),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		MergeStrategy: conv.ConfigGet[string](cfg, "merge_strategy", ""),
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	return fanout, nil
}

func buildFilter(cfg map[string]any) (pipeline.Node, error) {
	filtersCfg, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersCfg))
	for _, fc := range filtersCfg {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet[string](filterMap, "type", ""); filterType {
		case "owner":
			filters = append(filters, &filter.OwnerFilter{})
		case "seed":
			filters = append(filters, &filter.SeedFilter{})
		case "status":
			filters = append(filters, &filter.StatusFilter{})
		case "rule":
			filters = append(filters, &filter.RuleFilter{
				Expr: conv.ConfigGet[string](filterMap, "expr", ""),
			})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func buildHybrid(deps Deps, cfg map[string]any) *rank.HybridNode {
	recency := &score.RecencyScorer{
		Days: int64(conv.ConfigGetInt(cfg, "recency_days", 0)),
	}
	mode := score.ModeMax
	if conv.ConfigGet[string](cfg, "content_score_mode", "") == "weighted" {
		mode = score.ModeWeighted
	}

	return &rank.HybridNode{
		Store: deps.Interactions,
		Content: &score.ContentScorer{
			Similarity: &score.SimilarityScorer{Recency: recency},
			Recency:    recency,
			Mode:       mode,
			RecencyBoost: conv.ConfigGetFloat(cfg, "content_recency_boost_weight", 0),
			DecayLambda:  conv.ConfigGetFloat(cfg, "time_decay_lambda", 0),
			DecayThresholdDays: conv.ConfigGetInt(cfg, "time_decay_threshold_days", 0),
		},
		Collaborative: &score.CollaborativeScorer{
			Store:          deps.Interactions,
			CandidateLimit: conv.ConfigGetInt(cfg, "collaborative_candidate_limit", 0),
		},
		Weights: &rank.AdaptiveWeights{
			Counters: deps.counters(),
		},
		MaxClicks:    conv.ConfigGetInt(cfg, "max_clicks", 0),
		MaxWishlists: conv.ConfigGetInt(cfg, "max_wishlists", 0),
		MaxViews:     conv.ConfigGetInt(cfg, "max_views", 0),
		Parallelism:  conv.ConfigGetInt(cfg, "parallelism", 0),
	}
}
