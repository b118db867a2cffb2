// Package service 组装推荐引擎的两个对外入口：
// 首页个性化推荐（ForYou）和详情页相似推荐（SimilarItems）。
package service

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/unirec/config"
	"github.com/rushteam/unirec/core"
	"github.com/rushteam/unirec/pipeline"
	"github.com/rushteam/unirec/rank"
	"github.com/rushteam/unirec/recall"
	"github.com/rushteam/unirec/rerank"
	"github.com/rushteam/unirec/score"
)

// Recommender 是推荐引擎门面。两个入口都遵循同一条铁律：
// 推荐绝不让调用方的页面挂掉——任何内部失败都降级为空列表 + 日志。
type Recommender struct {
	cfg   *config.Properties
	store core.InteractionStore
	log   zerolog.Logger

	hybrid     *rank.HybridNode
	similarity *score.SimilarityScorer
	popular    *recall.Popular
	fresh      *recall.Fresh

	rnd *rand.Rand
	now func() time.Time
}

// Option 配置 Recommender 的可选依赖。
type Option func(*Recommender)

// WithLogger 注入日志器。
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recommender) { r.log = l }
}

// WithKV 注入 KV 存储，popular 召回会优先读取其中的热门榜 zset。
func WithKV(kv core.KeyValueStore, hotKey string) Option {
	return func(r *Recommender) {
		r.popular.KV = kv
		r.popular.Key = hotKey
	}
}

// WithCounters 替换自适应权重的计数来源（例如 feast 在线特征）。
func WithCounters(c core.EngagementCounters) Option {
	return func(r *Recommender) { r.hybrid.Weights.Counters = c }
}

// WithClock 注入时钟，测试用。
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) {
		r.now = now
		r.hybrid.Now = now
		r.popular.Now = now
		r.fresh.Now = now
	}
}

// WithRand 注入探索槽的随机源，测试用。
func WithRand(rnd *rand.Rand) Option {
	return func(r *Recommender) { r.rnd = rnd }
}

// NewRecommender 按配置组装推荐引擎。cfg 为 nil 时取默认配置。
func NewRecommender(cfg *config.Properties, store core.InteractionStore, opts ...Option) *Recommender {
	if cfg == nil {
		cfg = config.Default()
	}

	recency := &score.RecencyScorer{Days: cfg.RecencyDays}
	similarity := &score.SimilarityScorer{
		ISBNWeight:       cfg.ISBNWeight,
		SubjectWeight:    cfg.SubjectWeight,
		DepartmentWeight: cfg.DepartmentWeight,
		RecencyWeight:    cfg.SimilarityRecencyWeight,
		Recency:          recency,
	}
	mode := score.ModeMax
	if cfg.ContentScoreMode == "weighted" {
		mode = score.ModeWeighted
	}

	r := &Recommender{
		cfg:        cfg,
		store:      store,
		log:        zerolog.Nop(),
		similarity: similarity,
		now:        time.Now,
		hybrid: &rank.HybridNode{
			Store: store,
			Content: &score.ContentScorer{
				Similarity:         similarity,
				Recency:            recency,
				Mode:               mode,
				RecencyBoost:       cfg.ContentRecencyBoostWeight,
				DecayLambda:        cfg.TimeDecayLambda,
				DecayThresholdDays: cfg.TimeDecayThresholdDays,
			},
			Collaborative: &score.CollaborativeScorer{
				Store:          store,
				CandidateLimit: cfg.CollaborativeCandidateLimit,
			},
			Weights: &rank.AdaptiveWeights{
				Counters:           store,
				MinUserViews:       cfg.MinUserViewsForCollaborative,
				MinTotalViews:      cfg.MinTotalViewsForCollaborative,
				BalancedUserViews:  cfg.IntermediateUserViews,
				BalancedTotalViews: cfg.IntermediateTotalViews,

				DefaultContent:            cfg.DefaultContentWeight,
				DefaultCollaborative:      cfg.DefaultCollaborativeWeight,
				IntermediateContent:       cfg.IntermediateContentWeight,
				IntermediateCollaborative: cfg.IntermediateCollaborativeWeight,
				BalancedContent:           cfg.BalancedContentWeight,
				BalancedCollaborative:     cfg.BalancedCollaborativeWeight,
			},
			MaxClicks:    cfg.MaxClicksToFetch,
			MaxWishlists: cfg.MaxWishlistsToFetch,
			MaxViews:     cfg.MaxViewsToFetch,
			Parallelism:  cfg.RankParallelism,
		},
		popular: &recall.Popular{
			Store:        store,
			LookbackDays: cfg.SlotMixPopularLookbackDays,
			Size:         cfg.SlotMixPopularCacheSize,
			CacheTTL:     time.Duration(cfg.SlotMixPopularCacheTTLSecs) * time.Second,
		},
		fresh: &recall.Fresh{
			Store:      store,
			WindowDays: cfg.SlotMixFreshWindowDays,
			Size:       cfg.SlotMixFreshCacheSize,
			CacheTTL:   time.Duration(cfg.SlotMixFreshCacheTTLSecs) * time.Second,
		},
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultForYouLimit / DefaultSimilarLimit 两个入口的默认条数。
const (
	DefaultForYouLimit  = 10
	DefaultSimilarLimit = 6
)

// ForYou 返回用户的首页个性化推荐。
// userID 为 0 表示匿名用户（内容分中立、协同分为 0，相当于最新上架排序）。
func (r *Recommender) ForYou(ctx context.Context, userID int64, limit int) []*core.Item {
	if limit <= 0 {
		limit = DefaultForYouLimit
	}

	targetSize := limit
	if r.cfg.SlotMixEnabled && r.cfg.SlotMixSize < targetSize {
		targetSize = r.cfg.SlotMixSize
	}

	rctx := &core.RecommendContext{
		UserID: userID,
		Scene:  "for_you",
	}

	candidates := r.fetchCandidates(ctx, rctx, r.cfg.PersonalizedCandidateLimit, limit,
		func(it *core.Item) bool {
			return userID != 0 && it.OwnerID == userID
		})
	if len(candidates) == 0 {
		r.log.Warn().Int64("user_id", userID).Msg("no recommendation candidates")
		return nil
	}

	ranked, err := r.hybrid.Process(ctx, rctx, candidates)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("recommendation ranking failed")
		return nil
	}

	var tail pipeline.Node
	if r.cfg.SlotMixEnabled {
		tail = &rerank.SlotMixNode{
			Size:              targetSize,
			PersonalizedRatio: r.cfg.SlotMixPersonalizedRatio,
			PopularRatio:      r.cfg.SlotMixPopularRatio,
			FreshRatio:        r.cfg.SlotMixFreshRatio,
			ExploreEpsilon:    r.cfg.SlotMixExploreEpsilon,
			ExploreSize:       r.cfg.SlotMixExploreSize,
			Popular:           r.popular,
			Fresh:             r.fresh,
			Rand:              r.rnd,
		}
	} else {
		tail = &rerank.TopNNode{N: targetSize}
	}

	out, err := tail.Process(ctx, rctx, ranked)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("recommendation rerank failed")
		return nil
	}
	return out
}

// SimilarItems 返回与基准物品相似的推荐（详情页）。
// 基准物品不存在时返回空列表。
func (r *Recommender) SimilarItems(ctx context.Context, itemID int64, limit int) []*core.Item {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	seed, err := r.store.FindCandidateByID(ctx, itemID)
	if err != nil || seed == nil {
		if err != nil {
			r.log.Error().Err(err).Int64("item_id", itemID).Msg("similar seed lookup failed")
		}
		return nil
	}

	rctx := &core.RecommendContext{
		Scene:      "similar",
		SeedItemID: itemID,
		SeedItem:   seed,
	}

	candidates := r.fetchCandidates(ctx, rctx, r.cfg.SimilarCandidateLimit, limit,
		func(it *core.Item) bool {
			return it.ID == itemID || (seed.OwnerID != 0 && it.OwnerID == seed.OwnerID)
		})
	if len(candidates) == 0 {
		return nil
	}

	now := r.now()
	scored := make([]*core.Item, 0, len(candidates))
	for _, it := range candidates {
		s := r.similarity.Score(seed, it, now)
		if s <= 0.0 {
			continue
		}
		it.Score = s
		scored = append(scored, it)
	}

	// 同分保持候选输入顺序（创建时间倒序）
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// fetchCandidates 拉取可售候选并应用排除规则。
// 页内候选排除后不足 limit 时退化为全量查询，覆盖率优先于延迟。
func (r *Recommender) fetchCandidates(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidateLimit, limit int,
	exclude func(*core.Item) bool,
) []*core.Item {
	page := &recall.Available{Store: r.store, Limit: candidateLimit}
	items, err := page.Recall(ctx, rctx)
	if err != nil {
		items = nil
	}
	candidates := applyExclude(items, exclude)

	if len(candidates) < limit {
		fallback, err := r.store.FindAvailableCandidates(ctx, 0)
		if err == nil {
			if full := applyExclude(fallback, exclude); len(full) > 0 {
				candidates = full
			}
		}
	}
	return candidates
}

func applyExclude(items []*core.Item, exclude func(*core.Item) bool) []*core.Item {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || (exclude != nil && exclude(it)) {
			continue
		}
		out = append(out, it)
	}
	return out
}
