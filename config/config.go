// Package config 提供推荐引擎的配置加载与节点工厂。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Properties 是推荐引擎的全部可调参数。
// 零值字段在各组件内部回退到默认值，因此只配置关心的项即可。
type Properties struct {
	// 自适应权重阈值
	MinUserViewsForCollaborative   int64 `yaml:"min_user_views_for_collaborative"`
	MinTotalViewsForCollaborative  int64 `yaml:"min_total_views_for_collaborative"`
	IntermediateUserViews          int64 `yaml:"intermediate_user_views"`
	IntermediateTotalViews         int64 `yaml:"intermediate_total_views"`

	// 各档权重
	DefaultContentWeight            float64 `yaml:"default_content_weight"`
	DefaultCollaborativeWeight      float64 `yaml:"default_collaborative_weight"`
	IntermediateContentWeight       float64 `yaml:"intermediate_content_weight"`
	IntermediateCollaborativeWeight float64 `yaml:"intermediate_collaborative_weight"`
	BalancedContentWeight           float64 `yaml:"balanced_content_weight"`
	BalancedCollaborativeWeight     float64 `yaml:"balanced_collaborative_weight"`

	// 最新性
	RecencyDays              int64   `yaml:"recency_days"`
	ContentRecencyBoostWeight float64 `yaml:"content_recency_boost_weight"`

	// 多行为推荐
	MaxClicksToFetch            int `yaml:"max_clicks_to_fetch"`
	MaxWishlistsToFetch         int `yaml:"max_wishlists_to_fetch"`
	MaxViewsToFetch             int `yaml:"max_views_to_fetch"`
	CollaborativeCandidateLimit int `yaml:"collaborative_candidate_limit"`
	PersonalizedCandidateLimit  int `yaml:"personalized_candidate_limit"`
	SimilarCandidateLimit       int `yaml:"similar_candidate_limit"`

	// 时间衰减
	TimeDecayLambda        float64 `yaml:"time_decay_lambda"`
	TimeDecayThresholdDays int     `yaml:"time_decay_threshold_days"`

	// 内容打分模式：max（逐条行为取最佳匹配）或 weighted（衰减加权平均）
	ContentScoreMode string `yaml:"content_score_mode"`

	// 相似度权重
	ISBNWeight              float64 `yaml:"isbn_weight"`
	SubjectWeight           float64 `yaml:"subject_weight"`
	DepartmentWeight        float64 `yaml:"department_weight"`
	SimilarityRecencyWeight float64 `yaml:"similarity_recency_weight"`

	// 槽位混排
	SlotMixEnabled              bool    `yaml:"slot_mix_enabled"`
	SlotMixSize                 int     `yaml:"slot_mix_size"`
	SlotMixPersonalizedRatio    float64 `yaml:"slot_mix_personalized_ratio"`
	SlotMixPopularRatio         float64 `yaml:"slot_mix_popular_ratio"`
	SlotMixFreshRatio           float64 `yaml:"slot_mix_fresh_ratio"`
	SlotMixExploreEpsilon       float64 `yaml:"slot_mix_explore_epsilon"`
	SlotMixExploreSize          int     `yaml:"slot_mix_explore_size"`
	SlotMixPopularLookbackDays  int     `yaml:"slot_mix_popular_lookback_days"`
	SlotMixFreshWindowDays      int     `yaml:"slot_mix_fresh_window_days"`
	SlotMixPopularCacheSize     int     `yaml:"slot_mix_popular_cache_size"`
	SlotMixFreshCacheSize       int     `yaml:"slot_mix_fresh_cache_size"`
	SlotMixPopularCacheTTLSecs  int     `yaml:"slot_mix_popular_cache_ttl_seconds"`
	SlotMixFreshCacheTTLSecs    int     `yaml:"slot_mix_fresh_cache_ttl_seconds"`

	// 排序并发度（<=1 串行）
	RankParallelism int `yaml:"rank_parallelism"`
}

// Default 返回与线上默认行为一致的配置。
func Default() *Properties {
	return &Properties{
		MinUserViewsForCollaborative:  10,
		MinTotalViewsForCollaborative: 1000,
		IntermediateUserViews:         30,
		IntermediateTotalViews:        5000,

		DefaultContentWeight:            0.90,
		DefaultCollaborativeWeight:      0.10,
		IntermediateContentWeight:       0.70,
		IntermediateCollaborativeWeight: 0.30,
		BalancedContentWeight:           0.50,
		BalancedCollaborativeWeight:     0.50,

		RecencyDays:               30,
		ContentRecencyBoostWeight: 0.10,

		MaxClicksToFetch:            20,
		MaxWishlistsToFetch:         15,
		MaxViewsToFetch:             30,
		CollaborativeCandidateLimit: 50,
		PersonalizedCandidateLimit:  500,
		SimilarCandidateLimit:       200,

		TimeDecayLambda:        0.1,
		TimeDecayThresholdDays: 7,

		ContentScoreMode: "max",

		ISBNWeight:              0.50,
		SubjectWeight:           0.25,
		DepartmentWeight:        0.15,
		SimilarityRecencyWeight: 0.10,

		SlotMixEnabled:             true,
		SlotMixSize:                10,
		SlotMixPersonalizedRatio:   1.0,
		SlotMixPopularRatio:        0.0,
		SlotMixFreshRatio:          0.0,
		SlotMixExploreEpsilon:      0.0,
		SlotMixExploreSize:         2,
		SlotMixPopularLookbackDays: 7,
		SlotMixFreshWindowDays:     2,
		SlotMixPopularCacheSize:    50,
		SlotMixFreshCacheSize:      50,
		SlotMixPopularCacheTTLSecs: 60,
		SlotMixFreshCacheTTLSecs:   60,
	}
}

// Load 从 YAML 文件加载配置：先取默认值，再用文件中出现的字段覆盖。
func Load(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容。
func Parse(data []byte) (*Properties, error) {
	props := Default()
	if err := yaml.Unmarshal(data, props); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return props, nil
}
