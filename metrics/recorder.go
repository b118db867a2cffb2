package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/unirec/core"
)

// RecorderConfig 配置事件记录器。
type RecorderConfig struct {
	// Events 事件落库目标，必填。
	Events EventStore
	// Dedup 曝光去重器，nil 表示不去重。
	Dedup Deduper
	// DedupWindow 去重窗口，<=0 取 DefaultDedupWindow。
	DedupWindow time.Duration
	// Items 物品查询，非 nil 时点击会校验物品存在。
	Items core.InteractionStore
	// Views 浏览事件下游，nil 表示忽略浏览记录。
	Views ViewSink
	// QueueSize 异步队列长度，<=0 取默认 1024。
	QueueSize int
	// Workers 消费协程数，<=0 取默认 2。
	Workers int

	Logger zerolog.Logger
	Now    func() time.Time
}

// Recorder 异步记录点击 / 曝光 / 浏览事件。
// 记录失败绝不影响推荐主链路：队列满或落库出错只打日志丢弃。
type Recorder struct {
	cfg RecorderConfig

	ch   chan func(context.Context)
	wg   sync.WaitGroup
	once sync.Once
}

// NewRecorder 创建记录器并启动后台消费协程。
func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := &Recorder{
		cfg: cfg,
		ch:  make(chan func(context.Context), cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	ctx := context.Background()
	for job := range r.ch {
		job(ctx)
	}
}

// Close 停止接收新事件并等待队列排空。
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.ch)
	})
	r.wg.Wait()
}

// enqueue 非阻塞入队，队列满时丢弃并记日志。
func (r *Recorder) enqueue(kind string, job func(context.Context)) {
	select {
	case r.ch <- job:
	default:
		r.cfg.Logger.Warn().Str("event", kind).Msg("event queue full, dropping")
	}
}

// ClickInput 点击上报入参。
type ClickInput struct {
	ItemID       int64
	UserID       int64 // 0 表示匿名
	SessionID    string
	Type         RecommendationType
	Position     int
	Slot         string
	SourceItemID int64 // SIMILAR 类型的种子物品
}

// RecordClick 异步记录一次推荐点击。
// 物品不存在时丢弃；用户不存在等同匿名处理。
func (r *Recorder) RecordClick(in ClickInput) {
	if in.ItemID <= 0 || in.Type == "" {
		r.cfg.Logger.Warn().
			Int64("item_id", in.ItemID).
			Str("type", string(in.Type)).
			Msg("invalid click record attempt")
		return
	}

	r.enqueue("click", func(ctx context.Context) {
		if r.cfg.Items != nil {
			item, err := r.cfg.Items.FindCandidateByID(ctx, in.ItemID)
			if err != nil || item == nil {
				r.cfg.Logger.Warn().
					Int64("item_id", in.ItemID).
					Msg("click on unknown item, dropping")
				return
			}
		}

		ev := &ClickEvent{
			ID:           NewEventID(),
			ItemID:       in.ItemID,
			UserID:       in.UserID,
			SessionID:    in.SessionID,
			Type:         in.Type,
			Position:     in.Position,
			Slot:         in.Slot,
			SourceItemID: in.SourceItemID,
			ClickedAt:    r.cfg.Now(),
		}
		if err := r.cfg.Events.AppendClick(ctx, ev); err != nil {
			r.cfg.Logger.Error().Err(err).
				Int64("item_id", in.ItemID).
				Msg("click record failed")
			return
		}
		r.cfg.Logger.Debug().
			Int64("item_id", in.ItemID).
			Int64("user_id", in.UserID).
			Str("type", string(in.Type)).
			Int("position", in.Position).
			Msg("click recorded")
	})
}

// ImpressionInput 曝光上报入参。
type ImpressionInput struct {
	SessionID    string
	UserID       int64
	Type         RecommendationType
	Count        int
	PageType     string
	SourceItemID int64
}

// RecordImpression 异步记录一次推荐曝光。
// 会话 ID 缺失或条数非正时丢弃；去重窗口内同会话同类型只记一次。
func (r *Recorder) RecordImpression(in ImpressionInput) {
	if strings.TrimSpace(in.SessionID) == "" {
		r.cfg.Logger.Warn().Msg("impression without session id, dropping")
		return
	}
	if in.Type == "" || in.Count <= 0 {
		r.cfg.Logger.Warn().
			Str("type", string(in.Type)).
			Int("count", in.Count).
			Msg("invalid impression record attempt")
		return
	}

	r.enqueue("impression", func(ctx context.Context) {
		if r.cfg.Dedup != nil {
			fresh, err := r.cfg.Dedup.Claim(ctx, in.SessionID, in.Type, r.cfg.DedupWindow)
			if err != nil {
				r.cfg.Logger.Error().Err(err).
					Str("session_id", in.SessionID).
					Msg("impression dedup check failed")
				return
			}
			if !fresh {
				r.cfg.Logger.Debug().
					Str("session_id", in.SessionID).
					Str("type", string(in.Type)).
					Msg("duplicate impression suppressed")
				return
			}
		}

		ev := &ImpressionEvent{
			ID:           NewEventID(),
			SessionID:    in.SessionID,
			UserID:       in.UserID,
			Type:         in.Type,
			Count:        in.Count,
			PageType:     in.PageType,
			SourceItemID: in.SourceItemID,
			ImpressedAt:  r.cfg.Now(),
		}
		if err := r.cfg.Events.AppendImpression(ctx, ev); err != nil {
			r.cfg.Logger.Error().Err(err).
				Str("session_id", in.SessionID).
				Msg("impression record failed")
			return
		}
		r.cfg.Logger.Debug().
			Str("session_id", in.SessionID).
			Int64("user_id", in.UserID).
			Str("type", string(in.Type)).
			Int("count", in.Count).
			Msg("impression recorded")
	})
}

// RecordView 异步记录一次物品浏览，回流为协同信号。
func (r *Recorder) RecordView(userID, itemID int64) {
	if itemID <= 0 || r.cfg.Views == nil {
		return
	}
	r.enqueue("view", func(ctx context.Context) {
		if err := r.cfg.Views.AppendView(ctx, userID, itemID, r.cfg.Now()); err != nil {
			r.cfg.Logger.Error().Err(err).
				Int64("item_id", itemID).
				Msg("view record failed")
		}
	})
}
