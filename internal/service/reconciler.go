package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// EdgeJournal 不对称边的持久修复队列
type EdgeJournal struct {
	db *gorm.DB
}

func NewEdgeJournal(db *gorm.DB) (*EdgeJournal, error) {
	if err := db.AutoMigrate(&model.EdgeRepair{}); err != nil {
		return nil, err
	}
	return &EdgeJournal{db: db}, nil
}

func (j *EdgeJournal) Enqueue(ctx context.Context, followerID, followeeID, action, side string) error {
	rec := &model.EdgeRepair{
		ID:         uuid.New().String(),
		FollowerID: followerID,
		FolloweeID: followeeID,
		Action:     action,
		Side:       side,
		Status:     model.EdgeStatusPending,
	}
	return j.db.WithContext(ctx).Create(rec).Error
}

// Reconciler 轮询修复队列，重放缺失的那一半边写。
// 重试有上限，耗尽后标记 parked 等人工处理。
type Reconciler struct {
	journal      *EdgeJournal
	users        repository.UserRepository
	claimLimit   int
	maxAttempts  int
	pollInterval time.Duration
	metricsCh    chan time.Duration // enqueue->repaired 延迟
}

func NewReconciler(journal *EdgeJournal, users repository.UserRepository, claimLimit, maxAttempts int, pollInterval time.Duration) *Reconciler {
	if claimLimit <= 0 {
		claimLimit = 64
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Reconciler{
		journal:      journal,
		users:        users,
		claimLimit:   claimLimit,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		metricsCh:    make(chan time.Duration, 4096),
	}
}

// Metrics 返回修复延迟的只读通道（每修复一条发送一次）
func (r *Reconciler) Metrics() <-chan time.Duration { return r.metricsCh }

// Start 启动轮询，返回停止函数
func (r *Reconciler) Start() func(context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := r.ProcessOnce(context.Background()); err != nil {
					logger.Warn("edge repair pass failed", zap.Error(err))
				}
			}
		}
	}()
	return func(ctx context.Context) error {
		close(stop)
		select {
		case <-done:
		case <-ctx.Done():
		}
		return nil
	}
}

// ProcessOnce 认领一批 pending 任务并逐条重放
func (r *Reconciler) ProcessOnce(ctx context.Context) error {
	var batch []model.EdgeRepair
	err := r.journal.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ?", model.EdgeStatusPending).
			Order("created_at").
			Limit(r.claimLimit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.EdgeRepair{}).
			Where("id IN ?", ids).
			Update("status", model.EdgeStatusProcessing).Error
	})
	if err != nil {
		return err
	}

	for _, rec := range batch {
		r.repair(ctx, rec)
	}
	return nil
}

func (r *Reconciler) repair(ctx context.Context, rec model.EdgeRepair) {
	err := r.apply(ctx, rec)
	db := r.journal.db.WithContext(ctx)

	if err == nil {
		_ = db.Model(&model.EdgeRepair{}).Where("id = ?", rec.ID).
			Updates(map[string]any{"status": model.EdgeStatusDone, "attempts": rec.Attempts + 1}).Error
		select {
		case r.metricsCh <- time.Since(rec.CreatedAt):
		default:
		}
		return
	}

	status := model.EdgeStatusPending
	if rec.Attempts+1 >= r.maxAttempts {
		status = model.EdgeStatusParked
		logger.Error("edge repair exhausted retries",
			zap.String("id", rec.ID),
			zap.String("follower", rec.FollowerID),
			zap.String("followee", rec.FolloweeID),
			zap.Error(err))
	}
	_ = db.Model(&model.EdgeRepair{}).Where("id = ?", rec.ID).
		Updates(map[string]any{"status": status, "attempts": rec.Attempts + 1}).Error
}

// apply 重放缺失的一半。集合写天然幂等，重复重放无副作用。
func (r *Reconciler) apply(ctx context.Context, rec model.EdgeRepair) error {
	switch {
	case rec.Side == model.EdgeSideFollowers && rec.Action == model.EdgeActionAdd:
		return r.users.AddFollower(ctx, rec.FolloweeID, rec.FollowerID)
	case rec.Side == model.EdgeSideFollowers && rec.Action == model.EdgeActionRemove:
		return r.users.RemoveFollower(ctx, rec.FolloweeID, rec.FollowerID)
	case rec.Side == model.EdgeSideFollowing && rec.Action == model.EdgeActionAdd:
		return r.users.AddFollowing(ctx, rec.FollowerID, rec.FolloweeID)
	default:
		return r.users.RemoveFollowing(ctx, rec.FollowerID, rec.FolloweeID)
	}
}
