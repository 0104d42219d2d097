package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// FeedService fan-out-on-read：读时逐个作者取帖、合并排序截断，再补作者冗余
type FeedService interface {
	GetFeed(ctx context.Context, uid string) ([]*PostView, error)
}

type feedService struct {
	repo     repository.PostRepository
	profiles ProfileClient
	enr      enricher
	limit    int
	workers  int
}

func NewFeedService(repo repository.PostRepository, profiles ProfileClient, limit int) FeedService {
	if limit <= 0 {
		limit = 50
	}
	return &feedService{
		repo:     repo,
		profiles: profiles,
		enr:      enricher{profiles: profiles},
		limit:    limit,
		workers:  4,
	}
}

func (s *feedService) GetFeed(ctx context.Context, uid string) ([]*PostView, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}

	// 关注集合取不到不影响整条请求，降级为只看自己
	following, err := s.profiles.Following(ctx, uid)
	if err != nil {
		logger.Warn("following lookup degraded to empty set", zap.String("user", uid), zap.Error(err))
		following = nil
	}

	// 观察集合 = following ∪ {self}
	seen := map[string]struct{}{uid: {}}
	authors := []string{uid}
	for _, id := range following {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		authors = append(authors, id)
	}

	merged := s.fanOut(ctx, authors)

	// 稳定排序：createdAt 降序，平分时按 id 降序兜底（与到达顺序无关）
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt != merged[j].CreatedAt {
			return merged[i].CreatedAt > merged[j].CreatedAt
		}
		return merged[i].ID > merged[j].ID
	})
	if len(merged) > s.limit {
		merged = merged[:s.limit]
	}

	return s.enr.posts(ctx, merged), nil
}

// fanOut 有界并发逐作者取帖。单个作者失败只丢该作者的帖子（读路径非致命）。
func (s *feedService) fanOut(ctx context.Context, authors []string) []*model.Post {
	sem := make(chan struct{}, s.workers)
	var (
		mu     sync.Mutex
		merged []*model.Post
		wg     sync.WaitGroup
	)
	for _, author := range authors {
		wg.Add(1)
		sem <- struct{}{}
		go func(author string) {
			defer wg.Done()
			defer func() { <-sem }()
			posts, err := s.repo.FindByUserID(ctx, author)
			if err != nil {
				logger.Warn("feed fetch skipped author", zap.String("author", author), zap.Error(err))
				return
			}
			mu.Lock()
			merged = append(merged, posts...)
			mu.Unlock()
		}(author)
	}
	wg.Wait()
	return merged
}
