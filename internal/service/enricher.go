package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// enricher 读路径上给帖子和评论补作者冗余字段。
// 档案取不到（超时/404/传输错误）一律换兜底档案，绝不让整个请求失败。
type enricher struct {
	profiles ProfileClient
}

func (e *enricher) post(ctx context.Context, p *model.Post) *PostView {
	memo := map[string]*Profile{}
	return e.postMemo(ctx, p, memo)
}

func (e *enricher) posts(ctx context.Context, ps []*model.Post) []*PostView {
	memo := map[string]*Profile{}
	views := make([]*PostView, len(ps))
	for i, p := range ps {
		views[i] = e.postMemo(ctx, p, memo)
	}
	return views
}

func (e *enricher) postMemo(ctx context.Context, p *model.Post, memo map[string]*Profile) *PostView {
	author := e.lookup(ctx, p.UserID, memo)

	comments := make([]CommentView, len(p.Comments))
	for i, c := range p.Comments {
		cp := e.lookup(ctx, c.UserID, memo)
		comments[i] = CommentView{
			ID:              c.ID,
			UserID:          c.UserID,
			AuthorName:      cp.Name,
			AuthorAvatarURL: cp.AvatarURL,
			Text:            c.Text,
			CreatedAt:       c.CreatedAt,
		}
	}

	return &PostView{
		ID:              p.ID,
		UserID:          p.UserID,
		AuthorName:      author.Name,
		AuthorAvatarURL: author.AvatarURL,
		Content:         p.Content,
		ImageURL:        p.ImageURL,
		CreatedAt:       p.CreatedAt,
		LikeCount:       len(p.Likes),
		Likes:           p.Likes,
		Comments:        comments,
		CudaMetadata:    p.CudaMetadata,
	}
}

// lookup 同一次请求里相同作者只查一次
func (e *enricher) lookup(ctx context.Context, userID string, memo map[string]*Profile) *Profile {
	if p, ok := memo[userID]; ok {
		return p
	}
	p, err := e.profiles.Profile(ctx, userID)
	if err != nil || p == nil {
		if err != nil {
			logger.Debug("profile lookup degraded", zap.String("user", userID), zap.Error(err))
		}
		p = fallbackProfile(userID)
	}
	memo[userID] = p
	return p
}
