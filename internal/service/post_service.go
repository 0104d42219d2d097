package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-feed/internal/docstore"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// CreatePostInput imageUrl 必填，content 可空，cudaMetadata 原样透传
type CreatePostInput struct {
	Content      string
	ImageURL     string
	CudaMetadata *model.CudaMetadata
}

// UpdatePostInput 仅作者可改 content/imageUrl/metadata；nil 表示不动
type UpdatePostInput struct {
	Content      *string
	ImageURL     *string
	CudaMetadata *model.CudaMetadata
}

type PostService interface {
	Create(ctx context.Context, uid string, in CreatePostInput) (*PostView, error)
	Get(ctx context.Context, id string) (*PostView, error)
	ListAll(ctx context.Context) ([]*PostView, error)
	ListByUser(ctx context.Context, userID string) ([]*PostView, error)

	Like(ctx context.Context, postID, uid string) (*PostView, error)
	Unlike(ctx context.Context, postID, uid string) (*PostView, error)
	AddComment(ctx context.Context, postID, uid, text string) (*PostView, error)

	Update(ctx context.Context, postID, uid string, in UpdatePostInput) (*PostView, error)
	Delete(ctx context.Context, postID, uid string) error
}

type postService struct {
	repo repository.PostRepository
	enr  enricher
}

func NewPostService(repo repository.PostRepository, profiles ProfileClient) PostService {
	return &postService{repo: repo, enr: enricher{profiles: profiles}}
}

func (s *postService) Create(ctx context.Context, uid string, in CreatePostInput) (*PostView, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, fmt.Errorf("imageUrl is required: %w", ErrInvalidArgument)
	}
	p := &model.Post{
		UserID:       uid,
		Content:      in.Content,
		ImageURL:     in.ImageURL,
		CreatedAt:    time.Now().UnixMilli(),
		CudaMetadata: in.CudaMetadata,
		Likes:        []string{},
		Comments:     []model.PostComment{},
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save post: %w", ErrUpstreamUnavailable)
	}
	return s.enr.post(ctx, p), nil
}

func (s *postService) Get(ctx context.Context, id string) (*PostView, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enr.post(ctx, p), nil
}

func (s *postService) ListAll(ctx context.Context) ([]*PostView, error) {
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", ErrUpstreamUnavailable)
	}
	return s.enr.posts(ctx, posts), nil
}

func (s *postService) ListByUser(ctx context.Context, userID string) ([]*PostView, error) {
	posts, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts by user: %w", ErrUpstreamUnavailable)
	}
	return s.enr.posts(ctx, posts), nil
}

func (s *postService) Like(ctx context.Context, postID, uid string) (*PostView, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}
	if err := s.repo.AddLike(ctx, postID, uid); err != nil {
		return nil, s.wrap(postID, err)
	}
	return s.Get(ctx, postID)
}

func (s *postService) Unlike(ctx context.Context, postID, uid string) (*PostView, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}
	if err := s.repo.RemoveLike(ctx, postID, uid); err != nil {
		return nil, s.wrap(postID, err)
	}
	return s.Get(ctx, postID)
}

func (s *postService) AddComment(ctx context.Context, postID, uid, text string) (*PostView, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required: %w", ErrInvalidArgument)
	}
	c := model.PostComment{
		ID:        uuid.New().String(),
		UserID:    uid,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.repo.AddComment(ctx, postID, c); err != nil {
		return nil, s.wrap(postID, err)
	}
	return s.Get(ctx, postID)
}

func (s *postService) Update(ctx context.Context, postID, uid string, in UpdatePostInput) (*PostView, error) {
	p, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID != uid {
		return nil, fmt.Errorf("only the author may edit post %s: %w", postID, ErrForbidden)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		p.ImageURL = *in.ImageURL
	}
	if in.CudaMetadata != nil {
		p.CudaMetadata = in.CudaMetadata
	}
	if err := s.repo.Replace(ctx, p); err != nil {
		return nil, s.wrap(postID, err)
	}
	return s.enr.post(ctx, p), nil
}

func (s *postService) Delete(ctx context.Context, postID, uid string) error {
	p, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != uid {
		return fmt.Errorf("only the author may delete post %s: %w", postID, ErrForbidden)
	}
	if err := s.repo.DeleteByID(ctx, postID); err != nil {
		return s.wrap(postID, err)
	}
	return nil
}

func (s *postService) find(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.wrap(id, err)
	}
	return p, nil
}

// wrap 存储层的“文档不存在”翻译成带帖子 id 的领域 NotFound
func (s *postService) wrap(postID string, err error) error {
	if err == docstore.ErrNotFound {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	return fmt.Errorf("post %s: %w", postID, ErrUpstreamUnavailable)
}
