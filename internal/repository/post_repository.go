package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-feed/internal/docstore"
	"github.com/d60-Lab/social-feed/internal/model"
)

const (
	colPosts = "posts"

	fieldLikes    = "likes"
	fieldComments = "comments"

	idxPostCreated = "created"
)

func idxPostUser(userID string) string { return "user:" + userID }

// PostRepository 帖子聚合存储。文档本体只放不可变/作者可编辑字段，
// likes 是原生集合、comments 是原生追加序列，读路径再聚合。
type PostRepository interface {
	Save(ctx context.Context, p *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindAll(ctx context.Context) ([]*model.Post, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Post, error)

	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	AddComment(ctx context.Context, postID string, c model.PostComment) error

	// Replace 只覆盖文档本体，likes/comments 不受影响
	Replace(ctx context.Context, p *model.Post) error
	DeleteByID(ctx context.Context, id string) error
}

// postDoc 文档本体（likes/comments 在附属键里）
type postDoc struct {
	ID           string              `json:"id"`
	UserID       string              `json:"userId"`
	Content      string              `json:"content"`
	ImageURL     string              `json:"imageUrl"`
	CreatedAt    int64               `json:"createdAt"`
	CudaMetadata *model.CudaMetadata `json:"cudaMetadata,omitempty"`
}

func toDoc(p *model.Post) *postDoc {
	return &postDoc{ID: p.ID, UserID: p.UserID, Content: p.Content, ImageURL: p.ImageURL,
		CreatedAt: p.CreatedAt, CudaMetadata: p.CudaMetadata}
}

type postRepository struct {
	store *docstore.Store
}

func NewPostRepository(store *docstore.Store) PostRepository {
	return &postRepository{store: store}
}

func (r *postRepository) Save(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := r.store.Set(ctx, colPosts, p.ID, toDoc(p)); err != nil {
		return err
	}
	if err := r.store.IndexPut(ctx, colPosts, idxPostCreated, p.CreatedAt, p.ID); err != nil {
		return err
	}
	return r.store.IndexPut(ctx, colPosts, idxPostUser(p.UserID), p.CreatedAt, p.ID)
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var doc postDoc
	if err := r.store.Get(ctx, colPosts, id, &doc); err != nil {
		return nil, err
	}
	return r.assemble(ctx, &doc)
}

func (r *postRepository) FindAll(ctx context.Context) ([]*model.Post, error) {
	return r.findByIndex(ctx, idxPostCreated)
}

func (r *postRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Post, error) {
	return r.findByIndex(ctx, idxPostUser(userID))
}

// findByIndex 按索引 score 降序（最新在前）取整张列表
func (r *postRepository) findByIndex(ctx context.Context, name string) ([]*model.Post, error) {
	ids, err := r.store.IndexRevRange(ctx, colPosts, name, 0, -1)
	if err != nil {
		return nil, err
	}
	posts := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		p, err := r.FindByID(ctx, id)
		if err == docstore.ErrNotFound {
			continue // 索引残留，跳过
		}
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (r *postRepository) assemble(ctx context.Context, doc *postDoc) (*model.Post, error) {
	likes, err := r.store.SetMembers(ctx, colPosts, doc.ID, fieldLikes)
	if err != nil {
		return nil, err
	}
	sort.Strings(likes)

	rawComments, err := r.store.ListRange(ctx, colPosts, doc.ID, fieldComments)
	if err != nil {
		return nil, err
	}
	comments := make([]model.PostComment, 0, len(rawComments))
	for _, raw := range rawComments {
		var c model.PostComment
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return &model.Post{
		ID:           doc.ID,
		UserID:       doc.UserID,
		Content:      doc.Content,
		ImageURL:     doc.ImageURL,
		CreatedAt:    doc.CreatedAt,
		CudaMetadata: doc.CudaMetadata,
		Likes:        likes,
		Comments:     comments,
	}, nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) error {
	_, err := r.store.SetAdd(ctx, colPosts, postID, fieldLikes, userID)
	return err
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	_, err := r.store.SetRemove(ctx, colPosts, postID, fieldLikes, userID)
	return err
}

func (r *postRepository) AddComment(ctx context.Context, postID string, c model.PostComment) error {
	return r.store.ListAppend(ctx, colPosts, postID, fieldComments, c)
}

func (r *postRepository) Replace(ctx context.Context, p *model.Post) error {
	ok, err := r.store.Exists(ctx, colPosts, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return docstore.ErrNotFound
	}
	return r.store.Set(ctx, colPosts, p.ID, toDoc(p))
}

func (r *postRepository) DeleteByID(ctx context.Context, id string) error {
	var doc postDoc
	if err := r.store.Get(ctx, colPosts, id, &doc); err != nil {
		return err
	}
	if err := r.store.IndexRemove(ctx, colPosts, idxPostCreated, id); err != nil {
		return err
	}
	if err := r.store.IndexRemove(ctx, colPosts, idxPostUser(doc.UserID), id); err != nil {
		return err
	}
	return r.store.Delete(ctx, colPosts, id, fieldLikes, fieldComments)
}
