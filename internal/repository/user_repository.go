package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/d60-Lab/social-feed/internal/docstore"
	"github.com/d60-Lab/social-feed/internal/model"
)

// ErrUsernameTaken 用户名已被其他用户占用
var ErrUsernameTaken = errors.New("username taken")

const (
	colUsers = "users"

	fieldFollowers = "followers"
	fieldFollowing = "following"

	idxUserCreated = "created"
	lkUsername     = "username"
)

// UserRepository 用户档案 + 关注边的唯一持久化入口。
// 档案是整文档覆盖写；followers/following 走存储层原生集合，
// 幂等由存储结构保证而不是调用方契约。
type UserRepository interface {
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Create(ctx context.Context, u *model.User) error
	// Replace 整文档覆盖（last-writer-wins）；prevUsername 用于维护反查表
	Replace(ctx context.Context, u *model.User, prevUsername string) error

	AddFollowing(ctx context.Context, userID, targetID string) error
	RemoveFollowing(ctx context.Context, userID, targetID string) error
	AddFollower(ctx context.Context, userID, followerID string) error
	RemoveFollower(ctx context.Context, userID, followerID string) error

	Followers(ctx context.Context, id string) ([]string, error)
	Following(ctx context.Context, id string) ([]string, error)
	FollowerCount(ctx context.Context, id string) (int64, error)
	FollowingCount(ctx context.Context, id string) (int64, error)
	IsFollowing(ctx context.Context, userID, targetID string) (bool, error)
}

type userRepository struct {
	store *docstore.Store
}

func NewUserRepository(store *docstore.Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.store.Get(ctx, colUsers, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := r.store.LookupGet(ctx, colUsers, lkUsername, username)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	ids, err := r.store.IndexRevRange(ctx, colUsers, idxUserCreated, 0, -1)
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		u, err := r.Get(ctx, id)
		if err == docstore.ErrNotFound {
			continue // 索引残留，跳过
		}
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	// 先占用户名，占不到就不落档案
	if u.Username != "" {
		if err := r.claimUsername(ctx, u.Username, u.ID); err != nil {
			return err
		}
	}
	if err := r.store.Set(ctx, colUsers, u.ID, u); err != nil {
		return err
	}
	return r.store.IndexPut(ctx, colUsers, idxUserCreated, u.CreatedAt, u.ID)
}

func (r *userRepository) Replace(ctx context.Context, u *model.User, prevUsername string) error {
	if u.Username != "" && u.Username != prevUsername {
		if err := r.claimUsername(ctx, u.Username, u.ID); err != nil {
			return err
		}
	}
	if err := r.store.Set(ctx, colUsers, u.ID, u); err != nil {
		return err
	}
	if prevUsername != "" && prevUsername != u.Username {
		return r.store.LookupRemove(ctx, colUsers, lkUsername, prevUsername)
	}
	return nil
}

// claimUsername 反查表做唯一性闸门；同一用户重复占用视为成功
func (r *userRepository) claimUsername(ctx context.Context, username, id string) error {
	ok, err := r.store.LookupPutIfAbsent(ctx, colUsers, lkUsername, username, id)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	owner, err := r.store.LookupGet(ctx, colUsers, lkUsername, username)
	if err != nil {
		return err
	}
	if owner != id {
		return ErrUsernameTaken
	}
	return nil
}

func (r *userRepository) AddFollowing(ctx context.Context, userID, targetID string) error {
	_, err := r.store.SetAdd(ctx, colUsers, userID, fieldFollowing, targetID)
	return err
}

func (r *userRepository) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	_, err := r.store.SetRemove(ctx, colUsers, userID, fieldFollowing, targetID)
	return err
}

func (r *userRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	_, err := r.store.SetAdd(ctx, colUsers, userID, fieldFollowers, followerID)
	return err
}

func (r *userRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	_, err := r.store.SetRemove(ctx, colUsers, userID, fieldFollowers, followerID)
	return err
}

func (r *userRepository) Followers(ctx context.Context, id string) ([]string, error) {
	return r.members(ctx, id, fieldFollowers)
}

func (r *userRepository) Following(ctx context.Context, id string) ([]string, error) {
	return r.members(ctx, id, fieldFollowing)
}

func (r *userRepository) members(ctx context.Context, id, field string) ([]string, error) {
	ids, err := r.store.SetMembers(ctx, colUsers, id, field)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids) // SMEMBERS 无序，排一下让响应稳定
	return ids, nil
}

func (r *userRepository) FollowerCount(ctx context.Context, id string) (int64, error) {
	return r.store.SetCard(ctx, colUsers, id, fieldFollowers)
}

func (r *userRepository) FollowingCount(ctx context.Context, id string) (int64, error) {
	return r.store.SetCard(ctx, colUsers, id, fieldFollowing)
}

func (r *userRepository) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return r.store.SetContains(ctx, colUsers, userID, fieldFollowing, targetID)
}
