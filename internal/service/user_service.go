package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/docstore"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// CreateUserInput 建档请求（id 由身份系统下发，经请求头带入）
type CreateUserInput struct {
	Name      string
	Username  string
	Bio       string
	AvatarURL string
}

// UpdateUserInput 档案部分更新：name/username 非空才生效，Bio 显式传了才覆盖
type UpdateUserInput struct {
	Name      string
	Username  string
	Bio       *string
	AvatarURL string
}

// UserService 用户档案 + 关注协调器。
//
// 关注边横跨两份独立文档（双方各自的集合字段），写入是两步非原子协议：
// 先写 actor.following，再写 target.followers。第二步失败时不回滚，
// 记一条修复任务交给 reconciler 补齐，请求以 UpstreamUnavailable 失败。
type UserService interface {
	CreateUser(ctx context.Context, uid string, in CreateUserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	AddAvatar(ctx context.Context, id, avatarURL string) (*model.User, error)

	Follow(ctx context.Context, actorID, targetID string) (*FollowAction, error)
	Unfollow(ctx context.Context, actorID, targetID string) (*FollowAction, error)
	ListFollowers(ctx context.Context, id string) (*FollowersList, error)
	ListFollowing(ctx context.Context, id string) (*FollowingList, error)
}

type userService struct {
	repo        repository.UserRepository
	journal     *EdgeJournal // 可为 nil（不记修复任务）
	followerCap int
}

func NewUserService(repo repository.UserRepository, journal *EdgeJournal, followerCap int) UserService {
	if followerCap <= 0 {
		followerCap = 10
	}
	return &userService{repo: repo, journal: journal, followerCap: followerCap}
}

func (s *userService) CreateUser(ctx context.Context, uid string, in CreateUserInput) (*model.User, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}
	u := &model.User{
		ID:        uid,
		Name:      in.Name,
		Username:  in.Username,
		Bio:       in.Bio,
		CreatedAt: time.Now().UnixMilli(),
	}
	u.AppendAvatar(strings.TrimSpace(in.AvatarURL))
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, fmt.Errorf("username %q is taken: %w", u.Username, ErrInvalidArgument)
		}
		return nil, fmt.Errorf("create user: %w", ErrUpstreamUnavailable)
	}
	return u, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	prevUsername := u.Username

	if strings.TrimSpace(in.Name) != "" {
		u.Name = in.Name
	}
	if strings.TrimSpace(in.Username) != "" {
		u.Username = in.Username
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	u.AppendAvatar(strings.TrimSpace(in.AvatarURL))

	if err := s.repo.Replace(ctx, u, prevUsername); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, fmt.Errorf("username %q is taken: %w", u.Username, ErrInvalidArgument)
		}
		return nil, fmt.Errorf("replace user %s: %w", id, ErrUpstreamUnavailable)
	}
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, id)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrInvalidArgument)
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err == docstore.ErrNotFound {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, ErrUpstreamUnavailable)
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", ErrUpstreamUnavailable)
	}
	return users, nil
}

func (s *userService) AddAvatar(ctx context.Context, id, avatarURL string) (*model.User, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		return nil, fmt.Errorf("avatarUrl is required: %w", ErrInvalidArgument)
	}
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.AppendAvatar(avatarURL)
	if err := s.repo.Replace(ctx, u, u.Username); err != nil {
		return nil, fmt.Errorf("replace user %s: %w", id, ErrUpstreamUnavailable)
	}
	return u, nil
}

func (s *userService) Follow(ctx context.Context, actorID, targetID string) (*FollowAction, error) {
	if err := s.checkPair(actorID, targetID); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, targetID); err != nil {
		return nil, err
	}

	already, err := s.repo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("read following set: %w", ErrUpstreamUnavailable)
	}
	if already {
		// 幂等：已关注则不再改动，返回当前计数
		return s.buildAction(ctx, actorID, targetID)
	}

	count, err := s.repo.FollowerCount(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("read follower count: %w", ErrUpstreamUnavailable)
	}
	if count >= int64(s.followerCap) {
		return nil, fmt.Errorf("user %s has reached the follower cap: %w", targetID, ErrCapacityExceeded)
	}

	// 两步非原子写：第一步失败则整体失败且无副作用；
	// 第二步失败会留下不对称边，由修复任务兜底。
	if err := s.repo.AddFollowing(ctx, actorID, targetID); err != nil {
		return nil, fmt.Errorf("write following edge: %w", ErrUpstreamUnavailable)
	}
	if err := s.repo.AddFollower(ctx, targetID, actorID); err != nil {
		s.signalAsymmetricEdge(ctx, actorID, targetID, model.EdgeActionAdd, err)
		return nil, fmt.Errorf("write follower edge: %w", ErrUpstreamUnavailable)
	}

	return s.buildAction(ctx, actorID, targetID)
}

func (s *userService) Unfollow(ctx context.Context, actorID, targetID string) (*FollowAction, error) {
	if err := s.checkPair(actorID, targetID); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, actorID); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, targetID); err != nil {
		return nil, err
	}

	following, err := s.repo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("read following set: %w", ErrUpstreamUnavailable)
	}
	if !following {
		// 边不存在，取消关注视为成功
		return s.buildAction(ctx, actorID, targetID)
	}

	if err := s.repo.RemoveFollowing(ctx, actorID, targetID); err != nil {
		return nil, fmt.Errorf("remove following edge: %w", ErrUpstreamUnavailable)
	}
	if err := s.repo.RemoveFollower(ctx, targetID, actorID); err != nil {
		s.signalAsymmetricEdge(ctx, actorID, targetID, model.EdgeActionRemove, err)
		return nil, fmt.Errorf("remove follower edge: %w", ErrUpstreamUnavailable)
	}

	return s.buildAction(ctx, actorID, targetID)
}

func (s *userService) ListFollowers(ctx context.Context, id string) (*FollowersList, error) {
	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}
	followers, err := s.repo.Followers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read followers: %w", ErrUpstreamUnavailable)
	}
	return &FollowersList{UserID: id, Count: len(followers), Followers: followers}, nil
}

func (s *userService) ListFollowing(ctx context.Context, id string) (*FollowingList, error) {
	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}
	following, err := s.repo.Following(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read following: %w", ErrUpstreamUnavailable)
	}
	return &FollowingList{UserID: id, Count: len(following), Following: following}, nil
}

func (s *userService) checkPair(actorID, targetID string) error {
	if strings.TrimSpace(actorID) == "" {
		return fmt.Errorf("caller uid is required: %w", ErrInvalidArgument)
	}
	if actorID == targetID {
		return fmt.Errorf("cannot follow self: %w", ErrInvalidArgument)
	}
	return nil
}

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err == docstore.ErrNotFound {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, ErrUpstreamUnavailable)
	}
	return u, nil
}

func (s *userService) buildAction(ctx context.Context, actorID, targetID string) (*FollowAction, error) {
	followers, err := s.repo.FollowerCount(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("read follower count: %w", ErrUpstreamUnavailable)
	}
	following, err := s.repo.FollowingCount(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("read following count: %w", ErrUpstreamUnavailable)
	}
	isFollowing, err := s.repo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("read following set: %w", ErrUpstreamUnavailable)
	}
	return &FollowAction{
		TargetUserID:   targetID,
		FollowersCount: int(followers),
		FollowingCount: int(following),
		Following:      isFollowing,
	}, nil
}

// signalAsymmetricEdge 第二步写失败：边已不对称。只记录、不补偿，
// 修复任务异步重放缺失的那一半。
func (s *userService) signalAsymmetricEdge(ctx context.Context, actorID, targetID, action string, cause error) {
	logger.Error("asymmetric follow edge",
		zap.String("actor", actorID),
		zap.String("target", targetID),
		zap.String("action", action),
		zap.Error(cause))
	sentry.CaptureException(fmt.Errorf("asymmetric follow edge %s %s->%s: %w", action, actorID, targetID, cause))

	if s.journal == nil {
		return
	}
	if err := s.journal.Enqueue(ctx, actorID, targetID, action, model.EdgeSideFollowers); err != nil {
		logger.Error("enqueue edge repair", zap.Error(err))
	}
}
