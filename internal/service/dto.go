package service

import "github.com/d60-Lab/social-feed/internal/model"

// FollowAction follow/unfollow 的结果摘要
type FollowAction struct {
	TargetUserID   string `json:"targetUserId"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
	Following      bool   `json:"following"`
}

type FollowersList struct {
	UserID    string   `json:"userId"`
	Count     int      `json:"count"`
	Followers []string `json:"followers"`
}

type FollowingList struct {
	UserID    string   `json:"userId"`
	Count     int      `json:"count"`
	Following []string `json:"following"`
}

// PostView 读路径返回的帖子，作者字段来自档案服务的冗余
type PostView struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	AuthorName      string              `json:"authorName,omitempty"`
	AuthorAvatarURL string              `json:"authorAvatarUrl,omitempty"`
	Content         string              `json:"content,omitempty"`
	ImageURL        string              `json:"imageUrl"`
	CreatedAt       int64               `json:"createdAt"`
	LikeCount       int                 `json:"likeCount"`
	Likes           []string            `json:"likes"`
	Comments        []CommentView       `json:"comments"`
	CudaMetadata    *model.CudaMetadata `json:"cudaMetadata,omitempty"`
}

type CommentView struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	AuthorName      string `json:"authorName,omitempty"`
	AuthorAvatarURL string `json:"authorAvatarUrl,omitempty"`
	Text            string `json:"text"`
	CreatedAt       int64  `json:"createdAt"`
}
