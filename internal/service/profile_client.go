package service

import "context"

// Profile 档案服务返回的冗余作者记录
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// ProfileClient 远端档案/关系图访问口。实现方必须自带超时；
// 调用方把任何失败当作可降级（Profile 失败→兜底档案，Following 失败→空集）。
type ProfileClient interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

// fallbackProfile 档案取不到时的兜底：只带 id，不带展示名/头像
func fallbackProfile(userID string) *Profile {
	return &Profile{ID: userID}
}
