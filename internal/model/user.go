package model

// User 用户档案文档。关注关系（followers/following）不在文档本体里，
// 以存储层的原生集合维护，经 repository 聚合读出。
type User struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Username      string   `json:"username"`
	Bio           string   `json:"bio"`
	AvatarURL     string   `json:"avatarUrl"`
	AvatarHistory []string `json:"avatarHistory"`
	CreatedAt     int64    `json:"createdAt"` // ms epoch
}

// AppendAvatar 追加头像历史，仅对最近一条去重
func (u *User) AppendAvatar(url string) {
	if url == "" {
		return
	}
	n := len(u.AvatarHistory)
	if n == 0 || u.AvatarHistory[n-1] != url {
		u.AvatarHistory = append(u.AvatarHistory, url)
	}
	u.AvatarURL = url
}
