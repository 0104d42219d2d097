package model

import "time"

// 关注边双写的一侧落库失败时记一条修复任务，由后台 reconciler 补齐
const (
	EdgeActionAdd    = "add"
	EdgeActionRemove = "remove"

	EdgeSideFollowers = "followers"
	EdgeSideFollowing = "following"

	EdgeStatusPending    = "pending"
	EdgeStatusProcessing = "processing"
	EdgeStatusDone       = "done"
	EdgeStatusParked     = "parked" // 重试耗尽，转人工
)

// EdgeRepair 边修复日志行
type EdgeRepair struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	FollowerID string `gorm:"type:varchar(36);index:idx_edge_repair_pair"`
	FolloweeID string `gorm:"type:varchar(36);index:idx_edge_repair_pair"`
	Action     string `gorm:"type:varchar(8);not null"`
	Side       string `gorm:"type:varchar(16);not null"`
	Status     string `gorm:"type:varchar(16);index;not null"`
	Attempts   int
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (EdgeRepair) TableName() string { return "edge_repairs" }
