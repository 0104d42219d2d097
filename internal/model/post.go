package model

// Post 帖子聚合。Likes 为集合语义（存储层幂等 union/remove），
// Comments 仅追加、按插入顺序。
type Post struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Content      string        `json:"content"`
	ImageURL     string        `json:"imageUrl"`
	CreatedAt    int64         `json:"createdAt"` // ms epoch
	CudaMetadata *CudaMetadata `json:"cudaMetadata,omitempty"`
	Likes        []string      `json:"likes"`
	Comments     []PostComment `json:"comments"`
}

// PostComment 创建后不可变，无编辑/删除路径
type PostComment struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// CudaMetadata 图片处理服务产出的加工来源记录，原样透传、不做解释
type CudaMetadata struct {
	FilterType      string   `json:"filterType,omitempty"`
	KernelSize      *int     `json:"kernelSize,omitempty"`
	Width           *int     `json:"width,omitempty"`
	Height          *int     `json:"height,omitempty"`
	GpuTimeMs       *float64 `json:"gpuTimeMs,omitempty"`
	BlocksX         *int     `json:"blocksX,omitempty"`
	BlocksY         *int     `json:"blocksY,omitempty"`
	ThreadsX        *int     `json:"threadsX,omitempty"`
	ThreadsY        *int     `json:"threadsY,omitempty"`
	ThreadsPerBlock *int     `json:"threadsPerBlock,omitempty"`
}
