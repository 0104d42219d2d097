package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type PostHandler struct {
	posts service.PostService
	feed  service.FeedService
}

func NewPostHandler(posts service.PostService, feed service.FeedService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed}
}

type createPostRequest struct {
	Content      string              `json:"content"`
	ImageURL     string              `json:"imageUrl" binding:"required"`
	CudaMetadata *model.CudaMetadata `json:"cudaMetadata"`
}

type updatePostRequest struct {
	Content      *string             `json:"content"`
	ImageURL     *string             `json:"imageUrl"`
	CudaMetadata *model.CudaMetadata `json:"cudaMetadata"`
}

type createCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param X-User-Uid header string true "调用方用户ID"
// @Param request body createPostRequest true "帖子内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.posts.Create(c.Request.Context(), middleware.UID(c), service.CreatePostInput{
		Content: req.Content, ImageURL: req.ImageURL, CudaMetadata: req.CudaMetadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, view)
}

// Get 单帖查询（含作者冗余）
// @Summary 查询帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	view, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// List 全量帖子，最新在前
// @Summary 帖子列表
// @Tags 帖子
// @Success 200 {object} response.Response
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	views, err := h.posts.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, views)
}

// ListByUser 某作者的帖子，最新在前
// @Summary 按作者查帖子
// @Tags 帖子
// @Param id path string true "作者用户ID"
// @Success 200 {object} response.Response
// @Router /posts/user/{id} [get]
func (h *PostHandler) ListByUser(c *gin.Context) {
	views, err := h.posts.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, views)
}

// Feed 当前用户的信息流
// @Summary 信息流
// @Tags 帖子
// @Param X-User-Uid header string true "调用方用户ID"
// @Success 200 {object} response.Response
// @Router /posts/feed [get]
func (h *PostHandler) Feed(c *gin.Context) {
	views, err := h.feed.GetFeed(c.Request.Context(), middleware.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, views)
}

// Like 点赞（幂等）
// @Summary 点赞
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/likes [post]
func (h *PostHandler) Like(c *gin.Context) {
	view, err := h.posts.Like(c.Request.Context(), c.Param("id"), middleware.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// Unlike 取消点赞（幂等）
// @Summary 取消点赞
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/likes [delete]
func (h *PostHandler) Unlike(c *gin.Context) {
	view, err := h.posts.Unlike(c.Request.Context(), c.Param("id"), middleware.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// AddComment 追加评论
// @Summary 评论
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Param request body createCommentRequest true "评论内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), middleware.UID(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// Update 作者编辑帖子
// @Summary 编辑帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Param request body updatePostRequest true "编辑字段"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.posts.Update(c.Request.Context(), c.Param("id"), middleware.UID(c), service.UpdatePostInput{
		Content: req.Content, ImageURL: req.ImageURL, CudaMetadata: req.CudaMetadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// Delete 作者删帖
// @Summary 删除帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), middleware.UID(c)); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, nil)
}
