package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

type updateUserRequest struct {
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	AvatarURL string  `json:"avatarUrl"`
}

type addAvatarRequest struct {
	AvatarURL string `json:"avatarUrl" binding:"required"`
}

// Create 建档，id 来自网关注入的调用方身份
// @Summary 创建用户档案
// @Tags 用户
// @Accept json
// @Produce json
// @Param X-User-Uid header string true "调用方用户ID"
// @Param request body createUserRequest true "档案信息"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.CreateUser(c.Request.Context(), middleware.UID(c), service.CreateUserInput{
		Name: req.Name, Username: req.Username, Bio: req.Bio, AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, u)
}

// Update 档案部分更新
// @Summary 更新用户档案
// @Tags 用户
// @Param id path string true "用户ID"
// @Param request body updateUserRequest true "更新字段"
// @Success 200 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
		Name: req.Name, Username: req.Username, Bio: req.Bio, AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, u)
}

// Get 按 id 查档案
// @Summary 查询用户
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, u)
}

// GetByUsername 按用户名查档案
// @Summary 按用户名查询
// @Tags 用户
// @Param username path string true "用户名"
// @Success 200 {object} response.Response
// @Router /users/username/{username} [get]
func (h *UserHandler) GetByUsername(c *gin.Context) {
	u, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, u)
}

// List 全量用户列表
// @Summary 用户列表
// @Tags 用户
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, users)
}

// AddAvatar 追加头像（历史只对最近一条去重）
// @Summary 追加头像
// @Tags 用户
// @Param id path string true "用户ID"
// @Param request body addAvatarRequest true "头像地址"
// @Success 200 {object} response.Response
// @Router /users/{id}/avatars [post]
func (h *UserHandler) AddAvatar(c *gin.Context) {
	var req addAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.AddAvatar(c.Request.Context(), c.Param("id"), req.AvatarURL)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, u)
}

// Follow 关注（actor 为请求头身份，target 为路径 id）
// @Summary 关注用户
// @Tags 关系
// @Param id path string true "目标用户ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/followers [post]
func (h *UserHandler) Follow(c *gin.Context) {
	action, err := h.users.Follow(c.Request.Context(), middleware.UID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, action)
}

// Unfollow 取消关注（边不存在视为成功）
// @Summary 取消关注
// @Tags 关系
// @Param id path string true "目标用户ID"
// @Param X-User-Uid header string true "调用方用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/followers [delete]
func (h *UserHandler) Unfollow(c *gin.Context) {
	action, err := h.users.Unfollow(c.Request.Context(), middleware.UID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, action)
}

// ListFollowers 粉丝列表
// @Summary 粉丝列表
// @Tags 关系
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/followers [get]
func (h *UserHandler) ListFollowers(c *gin.Context) {
	list, err := h.users.ListFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, list)
}

// ListFollowing 关注列表
// @Summary 关注列表
// @Tags 关系
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/following [get]
func (h *UserHandler) ListFollowing(c *gin.Context) {
	list, err := h.users.ListFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, list)
}
