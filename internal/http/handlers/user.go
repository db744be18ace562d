package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateUser 创建用户
func (h *Handler) CreateUser(c *gin.Context) {
	var req service.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	user, err := h.UserService.Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateUser 编辑用户
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	user, err := h.UserService.Update(id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.UserService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 分页查询用户
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Name:     c.Query("name"),
	}
	if v, err := strconv.ParseUint(c.Query("department_id"), 10, 64); err == nil {
		filter.DepartmentID = uint(v)
	}
	users, total, err := h.UserService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "用户查询失败", err)
		return
	}
	response.SuccessWithPage(c, users, buildPagination(page, pageSize, total))
}

// ListPermissions 全部可分配权限
func (h *Handler) ListPermissions(c *gin.Context) {
	perms, err := h.UserService.ListPermissions()
	if err != nil {
		respondError(c, response.CodeInternal, "权限查询失败", err)
		return
	}
	response.Success(c, perms)
}
