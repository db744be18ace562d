package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/service"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	user, token, expiresAt, err := h.AuthService.Login(req.Name, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, err.Error(), nil)
			return
		}
		if errors.Is(err, service.ErrUserDisabled) {
			respondError(c, response.CodeForbidden, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":               user.ID,
			"name":             user.Name,
			"type":             user.Type(),
			"department_id":    user.DepartmentID,
			"is_administrator": user.IsAdministrator,
		},
		ExpiresAt: expiresAt.Format("2006-01-02 15:04:05"),
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改当前用户密码
func (h *Handler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := h.AuthService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "密码修改成功", nil)
}

// Me 当前登录用户信息（含部门与权限集合）
func (h *Handler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	perms, err := h.AuthService.PermissionNames(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	response.Success(c, gin.H{
		"id":               user.ID,
		"name":             user.Name,
		"type":             user.Type(),
		"department":       user.Department,
		"is_administrator": user.IsAdministrator,
		"permissions":      names,
	})
}
