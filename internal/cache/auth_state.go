package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/wuliu-next/internal/models"
)

const authStateCacheTTL = time.Minute

// UserAuthState 用户鉴权快照（仅用于服务端 Redis 缓存）
// 避免每次请求都查询用户及其权限集合
type UserAuthState struct {
	UserID          uint     `json:"user_id"`
	Name            string   `json:"name"`
	Enabled         bool     `json:"enabled"`
	IsAdministrator bool     `json:"is_administrator"`
	DepartmentID    uint     `json:"department_id"`
	Permissions     []string `json:"permissions"`
	UpdatedAt       int64    `json:"updated_at"`
}

func userAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	perms := make([]string, 0, len(user.Permissions))
	for _, p := range user.Permissions {
		perms = append(perms, p.Name)
	}
	return &UserAuthState{
		UserID:          user.ID,
		Name:            user.Name,
		Enabled:         user.Enabled,
		IsAdministrator: user.IsAdministrator,
		DepartmentID:    user.DepartmentID,
		Permissions:     perms,
		UpdatedAt:       time.Now().Unix(),
	}
}

// GetUserAuthState 获取用户鉴权快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入用户鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户鉴权快照
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
