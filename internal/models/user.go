package models

import (
	"time"

	"github.com/wuliu-next/internal/constants"
)

// User 系统用户表
type User struct {
	ID              uint       `gorm:"primarykey" json:"id"`                               // 主键
	Name            string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // 用户名
	PasswordHash    string     `gorm:"type:varchar(200);not null" json:"-"`                // 密码哈希
	Enabled         bool       `gorm:"not null;default:true" json:"enabled"`               // 是否启用
	IsAdministrator bool       `gorm:"not null;default:false" json:"is_administrator"`     // 是否为系统管理员
	DepartmentID    uint       `gorm:"index;not null" json:"department_id"`                // 所属部门ID
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`                            // 最后登录时间
	CreatedAt       time.Time  `json:"created_at"`                                         // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                         // 更新时间

	Department  *Department  `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`     // 所属部门
	Permissions []Permission `gorm:"many2many:user_permissions" json:"permissions,omitempty"` // 权限集合
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Type 用户类型，由管理员标志与所属部门类型派生
// 部门不允许同时是货场和分支机构
func (u *User) Type() string {
	if u == nil {
		return ""
	}
	if u.IsAdministrator {
		return constants.UserTypeAdministrator
	}
	if u.Department != nil {
		if u.Department.IsGoodsYard() {
			return constants.UserTypeGoodsYard
		}
		if u.Department.IsBranch() {
			return constants.UserTypeBranch
		}
	}
	return constants.UserTypeCompany
}

// PermissionNames 返回用户的权限名集合
func (u *User) PermissionNames() map[string]bool {
	names := make(map[string]bool, len(u.Permissions))
	for _, p := range u.Permissions {
		names[p.Name] = true
	}
	return names
}
