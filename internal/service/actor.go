package service

import "github.com/wuliu-next/internal/models"

// Actor 经过鉴权的操作者（用户ID、所属部门、管理员标志）
// 由请求层解析后传入各服务方法，服务据此做部门归属校验
type Actor struct {
	UserID          uint
	DepartmentID    uint
	IsAdministrator bool
	Department      *models.Department
}

// NewActor 从用户模型构建操作者
func NewActor(user *models.User) Actor {
	if user == nil {
		return Actor{}
	}
	return Actor{
		UserID:          user.ID,
		DepartmentID:    user.DepartmentID,
		IsAdministrator: user.IsAdministrator,
		Department:      user.Department,
	}
}

// IsGoodsYard 操作者是否隶属货场
func (a Actor) IsGoodsYard() bool {
	return a.Department.IsGoodsYard()
}
