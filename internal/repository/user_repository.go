package repository

import (
	"errors"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// UserListFilter 用户列表筛选条件
type UserListFilter struct {
	Page         int
	PageSize     int
	Name         string
	DepartmentID uint
	EnabledOnly  bool
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByName(name string) (*models.User, error)
	List(filter UserListFilter) ([]models.User, int64, error)
	Create(user *models.User) error
	Update(user *models.User) error
	CountEnabledAdministrators(excludeID uint) (int64, error)
	CountByDepartment(departmentID uint) (int64, error)
	ReplacePermissions(user *models.User, permissions []models.Permission) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 按ID获取用户（含部门与权限）
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.Preload("Department").Preload("Permissions").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByName 按用户名获取用户（含部门与权限）
func (r *GormUserRepository) GetByName(name string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Department").Preload("Permissions").Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// List 分页查询用户
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.DepartmentID > 0 {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.EnabledOnly {
		query = query.Where("enabled = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := applyPagination(query.Preload("Department").Order("id"), filter.Page, filter.PageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// CountEnabledAdministrators 统计启用状态的管理员数量（可排除指定用户）
func (r *GormUserRepository) CountEnabledAdministrators(excludeID uint) (int64, error) {
	query := r.db.Model(&models.User{}).Where("is_administrator = ? AND enabled = ?", true, true)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByDepartment 统计部门下的用户数
func (r *GormUserRepository) CountByDepartment(departmentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("department_id = ?", departmentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReplacePermissions 整体替换用户权限集合
func (r *GormUserRepository) ReplacePermissions(user *models.User, permissions []models.Permission) error {
	return r.db.Model(user).Association("Permissions").Replace(permissions)
}
