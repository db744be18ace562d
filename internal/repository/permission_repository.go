package repository

import (
	"errors"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// PermissionRepository 权限数据访问接口
type PermissionRepository interface {
	GetByName(name string) (*models.Permission, error)
	ListAll() ([]models.Permission, error)
	ListByNames(names []string) ([]models.Permission, error)
	ListGroups() ([]models.PermissionGroup, error)
}

// GormPermissionRepository GORM 实现
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository 创建权限仓库
func NewPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

// GetByName 按权限名获取权限
func (r *GormPermissionRepository) GetByName(name string) (*models.Permission, error) {
	var perm models.Permission
	if err := r.db.Where("name = ?", name).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

// ListAll 获取全部权限
func (r *GormPermissionRepository) ListAll() ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.db.Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// ListByNames 按权限名批量获取
func (r *GormPermissionRepository) ListByNames(names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return []models.Permission{}, nil
	}
	var perms []models.Permission
	if err := r.db.Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// ListGroups 获取全部权限分组
func (r *GormPermissionRepository) ListGroups() ([]models.PermissionGroup, error) {
	var groups []models.PermissionGroup
	if err := r.db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
