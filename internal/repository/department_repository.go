package repository

import (
	"errors"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// DepartmentListFilter 部门列表筛选条件
type DepartmentListFilter struct {
	Page     int
	PageSize int
	Name     string
	ParentID uint
}

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	GetByID(id uint) (*models.Department, error)
	GetByName(name string) (*models.Department, error)
	ListByIDs(ids []uint) ([]models.Department, error)
	List(filter DepartmentListFilter) ([]models.Department, int64, error)
	ListAll() ([]models.Department, error)
	CountChildren(parentID uint) (int64, error)
	Create(dept *models.Department) error
	Update(dept *models.Department) error
	Delete(id uint) error
}

// GormDepartmentRepository GORM 实现
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门仓库
func NewDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// GetByID 按ID获取部门
func (r *GormDepartmentRepository) GetByID(id uint) (*models.Department, error) {
	if id == 0 {
		return nil, nil
	}
	var dept models.Department
	if err := r.db.Preload("Parent").First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// GetByName 按名称获取部门
func (r *GormDepartmentRepository) GetByName(name string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.Where("name = ?", name).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// ListByIDs 批量获取部门
func (r *GormDepartmentRepository) ListByIDs(ids []uint) ([]models.Department, error) {
	if len(ids) == 0 {
		return []models.Department{}, nil
	}
	var depts []models.Department
	if err := r.db.Where("id IN ?", ids).Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

// List 分页查询部门
func (r *GormDepartmentRepository) List(filter DepartmentListFilter) ([]models.Department, int64, error) {
	query := r.db.Model(&models.Department{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.ParentID > 0 {
		query = query.Where("parent_id = ?", filter.ParentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var depts []models.Department
	if err := applyPagination(query.Order("id"), filter.Page, filter.PageSize).Find(&depts).Error; err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

// ListAll 获取全部部门
func (r *GormDepartmentRepository) ListAll() ([]models.Department, error) {
	var depts []models.Department
	if err := r.db.Order("id").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

// CountChildren 统计下级部门数
func (r *GormDepartmentRepository) CountChildren(parentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Department{}).Where("parent_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建部门
func (r *GormDepartmentRepository) Create(dept *models.Department) error {
	return r.db.Create(dept).Error
}

// Update 更新部门
func (r *GormDepartmentRepository) Update(dept *models.Department) error {
	return r.db.Save(dept).Error
}

// Delete 删除部门
func (r *GormDepartmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Department{}, id).Error
}
