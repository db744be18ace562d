package repository

import (
	"errors"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// SettingRepository 全局设置数据访问接口
type SettingRepository interface {
	Get() (*models.Setting, error)
	Count() (int64, error)
	Create(setting *models.Setting) error
	Update(setting *models.Setting) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SettingRepository
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSettingRepository) WithTx(tx *gorm.DB) SettingRepository {
	if tx == nil {
		return r
	}
	return &GormSettingRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormSettingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Get 获取全局设置行，不存在时返回 nil
func (r *GormSettingRepository) Get() (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.Order("id").First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Count 统计设置行数，用于单行约束检查
func (r *GormSettingRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建设置行
func (r *GormSettingRepository) Create(setting *models.Setting) error {
	return r.db.Create(setting).Error
}

// Update 更新设置行
func (r *GormSettingRepository) Update(setting *models.Setting) error {
	return r.db.Save(setting).Error
}
