package repository

import (
	"errors"
	"time"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CargoPricePaymentListFilter 代收转款单列表筛选条件
type CargoPricePaymentListFilter struct {
	Page         int
	PageSize     int
	Status       *int
	CreateUserID uint
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// CargoPricePaymentRepository 代收转款单数据访问接口
type CargoPricePaymentRepository interface {
	GetByID(id uint) (*models.CargoPricePayment, error)
	GetByIDForUpdate(id uint) (*models.CargoPricePayment, error)
	List(filter CargoPricePaymentListFilter) ([]models.CargoPricePayment, int64, error)
	Create(payment *models.CargoPricePayment) error
	Update(payment *models.CargoPricePayment) error
	Delete(payment *models.CargoPricePayment) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CargoPricePaymentRepository
}

// GormCargoPricePaymentRepository GORM 实现
type GormCargoPricePaymentRepository struct {
	db *gorm.DB
}

// NewCargoPricePaymentRepository 创建代收转款单仓库
func NewCargoPricePaymentRepository(db *gorm.DB) *GormCargoPricePaymentRepository {
	return &GormCargoPricePaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCargoPricePaymentRepository) WithTx(tx *gorm.DB) CargoPricePaymentRepository {
	if tx == nil {
		return r
	}
	return &GormCargoPricePaymentRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormCargoPricePaymentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取转款单（含创建人与运单）
func (r *GormCargoPricePaymentRepository) GetByID(id uint) (*models.CargoPricePayment, error) {
	if id == 0 {
		return nil, nil
	}
	var payment models.CargoPricePayment
	if err := r.db.Preload("CreateUser").Preload("Waybills").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByIDForUpdate 按ID加锁获取转款单
func (r *GormCargoPricePaymentRepository) GetByIDForUpdate(id uint) (*models.CargoPricePayment, error) {
	if id == 0 {
		return nil, nil
	}
	var payment models.CargoPricePayment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// List 分页查询转款单
func (r *GormCargoPricePaymentRepository) List(filter CargoPricePaymentListFilter) ([]models.CargoPricePayment, int64, error) {
	query := r.db.Model(&models.CargoPricePayment{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreateUserID > 0 {
		query = query.Where("create_user_id = ?", filter.CreateUserID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.CargoPricePayment
	if err := applyPagination(query.Preload("CreateUser").Order("id DESC"), filter.Page, filter.PageSize).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Create 创建转款单
func (r *GormCargoPricePaymentRepository) Create(payment *models.CargoPricePayment) error {
	return r.db.Omit("Waybills").Create(payment).Error
}

// Update 更新转款单
func (r *GormCargoPricePaymentRepository) Update(payment *models.CargoPricePayment) error {
	return r.db.Omit("Waybills").Save(payment).Error
}

// Delete 删除转款单
func (r *GormCargoPricePaymentRepository) Delete(payment *models.CargoPricePayment) error {
	return r.db.Delete(payment).Error
}
