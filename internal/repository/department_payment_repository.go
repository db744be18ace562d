package repository

import (
	"errors"
	"time"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepartmentPaymentListFilter 部门结算单列表筛选条件
type DepartmentPaymentListFilter struct {
	Page            int
	PageSize        int
	Status          *int
	SrcDepartmentID uint
	DstDepartmentID uint
	DateFrom        *time.Time
	DateTo          *time.Time
}

// DepartmentPaymentRepository 部门结算单数据访问接口
type DepartmentPaymentRepository interface {
	GetByID(id uint) (*models.DepartmentPayment, error)
	GetByIDForUpdate(id uint) (*models.DepartmentPayment, error)
	ExistsBySrcAndDate(srcDepartmentID uint, dayStart, dayEnd time.Time) (bool, error)
	List(filter DepartmentPaymentListFilter) ([]models.DepartmentPayment, int64, error)
	Create(payment *models.DepartmentPayment) error
	Update(payment *models.DepartmentPayment) error
	Delete(payment *models.DepartmentPayment) error
	ListWaybills(paymentID uint) ([]models.Waybill, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) DepartmentPaymentRepository
}

// GormDepartmentPaymentRepository GORM 实现
type GormDepartmentPaymentRepository struct {
	db *gorm.DB
}

// NewDepartmentPaymentRepository 创建部门结算单仓库
func NewDepartmentPaymentRepository(db *gorm.DB) *GormDepartmentPaymentRepository {
	return &GormDepartmentPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDepartmentPaymentRepository) WithTx(tx *gorm.DB) DepartmentPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormDepartmentPaymentRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormDepartmentPaymentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取结算单（含部门与运单）
func (r *GormDepartmentPaymentRepository) GetByID(id uint) (*models.DepartmentPayment, error) {
	if id == 0 {
		return nil, nil
	}
	var payment models.DepartmentPayment
	if err := r.db.Preload("SrcDepartment").Preload("DstDepartment").Preload("Waybills").
		First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByIDForUpdate 按ID加锁获取结算单
func (r *GormDepartmentPaymentRepository) GetByIDForUpdate(id uint) (*models.DepartmentPayment, error) {
	if id == 0 {
		return nil, nil
	}
	var payment models.DepartmentPayment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// ExistsBySrcAndDate 检查 (付款部门, 结算日期) 是否已存在结算单
// 唯一性由应用层在创建前检查，不依赖数据库约束
func (r *GormDepartmentPaymentRepository) ExistsBySrcAndDate(srcDepartmentID uint, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.DepartmentPayment{}).
		Where("src_department_id = ?", srcDepartmentID).
		Where("payment_date >= ? AND payment_date < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 分页查询结算单
func (r *GormDepartmentPaymentRepository) List(filter DepartmentPaymentListFilter) ([]models.DepartmentPayment, int64, error) {
	query := r.db.Model(&models.DepartmentPayment{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SrcDepartmentID > 0 {
		query = query.Where("src_department_id = ?", filter.SrcDepartmentID)
	}
	if filter.DstDepartmentID > 0 {
		query = query.Where("dst_department_id = ?", filter.DstDepartmentID)
	}
	if filter.DateFrom != nil {
		query = query.Where("payment_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("payment_date < ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.DepartmentPayment
	if err := applyPagination(query.Preload("SrcDepartment").Preload("DstDepartment").Order("id DESC"), filter.Page, filter.PageSize).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Create 创建结算单（连同派生的运单关联）
func (r *GormDepartmentPaymentRepository) Create(payment *models.DepartmentPayment) error {
	return r.db.Create(payment).Error
}

// Update 更新结算单
func (r *GormDepartmentPaymentRepository) Update(payment *models.DepartmentPayment) error {
	return r.db.Omit("Waybills").Save(payment).Error
}

// Delete 删除结算单（连同运单关联）
func (r *GormDepartmentPaymentRepository) Delete(payment *models.DepartmentPayment) error {
	if err := r.db.Model(payment).Association("Waybills").Clear(); err != nil {
		return err
	}
	return r.db.Delete(payment).Error
}

// ListWaybills 获取结算单的成员运单
func (r *GormDepartmentPaymentRepository) ListWaybills(paymentID uint) ([]models.Waybill, error) {
	var waybills []models.Waybill
	err := r.db.
		Joins("JOIN department_payment_waybills ON department_payment_waybills.waybill_id = waybills.id").
		Where("department_payment_waybills.department_payment_id = ?", paymentID).
		Order("waybills.id").
		Find(&waybills).Error
	if err != nil {
		return nil, err
	}
	return waybills, nil
}
