package repository

import (
	"errors"
	"time"

	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WaybillListFilter 运单列表筛选条件
type WaybillListFilter struct {
	Page                int
	PageSize            int
	Status              *int
	FeeType             *int
	SrcDepartmentID     uint
	DstDepartmentID     uint
	SrcCustomerID       uint
	DstCustomerID       uint
	CargoPricePaymentID uint
	CreatedFrom         *time.Time
	CreatedTo           *time.Time
}

// WaybillRepository 运单数据访问接口
type WaybillRepository interface {
	GetByID(id uint) (*models.Waybill, error)
	GetByIDForUpdate(id uint) (*models.Waybill, error)
	ListByIDs(ids []uint) ([]models.Waybill, error)
	ListByIDsForUpdate(ids []uint) ([]models.Waybill, error)
	ListByCargoPricePaymentID(paymentID uint) ([]models.Waybill, error)
	ListDispatchedNowByDeptAndDate(deptID uint, dayStart, dayEnd time.Time) ([]models.Waybill, error)
	ListSignedForByDeptAndDate(deptID uint, dayStart, dayEnd time.Time) ([]models.Waybill, error)
	List(filter WaybillListFilter) ([]models.Waybill, int64, error)
	Create(waybill *models.Waybill) error
	Update(waybill *models.Waybill) error
	UpdateFields(id uint, updates map[string]interface{}) error
	UpdateFieldsBulk(ids []uint, updates map[string]interface{}) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) WaybillRepository
}

// GormWaybillRepository GORM 实现
type GormWaybillRepository struct {
	db *gorm.DB
}

// NewWaybillRepository 创建运单仓库
func NewWaybillRepository(db *gorm.DB) *GormWaybillRepository {
	return &GormWaybillRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWaybillRepository) WithTx(tx *gorm.DB) WaybillRepository {
	if tx == nil {
		return r
	}
	return &GormWaybillRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormWaybillRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取运单（含部门与客户）
func (r *GormWaybillRepository) GetByID(id uint) (*models.Waybill, error) {
	if id == 0 {
		return nil, nil
	}
	var waybill models.Waybill
	if err := r.db.Preload("SrcDepartment").Preload("DstDepartment").
		Preload("SrcCustomer").Preload("DstCustomer").
		First(&waybill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &waybill, nil
}

// GetByIDForUpdate 按ID加锁获取运单，状态流转的读改写都走这里
func (r *GormWaybillRepository) GetByIDForUpdate(id uint) (*models.Waybill, error) {
	if id == 0 {
		return nil, nil
	}
	var waybill models.Waybill
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&waybill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &waybill, nil
}

// ListByIDs 批量获取运单
func (r *GormWaybillRepository) ListByIDs(ids []uint) ([]models.Waybill, error) {
	if len(ids) == 0 {
		return []models.Waybill{}, nil
	}
	var waybills []models.Waybill
	if err := r.db.Where("id IN ?", ids).Find(&waybills).Error; err != nil {
		return nil, err
	}
	return waybills, nil
}

// ListByIDsForUpdate 批量加锁获取运单，用于整批状态变更
func (r *GormWaybillRepository) ListByIDsForUpdate(ids []uint) ([]models.Waybill, error) {
	if len(ids) == 0 {
		return []models.Waybill{}, nil
	}
	var waybills []models.Waybill
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").Find(&waybills).Error; err != nil {
		return nil, err
	}
	return waybills, nil
}

// ListByCargoPricePaymentID 获取挂在指定代收转款单下的运单
func (r *GormWaybillRepository) ListByCargoPricePaymentID(paymentID uint) ([]models.Waybill, error) {
	var waybills []models.Waybill
	if err := r.db.Where("cargo_price_payment_id = ?", paymentID).Order("id").Find(&waybills).Error; err != nil {
		return nil, err
	}
	return waybills, nil
}

// ListDispatchedNowByDeptAndDate 获取指定部门某日发车车次上的现付运单
// 部门结算单成员派生规则的第一半
func (r *GormWaybillRepository) ListDispatchedNowByDeptAndDate(deptID uint, dayStart, dayEnd time.Time) ([]models.Waybill, error) {
	var waybills []models.Waybill
	err := r.db.
		Joins("JOIN transport_out_waybills ON transport_out_waybills.waybill_id = waybills.id").
		Joins("JOIN transport_outs ON transport_outs.id = transport_out_waybills.transport_out_id").
		Where("transport_outs.src_department_id = ?", deptID).
		Where("transport_outs.start_time >= ? AND transport_outs.start_time < ?", dayStart, dayEnd).
		Where("waybills.fee_type = ?", constants.FeeTypeNow).
		Order("waybills.id").
		Find(&waybills).Error
	if err != nil {
		return nil, err
	}
	return waybills, nil
}

// ListSignedForByDeptAndDate 获取指定部门某日签收的运单
// 部门结算单成员派生规则的第二半
func (r *GormWaybillRepository) ListSignedForByDeptAndDate(deptID uint, dayStart, dayEnd time.Time) ([]models.Waybill, error) {
	var waybills []models.Waybill
	err := r.db.
		Where("dst_department_id = ?", deptID).
		Where("sign_for_time >= ? AND sign_for_time < ?", dayStart, dayEnd).
		Order("id").
		Find(&waybills).Error
	if err != nil {
		return nil, err
	}
	return waybills, nil
}

// List 分页查询运单
func (r *GormWaybillRepository) List(filter WaybillListFilter) ([]models.Waybill, int64, error) {
	query := r.db.Model(&models.Waybill{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FeeType != nil {
		query = query.Where("fee_type = ?", *filter.FeeType)
	}
	if filter.SrcDepartmentID > 0 {
		query = query.Where("src_department_id = ?", filter.SrcDepartmentID)
	}
	if filter.DstDepartmentID > 0 {
		query = query.Where("dst_department_id = ?", filter.DstDepartmentID)
	}
	if filter.SrcCustomerID > 0 {
		query = query.Where("src_customer_id = ?", filter.SrcCustomerID)
	}
	if filter.DstCustomerID > 0 {
		query = query.Where("dst_customer_id = ?", filter.DstCustomerID)
	}
	if filter.CargoPricePaymentID > 0 {
		query = query.Where("cargo_price_payment_id = ?", filter.CargoPricePaymentID)
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

	var waybills []models.Waybill
	if err := applyPagination(query.Preload("SrcDepartment").Preload("DstDepartment").Order("id DESC"), filter.Page, filter.PageSize).Find(&waybills).Error; err != nil {
		return nil, 0, err
	}
	return waybills, total, nil
}

// Create 创建运单
func (r *GormWaybillRepository) Create(waybill *models.Waybill) error {
	return r.db.Create(waybill).Error
}

// Update 更新运单
func (r *GormWaybillRepository) Update(waybill *models.Waybill) error {
	return r.db.Save(waybill).Error
}

// UpdateFields 更新运单指定字段
func (r *GormWaybillRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Waybill{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateFieldsBulk 批量更新运单指定字段
func (r *GormWaybillRepository) UpdateFieldsBulk(ids []uint, updates map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Waybill{}).Where("id IN ?", ids).Updates(updates).Error
}
