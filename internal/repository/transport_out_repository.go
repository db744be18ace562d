package repository

import (
	"errors"
	"time"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransportOutListFilter 车次列表筛选条件
type TransportOutListFilter struct {
	Page            int
	PageSize        int
	Status          *int
	SrcDepartmentID uint
	DstDepartmentID uint
	TruckID         uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// TransportOutRepository 车次数据访问接口
type TransportOutRepository interface {
	GetByID(id uint) (*models.TransportOut, error)
	GetByIDForUpdate(id uint) (*models.TransportOut, error)
	ListWaybillIDs(transportOutID uint) ([]uint, error)
	List(filter TransportOutListFilter) ([]models.TransportOut, int64, error)
	Create(transportOut *models.TransportOut) error
	Update(transportOut *models.TransportOut) error
	Delete(transportOut *models.TransportOut) error
	ReplaceWaybills(transportOut *models.TransportOut, waybills []models.Waybill) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) TransportOutRepository
}

// GormTransportOutRepository GORM 实现
type GormTransportOutRepository struct {
	db *gorm.DB
}

// NewTransportOutRepository 创建车次仓库
func NewTransportOutRepository(db *gorm.DB) *GormTransportOutRepository {
	return &GormTransportOutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransportOutRepository) WithTx(tx *gorm.DB) TransportOutRepository {
	if tx == nil {
		return r
	}
	return &GormTransportOutRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormTransportOutRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取车次（含车辆、部门与运单）
func (r *GormTransportOutRepository) GetByID(id uint) (*models.TransportOut, error) {
	if id == 0 {
		return nil, nil
	}
	var transportOut models.TransportOut
	if err := r.db.Preload("Truck").Preload("SrcDepartment").Preload("DstDepartment").
		Preload("Waybills").First(&transportOut, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transportOut, nil
}

// GetByIDForUpdate 按ID加锁获取车次
func (r *GormTransportOutRepository) GetByIDForUpdate(id uint) (*models.TransportOut, error) {
	if id == 0 {
		return nil, nil
	}
	var transportOut models.TransportOut
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&transportOut, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transportOut, nil
}

// ListWaybillIDs 获取车次装载的运单ID集合
func (r *GormTransportOutRepository) ListWaybillIDs(transportOutID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Table("transport_out_waybills").
		Where("transport_out_id = ?", transportOutID).
		Order("waybill_id").
		Pluck("waybill_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// List 分页查询车次
func (r *GormTransportOutRepository) List(filter TransportOutListFilter) ([]models.TransportOut, int64, error) {
	query := r.db.Model(&models.TransportOut{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SrcDepartmentID > 0 {
		query = query.Where("src_department_id = ?", filter.SrcDepartmentID)
	}
	if filter.DstDepartmentID > 0 {
		query = query.Where("dst_department_id = ?", filter.DstDepartmentID)
	}
	if filter.TruckID > 0 {
		query = query.Where("truck_id = ?", filter.TruckID)
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

	var transportOuts []models.TransportOut
	if err := applyPagination(query.Preload("Truck").Preload("SrcDepartment").Preload("DstDepartment").Order("id DESC"), filter.Page, filter.PageSize).Find(&transportOuts).Error; err != nil {
		return nil, 0, err
	}
	return transportOuts, total, nil
}

// Create 创建车次（连同运单关联）
func (r *GormTransportOutRepository) Create(transportOut *models.TransportOut) error {
	return r.db.Create(transportOut).Error
}

// Update 更新车次
func (r *GormTransportOutRepository) Update(transportOut *models.TransportOut) error {
	return r.db.Omit("Waybills").Save(transportOut).Error
}

// Delete 删除车次（连同运单关联）
func (r *GormTransportOutRepository) Delete(transportOut *models.TransportOut) error {
	if err := r.db.Model(transportOut).Association("Waybills").Clear(); err != nil {
		return err
	}
	return r.db.Delete(transportOut).Error
}

// ReplaceWaybills 整体替换车次的运单集合
func (r *GormTransportOutRepository) ReplaceWaybills(transportOut *models.TransportOut, waybills []models.Waybill) error {
	return r.db.Model(transportOut).Association("Waybills").Replace(waybills)
}
