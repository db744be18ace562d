package repository

import (
	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// WaybillRoutingRepository 运单流转记录数据访问接口
// 只有 Create 与查询：流转账仅追加，永不更新或删除
type WaybillRoutingRepository interface {
	Create(routing *models.WaybillRouting) error
	CreateBatch(routings []models.WaybillRouting) error
	ListByWaybillID(waybillID uint) ([]models.WaybillRouting, error)
	WithTx(tx *gorm.DB) WaybillRoutingRepository
}

// GormWaybillRoutingRepository GORM 实现
type GormWaybillRoutingRepository struct {
	db *gorm.DB
}

// NewWaybillRoutingRepository 创建流转记录仓库
func NewWaybillRoutingRepository(db *gorm.DB) *GormWaybillRoutingRepository {
	return &GormWaybillRoutingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWaybillRoutingRepository) WithTx(tx *gorm.DB) WaybillRoutingRepository {
	if tx == nil {
		return r
	}
	return &GormWaybillRoutingRepository{db: tx}
}

// Create 追加一条流转记录
func (r *GormWaybillRoutingRepository) Create(routing *models.WaybillRouting) error {
	return r.db.Create(routing).Error
}

// CreateBatch 批量追加流转记录
func (r *GormWaybillRoutingRepository) CreateBatch(routings []models.WaybillRouting) error {
	if len(routings) == 0 {
		return nil
	}
	return r.db.Create(&routings).Error
}

// ListByWaybillID 获取运单的全部流转记录（按时间正序）
func (r *GormWaybillRoutingRepository) ListByWaybillID(waybillID uint) ([]models.WaybillRouting, error) {
	var routings []models.WaybillRouting
	if err := r.db.Preload("OperationDept").Preload("OperationUser").
		Where("waybill_id = ?", waybillID).Order("id").Find(&routings).Error; err != nil {
		return nil, err
	}
	return routings, nil
}
