package repository

import (
	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// CustomerScoreLogListFilter 积分流水列表筛选条件
type CustomerScoreLogListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
}

// CustomerScoreLogRepository 客户积分流水数据访问接口
// 流水仅追加，不提供更新与删除
type CustomerScoreLogRepository interface {
	Create(log *models.CustomerScoreLog) error
	CreateBatch(logs []models.CustomerScoreLog) error
	ExistsByWaybillID(waybillID uint) (bool, error)
	List(filter CustomerScoreLogListFilter) ([]models.CustomerScoreLog, int64, error)
	SumByCustomerID(customerID uint) (int64, error)
	WithTx(tx *gorm.DB) CustomerScoreLogRepository
}

// GormCustomerScoreLogRepository GORM 实现
type GormCustomerScoreLogRepository struct {
	db *gorm.DB
}

// NewCustomerScoreLogRepository 创建积分流水仓库
func NewCustomerScoreLogRepository(db *gorm.DB) *GormCustomerScoreLogRepository {
	return &GormCustomerScoreLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerScoreLogRepository) WithTx(tx *gorm.DB) CustomerScoreLogRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerScoreLogRepository{db: tx}
}

// Create 追加一条积分流水
func (r *GormCustomerScoreLogRepository) Create(log *models.CustomerScoreLog) error {
	return r.db.Create(log).Error
}

// CreateBatch 批量追加积分流水
func (r *GormCustomerScoreLogRepository) CreateBatch(logs []models.CustomerScoreLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.Create(&logs).Error
}

// ExistsByWaybillID 检查运单是否已产生过积分流水
func (r *GormCustomerScoreLogRepository) ExistsByWaybillID(waybillID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.CustomerScoreLog{}).Where("waybill_id = ?", waybillID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 分页查询积分流水
func (r *GormCustomerScoreLogRepository) List(filter CustomerScoreLogListFilter) ([]models.CustomerScoreLog, int64, error) {
	query := r.db.Model(&models.CustomerScoreLog{})
	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.CustomerScoreLog
	if err := applyPagination(query.Preload("Customer").Preload("OperationUser").Order("id DESC"), filter.Page, filter.PageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// SumByCustomerID 计算客户流水的有符号和，用于校验余额一致性
func (r *GormCustomerScoreLogRepository) SumByCustomerID(customerID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.CustomerScoreLog{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(CASE WHEN increase THEN score ELSE -score END), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
