package repository

import (
	"errors"

	"github.com/wuliu-next/internal/models"

	"gorm.io/gorm"
)

// TruckListFilter 车辆列表筛选条件
type TruckListFilter struct {
	Page        int
	PageSize    int
	PlateNumber string
	EnabledOnly bool
}

// TruckRepository 车辆数据访问接口
type TruckRepository interface {
	GetByID(id uint) (*models.Truck, error)
	GetByPlateNumber(plateNumber string) (*models.Truck, error)
	List(filter TruckListFilter) ([]models.Truck, int64, error)
	Create(truck *models.Truck) error
	Update(truck *models.Truck) error
}

// GormTruckRepository GORM 实现
type GormTruckRepository struct {
	db *gorm.DB
}

// NewTruckRepository 创建车辆仓库
func NewTruckRepository(db *gorm.DB) *GormTruckRepository {
	return &GormTruckRepository{db: db}
}

// GetByID 按ID获取车辆
func (r *GormTruckRepository) GetByID(id uint) (*models.Truck, error) {
	if id == 0 {
		return nil, nil
	}
	var truck models.Truck
	if err := r.db.First(&truck, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &truck, nil
}

// GetByPlateNumber 按车牌号获取车辆
func (r *GormTruckRepository) GetByPlateNumber(plateNumber string) (*models.Truck, error) {
	var truck models.Truck
	if err := r.db.Where("plate_number = ?", plateNumber).First(&truck).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &truck, nil
}

// List 分页查询车辆
func (r *GormTruckRepository) List(filter TruckListFilter) ([]models.Truck, int64, error) {
	query := r.db.Model(&models.Truck{})
	if filter.PlateNumber != "" {
		query = query.Where("plate_number LIKE ?", "%"+filter.PlateNumber+"%")
	}
	if filter.EnabledOnly {
		query = query.Where("enabled = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trucks []models.Truck
	if err := applyPagination(query.Order("id"), filter.Page, filter.PageSize).Find(&trucks).Error; err != nil {
		return nil, 0, err
	}
	return trucks, total, nil
}

// Create 创建车辆
func (r *GormTruckRepository) Create(truck *models.Truck) error {
	return r.db.Create(truck).Error
}

// Update 更新车辆
func (r *GormTruckRepository) Update(truck *models.Truck) error {
	return r.db.Save(truck).Error
}
