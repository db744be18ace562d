package service

import (
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// TruckService 车辆档案服务
type TruckService struct {
	truckRepo repository.TruckRepository
}

// NewTruckService 创建车辆服务
func NewTruckService(truckRepo repository.TruckRepository) *TruckService {
	return &TruckService{truckRepo: truckRepo}
}

// TruckInput 车辆创建/编辑入参
type TruckInput struct {
	PlateNumber string `json:"plate_number"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
	Enabled     bool   `json:"enabled"`
}

func (s *TruckService) checkPlate(plateNumber string, excludeID uint) error {
	existing, err := s.truckRepo.GetByPlateNumber(plateNumber)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrTruckPlateTaken
	}
	return nil
}

// Create 登记车辆
func (s *TruckService) Create(input TruckInput) (*models.Truck, error) {
	if input.PlateNumber == "" || input.DriverName == "" || input.DriverPhone == "" {
		return nil, ErrTruckInvalidField
	}
	if err := s.checkPlate(input.PlateNumber, 0); err != nil {
		return nil, err
	}
	truck := &models.Truck{
		PlateNumber: input.PlateNumber,
		DriverName:  input.DriverName,
		DriverPhone: input.DriverPhone,
		Enabled:     input.Enabled,
	}
	if err := s.truckRepo.Create(truck); err != nil {
		return nil, err
	}
	return truck, nil
}

// Update 编辑车辆，已有车次上的司机快照不受影响
func (s *TruckService) Update(id uint, input TruckInput) (*models.Truck, error) {
	truck, err := s.truckRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if truck == nil {
		return nil, ErrTruckNotFound
	}
	if err := s.checkPlate(input.PlateNumber, id); err != nil {
		return nil, err
	}
	truck.PlateNumber = input.PlateNumber
	truck.DriverName = input.DriverName
	truck.DriverPhone = input.DriverPhone
	truck.Enabled = input.Enabled
	if err := s.truckRepo.Update(truck); err != nil {
		return nil, err
	}
	return truck, nil
}

// Get 获取车辆详情
func (s *TruckService) Get(id uint) (*models.Truck, error) {
	truck, err := s.truckRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if truck == nil {
		return nil, ErrTruckNotFound
	}
	return truck, nil
}

// List 分页查询车辆
func (s *TruckService) List(filter repository.TruckListFilter) ([]models.Truck, int64, error) {
	return s.truckRepo.List(filter)
}
