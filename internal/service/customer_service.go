package service

import (
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// CustomerService 客户档案服务
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerInput 客户创建/编辑入参
type CustomerInput struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Enabled       bool   `json:"enabled"`
	BankName      string `json:"bank_name"`
	BankNumber    string `json:"bank_number"`
	CredentialNum string `json:"credential_num"`
	Address       string `json:"address"`
	IsVIP         bool   `json:"is_vip"`
}

// checkPhone 手机号全局唯一
func (s *CustomerService) checkPhone(phone string, excludeID uint) error {
	existing, err := s.customerRepo.GetByPhone(phone)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrCustomerPhoneTaken
	}
	return nil
}

// Create 创建客户
func (s *CustomerService) Create(input CustomerInput) (*models.Customer, error) {
	if input.Name == "" || input.Phone == "" {
		return nil, ErrCustomerInvalidField
	}
	if err := s.checkPhone(input.Phone, 0); err != nil {
		return nil, err
	}
	customer := &models.Customer{
		Name:          input.Name,
		Phone:         input.Phone,
		Enabled:       input.Enabled,
		BankName:      input.BankName,
		BankNumber:    input.BankNumber,
		CredentialNum: input.CredentialNum,
		Address:       input.Address,
		IsVIP:         input.IsVIP,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Update 编辑客户，积分余额不在此处修改
func (s *CustomerService) Update(id uint, input CustomerInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if err := s.checkPhone(input.Phone, id); err != nil {
		return nil, err
	}
	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Enabled = input.Enabled
	customer.BankName = input.BankName
	customer.BankNumber = input.BankNumber
	customer.CredentialNum = input.CredentialNum
	customer.Address = input.Address
	customer.IsVIP = input.IsVIP
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Get 获取客户详情
func (s *CustomerService) Get(id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// GetByPhone 按手机号精确查找客户，录单时快速带出档案
func (s *CustomerService) GetByPhone(phone string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// List 分页查询客户
func (s *CustomerService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}
