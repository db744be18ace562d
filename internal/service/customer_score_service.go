package service

import (
	"gorm.io/gorm"

	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// CustomerScoreService 客户积分服务
// 余额与流水同事务更新，客户积分余额必须等于其全部流水的有符号和
type CustomerScoreService struct {
	customerRepo repository.CustomerRepository
	scoreLogRepo repository.CustomerScoreLogRepository
}

// NewCustomerScoreService 创建积分服务
func NewCustomerScoreService(
	customerRepo repository.CustomerRepository,
	scoreLogRepo repository.CustomerScoreLogRepository,
) *CustomerScoreService {
	return &CustomerScoreService{
		customerRepo: customerRepo,
		scoreLogRepo: scoreLogRepo,
	}
}

// Adjust 人工调整积分，仅启用状态的 VIP 客户可调整，扣减不允许透支
func (s *CustomerScoreService) Adjust(actor Actor, customerID uint, increase bool, score int, reason string) (*models.Customer, error) {
	if score < 1 || reason == "" {
		return nil, ErrScoreInvalid
	}
	var customer *models.Customer
	err := s.customerRepo.Transaction(func(tx *gorm.DB) error {
		txCustomers := s.customerRepo.WithTx(tx)
		var err error
		customer, err = txCustomers.GetByIDForUpdate(customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return ErrCustomerNotFound
		}
		if !customer.Enabled {
			return ErrCustomerDisabled
		}
		if !customer.IsVIP {
			return ErrCustomerNotVIP
		}
		if increase {
			customer.Score += score
		} else {
			if customer.Score < score {
				return ErrScoreInsufficient
			}
			customer.Score -= score
		}
		if err := txCustomers.Update(customer); err != nil {
			return err
		}
		return s.scoreLogRepo.WithTx(tx).Create(&models.CustomerScoreLog{
			CustomerID:      customer.ID,
			Increase:        increase,
			Score:           score,
			Reason:          reason,
			OperationUserID: actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("customer_score_adjusted",
		"customer_id", customerID,
		"increase", increase,
		"score", score,
		"user_id", actor.UserID,
	)
	return customer, nil
}

// Logs 分页查询积分流水
func (s *CustomerScoreService) Logs(filter repository.CustomerScoreLogListFilter) ([]models.CustomerScoreLog, int64, error) {
	return s.scoreLogRepo.List(filter)
}

// Balance 按流水核算客户积分余额
func (s *CustomerScoreService) Balance(customerID uint) (int64, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, ErrCustomerNotFound
	}
	return s.scoreLogRepo.SumByCustomerID(customerID)
}
