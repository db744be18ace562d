package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// DepartmentPaymentService 部门结算单服务
// 流转：已创建 → 已审核 → 已付款 → 已核对；成员运单按结算规则派生
type DepartmentPaymentService struct {
	paymentRepo  repository.DepartmentPaymentRepository
	waybillRepo  repository.WaybillRepository
	customerRepo repository.CustomerRepository
	scoreLogRepo repository.CustomerScoreLogRepository
	settingSvc   *SettingService
}

// NewDepartmentPaymentService 创建部门结算单服务
func NewDepartmentPaymentService(
	paymentRepo repository.DepartmentPaymentRepository,
	waybillRepo repository.WaybillRepository,
	customerRepo repository.CustomerRepository,
	scoreLogRepo repository.CustomerScoreLogRepository,
	settingSvc *SettingService,
) *DepartmentPaymentService {
	return &DepartmentPaymentService{
		paymentRepo:  paymentRepo,
		waybillRepo:  waybillRepo,
		customerRepo: customerRepo,
		scoreLogRepo: scoreLogRepo,
		settingSvc:   settingSvc,
	}
}

// dayRange 返回自然日 [当日零点, 次日零点)
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// deriveMembers 派生某部门某结算日的成员运单：
// 当日现付发车的运单 ∪ 当日在该部门签收的运单
func (s *DepartmentPaymentService) deriveMembers(tx *gorm.DB, departmentID uint, date time.Time) ([]models.Waybill, error) {
	dayStart, dayEnd := dayRange(date)
	txWaybills := s.waybillRepo.WithTx(tx)

	dispatched, err := txWaybills.ListDispatchedNowByDeptAndDate(departmentID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	signedFor, err := txWaybills.ListSignedForByDeptAndDate(departmentID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(dispatched)+len(signedFor))
	members := make([]models.Waybill, 0, len(dispatched)+len(signedFor))
	for _, list := range [][]models.Waybill{dispatched, signedFor} {
		for i := range list {
			if seen[list[i].ID] {
				continue
			}
			seen[list[i].ID] = true
			members = append(members, list[i])
		}
	}
	return members, nil
}

// DepartmentPaymentTotals 结算单三项金额
type DepartmentPaymentTotals struct {
	FeeNow     models.Money `json:"fee_now"`      // 当日现付运费合计
	FeeSignFor models.Money `json:"fee_sign_for"` // 当日提付运费合计
	CargoPrice models.Money `json:"cargo_price"`  // 当日签收代收货款合计
	Total      models.Money `json:"total"`        // 三项之和
}

// Totals 按成员运单汇总结算金额
func (s *DepartmentPaymentService) Totals(payment *models.DepartmentPayment, members []models.Waybill) DepartmentPaymentTotals {
	feeNow := models.NewMoneyFromInt(0).Decimal
	feeSignFor := models.NewMoneyFromInt(0).Decimal
	cargoPrice := models.NewMoneyFromInt(0).Decimal
	for i := range members {
		w := &members[i]
		if w.FeeType == constants.FeeTypeNow && w.SrcDepartmentID == payment.SrcDepartmentID {
			feeNow = feeNow.Add(w.Fee.Decimal)
		}
		if w.DstDepartmentID == payment.SrcDepartmentID {
			if w.FeeType == constants.FeeTypeSignFor {
				feeSignFor = feeSignFor.Add(w.Fee.Decimal)
			}
			cargoPrice = cargoPrice.Add(w.CargoPrice.Decimal)
		}
	}
	return DepartmentPaymentTotals{
		FeeNow:     models.NewMoneyFromDecimal(feeNow),
		FeeSignFor: models.NewMoneyFromDecimal(feeSignFor),
		CargoPrice: models.NewMoneyFromDecimal(cargoPrice),
		Total:      models.NewMoneyFromDecimal(feeNow.Add(feeSignFor).Add(cargoPrice)),
	}
}

// Add 创建结算单：结算日期必须早于今天，同部门同日期只允许一张
// 收款部门为操作者所属部门
func (s *DepartmentPaymentService) Add(actor Actor, srcDepartmentID uint, paymentDate time.Time) (*models.DepartmentPayment, error) {
	todayStart, _ := dayRange(time.Now())
	dateStart, dateEnd := dayRange(paymentDate)
	if !dateStart.Before(todayStart) {
		return nil, ErrDepartmentPaymentDateInvalid
	}

	payment := &models.DepartmentPayment{
		PaymentDate:     dateStart,
		SrcDepartmentID: srcDepartmentID,
		DstDepartmentID: actor.DepartmentID,
		Status:          constants.DepartmentPaymentStatusCreated,
	}
	err := s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		txPayments := s.paymentRepo.WithTx(tx)
		exists, err := txPayments.ExistsBySrcAndDate(srcDepartmentID, dateStart, dateEnd)
		if err != nil {
			return err
		}
		if exists {
			return ErrDepartmentPaymentDuplicate
		}
		members, err := s.deriveMembers(tx, srcDepartmentID, paymentDate)
		if err != nil {
			return err
		}
		payment.Waybills = members
		return txPayments.Create(payment)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("department_payment_created",
		"payment_id", payment.ID,
		"src_department_id", srcDepartmentID,
		"payment_date", dateStart.Format("2006-01-02"),
		"waybill_count", len(payment.Waybills),
		"user_id", actor.UserID,
	)
	return payment, nil
}

// Delete 删除结算单，仅「已创建」状态可删
func (s *DepartmentPaymentService) Delete(actor Actor, id uint) error {
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		txPayments := s.paymentRepo.WithTx(tx)
		payment, err := txPayments.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrDepartmentPaymentNotFound
		}
		if payment.Status != constants.DepartmentPaymentStatusCreated {
			return ErrDepartmentPaymentStatusInvalid
		}
		return txPayments.Delete(payment)
	})
}

// advance 状态前移一步，guard 在状态校验通过后执行
func (s *DepartmentPaymentService) advance(id uint, from, to int, guard func(*models.DepartmentPayment) error) error {
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		txPayments := s.paymentRepo.WithTx(tx)
		payment, err := txPayments.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrDepartmentPaymentNotFound
		}
		if payment.Status != from {
			return ErrDepartmentPaymentStatusInvalid
		}
		if guard != nil {
			if err := guard(payment); err != nil {
				return err
			}
		}
		payment.Status = to
		return txPayments.Update(payment)
	})
}

// Review 审核：已创建 → 已审核
func (s *DepartmentPaymentService) Review(actor Actor, id uint) error {
	return s.advance(id, constants.DepartmentPaymentStatusCreated, constants.DepartmentPaymentStatusReviewed, nil)
}

// Pay 付款：已审核 → 已付款，仅付款方（收货部门视角的 src 部门）可操作
func (s *DepartmentPaymentService) Pay(actor Actor, id uint) error {
	return s.advance(id, constants.DepartmentPaymentStatusReviewed, constants.DepartmentPaymentStatusPaid, func(payment *models.DepartmentPayment) error {
		if !actor.IsAdministrator && payment.SrcDepartmentID != actor.DepartmentID {
			return ErrPermissionDenied
		}
		return nil
	})
}

// Settle 核对：已付款 → 已核对，同事务内为 VIP 发货客户发放积分
// 积分按客户合并入账，每张运单至多产生一条积分流水
func (s *DepartmentPaymentService) Settle(actor Actor, id uint) error {
	setting, err := s.settingSvc.Get()
	if err != nil {
		return err
	}
	err = s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		txPayments := s.paymentRepo.WithTx(tx)
		payment, err := txPayments.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrDepartmentPaymentNotFound
		}
		if payment.Status != constants.DepartmentPaymentStatusPaid {
			return ErrDepartmentPaymentStatusInvalid
		}

		members, err := txPayments.ListWaybills(payment.ID)
		if err != nil {
			return err
		}

		txScoreLogs := s.scoreLogRepo.WithTx(tx)
		txCustomers := s.customerRepo.WithTx(tx)
		type issuance struct {
			total int
			logs  []models.CustomerScoreLog
		}
		perCustomer := make(map[uint]*issuance)

		for i := range members {
			w := &members[i]
			if w.SrcCustomerID == nil {
				continue
			}
			// 结算方向与运费支付方向一致才计分
			if w.FeeType == constants.FeeTypeNow {
				if w.SrcDepartmentID != payment.SrcDepartmentID {
					continue
				}
			} else if w.DstDepartmentID != payment.SrcDepartmentID {
				continue
			}
			delta := CalcScoreDelta(w.Fee, setting.CustomerScoreRatio)
			if delta < 1 {
				continue
			}
			exists, err := txScoreLogs.ExistsByWaybillID(w.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			customer, err := txCustomers.GetByID(*w.SrcCustomerID)
			if err != nil {
				return err
			}
			if customer == nil || !customer.IsVIP {
				continue
			}
			entry := perCustomer[customer.ID]
			if entry == nil {
				entry = &issuance{}
				perCustomer[customer.ID] = entry
			}
			waybillID := w.ID
			entry.total += delta
			entry.logs = append(entry.logs, models.CustomerScoreLog{
				CustomerID:      customer.ID,
				Increase:        true,
				Score:           delta,
				Reason:          "结算单 " + payment.FullID() + " 核对完成，运单 " + w.FullID() + " 发放积分",
				WaybillID:       &waybillID,
				OperationUserID: actor.UserID,
			})
		}

		for customerID, entry := range perCustomer {
			customer, err := txCustomers.GetByIDForUpdate(customerID)
			if err != nil {
				return err
			}
			if customer == nil {
				continue
			}
			customer.Score += entry.total
			if err := txCustomers.Update(customer); err != nil {
				return err
			}
			if err := txScoreLogs.CreateBatch(entry.logs); err != nil {
				return err
			}
		}

		now := time.Now()
		payment.Status = constants.DepartmentPaymentStatusSettled
		payment.SettleTime = &now
		return txPayments.Update(payment)
	})
	if err != nil {
		return err
	}
	logger.Infow("department_payment_settled", "payment_id", id, "user_id", actor.UserID)
	return nil
}

// UpdateRemark 更新备注，付款方与收款方各自维护本方备注
func (s *DepartmentPaymentService) UpdateRemark(actor Actor, id uint, remark string) error {
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		txPayments := s.paymentRepo.WithTx(tx)
		payment, err := txPayments.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrDepartmentPaymentNotFound
		}
		switch actor.DepartmentID {
		case payment.SrcDepartmentID:
			payment.SrcRemark = remark
		case payment.DstDepartmentID:
			payment.DstRemark = remark
		default:
			if !actor.IsAdministrator {
				return ErrPermissionDenied
			}
			payment.DstRemark = remark
		}
		return txPayments.Update(payment)
	})
}

// Get 获取结算单详情
func (s *DepartmentPaymentService) Get(id uint) (*models.DepartmentPayment, error) {
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrDepartmentPaymentNotFound
	}
	return payment, nil
}

// List 分页查询结算单
func (s *DepartmentPaymentService) List(filter repository.DepartmentPaymentListFilter) ([]models.DepartmentPayment, int64, error) {
	return s.paymentRepo.List(filter)
}
