package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// CargoPricePaymentService 代收转款单服务
// 流转：已创建/已驳回 → 已提交 → 已审核 → 已转款；已提交可驳回
type CargoPricePaymentService struct {
	paymentRepo repository.CargoPricePaymentRepository
	waybillRepo repository.WaybillRepository
	settingSvc  *SettingService
}

// NewCargoPricePaymentService 创建代收转款单服务
func NewCargoPricePaymentService(
	paymentRepo repository.CargoPricePaymentRepository,
	waybillRepo repository.WaybillRepository,
	settingSvc *SettingService,
) *CargoPricePaymentService {
	return &CargoPricePaymentService{
		paymentRepo: paymentRepo,
		waybillRepo: waybillRepo,
		settingSvc:  settingSvc,
	}
}

// CargoPricePaymentInput 转款单创建/编辑入参
type CargoPricePaymentInput struct {
	PayeeName          string `json:"payee_name"`
	PayeePhone         string `json:"payee_phone"`
	PayeeBankName      string `json:"payee_bank_name"`
	PayeeBankNumber    string `json:"payee_bank_number"`
	PayeeCredentialNum string `json:"payee_credential_num"`
	Remark             string `json:"remark"`
	WaybillIDs         []uint `json:"waybill_ids"`
}

func (input CargoPricePaymentInput) validate() error {
	if input.PayeeName == "" || input.PayeePhone == "" ||
		input.PayeeBankName == "" || input.PayeeBankNumber == "" {
		return ErrCargoPricePaymentWaybill
	}
	if len(input.WaybillIDs) == 0 {
		return ErrCargoPricePaymentWaybill
	}
	return nil
}

// checkWaybills 校验待挂入运单：已签收、有代收货款、未挂入其他转款单
func checkWaybills(waybills []models.Waybill, paymentID uint) error {
	for i := range waybills {
		w := &waybills[i]
		if w.Status != constants.WaybillStatusSignedFor {
			return ErrCargoPricePaymentWaybill
		}
		if !w.CargoPrice.IsPositive() {
			return ErrCargoPricePaymentWaybill
		}
		if w.CargoPriceStatus == constants.CargoPriceStatusPaid {
			return ErrCargoPricePaymentWaybill
		}
		if w.CargoPricePaymentID != nil && *w.CargoPricePaymentID != paymentID {
			return ErrCargoPricePaymentWaybill
		}
	}
	return nil
}

// Add 创建转款单并挂入运单
func (s *CargoPricePaymentService) Add(actor Actor, input CargoPricePaymentInput) (*models.CargoPricePayment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	payment := &models.CargoPricePayment{
		CreateUserID:       actor.UserID,
		PayeeName:          input.PayeeName,
		PayeePhone:         input.PayeePhone,
		PayeeBankName:      input.PayeeBankName,
		PayeeBankNumber:    input.PayeeBankNumber,
		PayeeCredentialNum: input.PayeeCredentialNum,
		Remark:             input.Remark,
		Status:             constants.CargoPricePaymentStatusCreated,
	}
	err := s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		txWaybills := s.waybillRepo.WithTx(tx)
		waybills, err := txWaybills.ListByIDsForUpdate(input.WaybillIDs)
		if err != nil {
			return err
		}
		if len(waybills) != len(input.WaybillIDs) {
			return ErrWaybillNotFound
		}
		if err := checkWaybills(waybills, 0); err != nil {
			return err
		}
		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			return err
		}
		return txWaybills.UpdateFieldsBulk(input.WaybillIDs, map[string]interface{}{
			"cargo_price_payment_id": payment.ID,
			"cargo_price_status":     constants.CargoPriceStatusNotPaid,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("cargo_price_payment_created",
		"payment_id", payment.ID,
		"waybill_count", len(input.WaybillIDs),
		"user_id", actor.UserID,
	)
	return payment, nil
}

// getEditable 取出可由创建人编辑的转款单（已创建或已驳回）
func (s *CargoPricePaymentService) getEditable(tx *gorm.DB, actor Actor, id uint) (*models.CargoPricePayment, error) {
	payment, err := s.paymentRepo.WithTx(tx).GetByIDForUpdate(id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrCargoPricePaymentNotFound
	}
	if payment.Status != constants.CargoPricePaymentStatusCreated &&
		payment.Status != constants.CargoPricePaymentStatusRejected {
		return nil, ErrCargoPricePaymentStatusInvalid
	}
	if !actor.IsAdministrator && payment.CreateUserID != actor.UserID {
		return nil, ErrCargoPricePaymentNotCreator
	}
	return payment, nil
}

// Update 编辑转款单，运单集合整体替换
func (s *CargoPricePaymentService) Update(actor Actor, id uint, input CargoPricePaymentInput) (*models.CargoPricePayment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var payment *models.CargoPricePayment
	err := s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		payment, err = s.getEditable(tx, actor, id)
		if err != nil {
			return err
		}
		txWaybills := s.waybillRepo.WithTx(tx)

		current, err := txWaybills.ListByCargoPricePaymentID(payment.ID)
		if err != nil {
			return err
		}
		next := make(map[uint]bool, len(input.WaybillIDs))
		for _, wid := range input.WaybillIDs {
			next[wid] = true
		}
		var removedIDs []uint
		for i := range current {
			if !next[current[i].ID] {
				removedIDs = append(removedIDs, current[i].ID)
			}
		}

		waybills, err := txWaybills.ListByIDsForUpdate(input.WaybillIDs)
		if err != nil {
			return err
		}
		if len(waybills) != len(input.WaybillIDs) {
			return ErrWaybillNotFound
		}
		if err := checkWaybills(waybills, payment.ID); err != nil {
			return err
		}

		if len(removedIDs) > 0 {
			if err := txWaybills.UpdateFieldsBulk(removedIDs, map[string]interface{}{
				"cargo_price_payment_id": nil,
				"cargo_price_status":     constants.CargoPriceStatusNotPaid,
			}); err != nil {
				return err
			}
		}
		if err := txWaybills.UpdateFieldsBulk(input.WaybillIDs, map[string]interface{}{
			"cargo_price_payment_id": payment.ID,
			"cargo_price_status":     constants.CargoPriceStatusNotPaid,
		}); err != nil {
			return err
		}

		payment.PayeeName = input.PayeeName
		payment.PayeePhone = input.PayeePhone
		payment.PayeeBankName = input.PayeeBankName
		payment.PayeeBankNumber = input.PayeeBankNumber
		payment.PayeeCredentialNum = input.PayeeCredentialNum
		payment.Remark = input.Remark
		return s.paymentRepo.WithTx(tx).Update(payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Delete 删除转款单并释放全部运单
func (s *CargoPricePaymentService) Delete(actor Actor, id uint) error {
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		payment, err := s.getEditable(tx, actor, id)
		if err != nil {
			return err
		}
		txWaybills := s.waybillRepo.WithTx(tx)
		members, err := txWaybills.ListByCargoPricePaymentID(payment.ID)
		if err != nil {
			return err
		}
		if len(members) > 0 {
			ids := make([]uint, 0, len(members))
			for i := range members {
				ids = append(ids, members[i].ID)
			}
			if err := txWaybills.UpdateFieldsBulk(ids, map[string]interface{}{
				"cargo_price_payment_id": nil,
				"cargo_price_status":     constants.CargoPriceStatusNotPaid,
			}); err != nil {
				return err
			}
		}
		return s.paymentRepo.WithTx(tx).Delete(payment)
	})
}

// Submit 提交转款单送审，提交前按当前比例严格复核每张运单的代收手续费
func (s *CargoPricePaymentService) Submit(actor Actor, id uint) error {
	setting, err := s.settingSvc.Get()
	if err != nil {
		return err
	}
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		payment, err := s.getEditable(tx, actor, id)
		if err != nil {
			return err
		}
		members, err := s.waybillRepo.WithTx(tx).ListByCargoPricePaymentID(payment.ID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return ErrCargoPricePaymentWaybill
		}
		if err := checkWaybills(members, payment.ID); err != nil {
			return err
		}
		for i := range members {
			if !VerifyHandlingFee(&members[i], setting.HandlingFeeRatio) {
				return ErrWaybillHandlingFeeMismatch
			}
		}
		payment.Status = constants.CargoPricePaymentStatusSubmitted
		payment.RejectReason = ""
		return s.paymentRepo.WithTx(tx).Update(payment)
	})
}

// Review 审核通过：已提交 → 已审核
func (s *CargoPricePaymentService) Review(actor Actor, id uint) error {
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.WithTx(tx).GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrCargoPricePaymentNotFound
		}
		if payment.Status != constants.CargoPricePaymentStatusSubmitted {
			return ErrCargoPricePaymentStatusInvalid
		}
		payment.Status = constants.CargoPricePaymentStatusReviewed
		return s.paymentRepo.WithTx(tx).Update(payment)
	})
}

// Reject 驳回：已提交 → 已驳回，必须填写原因
func (s *CargoPricePaymentService) Reject(actor Actor, id uint, reason string) error {
	if reason == "" {
		return ErrCargoPricePaymentRejectReason
	}
	return s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.WithTx(tx).GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrCargoPricePaymentNotFound
		}
		if payment.Status != constants.CargoPricePaymentStatusSubmitted {
			return ErrCargoPricePaymentStatusInvalid
		}
		payment.Status = constants.CargoPricePaymentStatusRejected
		payment.RejectReason = reason
		return s.paymentRepo.WithTx(tx).Update(payment)
	})
}

// Pay 转款：已审核 → 已转款，成员运单的代收货款状态同事务置「已转款」
func (s *CargoPricePaymentService) Pay(actor Actor, id uint) error {
	err := s.paymentRepo.Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.WithTx(tx).GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrCargoPricePaymentNotFound
		}
		if payment.Status != constants.CargoPricePaymentStatusReviewed {
			return ErrCargoPricePaymentStatusInvalid
		}
		now := time.Now()
		payment.Status = constants.CargoPricePaymentStatusPaid
		payment.SettleTime = &now
		if err := s.paymentRepo.WithTx(tx).Update(payment); err != nil {
			return err
		}

		txWaybills := s.waybillRepo.WithTx(tx)
		members, err := txWaybills.ListByCargoPricePaymentID(payment.ID)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(members))
		for i := range members {
			ids = append(ids, members[i].ID)
		}
		if len(ids) == 0 {
			return nil
		}
		return txWaybills.UpdateFieldsBulk(ids, map[string]interface{}{
			"cargo_price_status": constants.CargoPriceStatusPaid,
		})
	})
	if err != nil {
		return err
	}
	logger.Infow("cargo_price_payment_paid", "payment_id", id, "user_id", actor.UserID)
	return nil
}

// FinalFee 实际转款金额：Σ代收货款 − Σ扣付运费 − Σ代收手续费
func (s *CargoPricePaymentService) FinalFee(payment *models.CargoPricePayment) models.Money {
	total := models.NewMoneyFromInt(0).Decimal
	for i := range payment.Waybills {
		w := &payment.Waybills[i]
		total = total.Add(w.CargoPrice.Decimal)
		if w.FeeType == constants.FeeTypeDeduction {
			total = total.Sub(w.Fee.Decimal)
		}
		total = total.Sub(w.CargoHandlingFee.Decimal)
	}
	return models.NewMoneyFromDecimal(total)
}

// Get 获取转款单详情（含创建人与成员运单）
func (s *CargoPricePaymentService) Get(id uint) (*models.CargoPricePayment, error) {
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrCargoPricePaymentNotFound
	}
	return payment, nil
}

// List 分页查询转款单
func (s *CargoPricePaymentService) List(filter repository.CargoPricePaymentListFilter) ([]models.CargoPricePayment, int64, error) {
	return s.paymentRepo.List(filter)
}
